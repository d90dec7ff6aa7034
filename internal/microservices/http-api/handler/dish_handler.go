package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/middleware"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// multipart bodies: a JSON "data" field plus image files
const (
	dataField       = "data"
	imageField      = "image"
	stepImagePrefix = "step_image_"
	maxFormMemory   = 8 << 20
)

type DishHandler struct {
	svc service.DishService
}

func NewDishHandler(svc service.DishService) *DishHandler {
	return &DishHandler{svc: svc}
}

// RegisterRoutes mounts reads on public and writes on protected.
func (h *DishHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("", h.List)
	public.GET("/:id", h.Get)

	protected.POST("", h.Create)
	protected.POST("/bulk-delete", middleware.RequireAdmin(), h.BulkDelete)
	protected.PUT("/:id", h.Replace)
	protected.PATCH("/:id", h.Patch)
	protected.DELETE("/:id", h.Delete)
	protected.PUT("/:id/image", h.SetImage)
	protected.DELETE("/:id/image", h.RemoveImage)
	protected.PUT("/:id/steps/:step_number/image", h.SetStepImage)
}

func (h *DishHandler) List(c *gin.Context) {
	var f repository.DishFilter
	if raw := strings.TrimSpace(c.Query("cook_time")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"cook_time": []string{"Enter a whole number of minutes."}}})
			return
		}
		f.MaxCookTime = &n
	}
	f.Search = c.Query("search")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, f)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.DishSummary, 0, len(list))
	for _, d := range list {
		resp = append(resp, dto.FromDishToSummary(d, h.svc.ImageURL))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "count": len(resp)})
}

func (h *DishHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	d, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishToResponse(*d, h.svc.ImageURL))
}

func (h *DishHandler) Create(c *gin.Context) {
	in, uploads, ok := bindDish(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	d, err := h.svc.Create(ctx, in, uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromDishToResponse(*d, h.svc.ImageURL))
}

func (h *DishHandler) Replace(c *gin.Context) {
	h.update(c, true)
}

func (h *DishHandler) Patch(c *gin.Context) {
	h.update(c, false)
}

func (h *DishHandler) update(c *gin.Context, full bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	in, uploads, ok := bindDish(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	d, err := h.svc.Update(ctx, id, in, uploads, full)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishToResponse(*d, h.svc.ImageURL))
}

func (h *DishHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DishHandler) BulkDelete(c *gin.Context) {
	var req dto.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	n, err := h.svc.BulkDelete(ctx, req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkActionResponse{Deleted: n})
}

func (h *DishHandler) SetImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, ok := formImage(c, imageField)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	d, err := h.svc.SetImage(ctx, id, u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishToResponse(*d, h.svc.ImageURL))
}

func (h *DishHandler) RemoveImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	d, err := h.svc.RemoveImage(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishToResponse(*d, h.svc.ImageURL))
}

func (h *DishHandler) SetStepImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("step_number"))
	if err != nil || number < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step_number"})
		return
	}
	u, ok := formImage(c, imageField)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	step, err := h.svc.SetStepImage(ctx, id, number, u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromStep(*step, h.svc.ImageURL))
}

// bindDish reads a dish payload from a JSON body, or from a multipart
// form whose "data" field holds the JSON and whose files are the dish
// image and step_image_<n> uploads.
func bindDish(c *gin.Context) (dto.DishInput, *service.DishImages, bool) {
	var in dto.DishInput
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return in, nil, false
		}
		return in, nil, true
	}

	form, err := multipartForm(c)
	if err != nil {
		bindError(c, err)
		return in, nil, false
	}
	if data := form.Value[dataField]; len(data) > 0 && strings.TrimSpace(data[0]) != "" {
		if err := binding.JSON.BindBody([]byte(data[0]), &in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{dataField: []string{err.Error()}}})
			return in, nil, false
		}
	}

	uploads := &service.DishImages{Steps: map[int]*service.Upload{}}
	for field, files := range form.File {
		if len(files) == 0 {
			continue
		}
		u, err := readUpload(files[0])
		if err != nil {
			bindError(c, err)
			return in, nil, false
		}
		switch {
		case field == imageField:
			uploads.Dish = u
		case strings.HasPrefix(field, stepImagePrefix):
			n, err := strconv.Atoi(strings.TrimPrefix(field, stepImagePrefix))
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{field: []string{"Unknown step image field."}}})
				return in, nil, false
			}
			uploads.Steps[n] = u
		}
	}
	return in, uploads, true
}

func multipartForm(c *gin.Context) (*multipart.Form, error) {
	if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	return c.Request.MultipartForm, nil
}

// formImage reads a single required image file from a multipart body.
func formImage(c *gin.Context, field string) (*service.Upload, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{field: []string{"No file was submitted."}}})
		return nil, false
	}
	u, err := readUpload(fh)
	if err != nil {
		bindError(c, err)
		return nil, false
	}
	return u, true
}

// readUpload loads at most one byte past the size limit so oversized
// files are still reported by size instead of being read whole.
func readUpload(fh *multipart.FileHeader) (*service.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}
