package handler

import (
	"context"
	"net/http"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type GroceryHandler struct {
	svc service.GroceryService
}

func NewGroceryHandler(svc service.GroceryService) *GroceryHandler {
	return &GroceryHandler{svc: svc}
}

func (h *GroceryHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("", h.List)
	public.GET("/:id", h.Get)

	protected.POST("", h.Create)
	protected.POST("/mark-all-in-cart", h.MarkAllInCart)
	protected.POST("/clear-cart", h.ClearCart)
	protected.POST("/from-dish/:dish_id", h.AddFromDish)
	protected.PUT("/:id", h.Update)
	protected.PATCH("/:id", h.Update)
	protected.DELETE("/:id", h.Delete)
}

func groceryList(items []models.GroceryItem) []dto.GroceryItemResponse {
	resp := make([]dto.GroceryItemResponse, 0, len(items))
	for _, it := range items {
		resp = append(resp, dto.FromGroceryItem(it))
	}
	return resp
}

func (h *GroceryHandler) List(c *gin.Context) {
	var (
		f  repository.GroceryFilter
		ok bool
	)
	if f.InCart, ok = optionalBool(c, "in_cart"); !ok {
		return
	}
	if f.IsOptional, ok = optionalBool(c, "is_optional"); !ok {
		return
	}
	f.Search = c.Query("search")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	items, err := h.svc.List(ctx, f)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := groceryList(items)
	c.JSON(http.StatusOK, gin.H{"data": resp, "count": len(resp)})
}

func (h *GroceryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	item, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroceryItem(*item))
}

func (h *GroceryHandler) Create(c *gin.Context) {
	var in dto.GroceryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	item, err := h.svc.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromGroceryItem(*item))
}

func (h *GroceryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in dto.GroceryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	item, err := h.svc.Update(ctx, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromGroceryItem(*item))
}

func (h *GroceryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroceryHandler) MarkAllInCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	n, err := h.svc.MarkAllInCart(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *GroceryHandler) ClearCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	n, err := h.svc.ClearCart(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (h *GroceryHandler) AddFromDish(c *gin.Context) {
	dishID, ok := parseID(c, "dish_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	items, err := h.svc.AddFromDish(ctx, dishID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := groceryList(items)
	c.JSON(http.StatusOK, gin.H{"data": resp, "count": len(resp)})
}
