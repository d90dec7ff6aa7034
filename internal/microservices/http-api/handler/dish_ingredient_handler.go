package handler

import (
	"context"
	"net/http"
	"strconv"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type DishIngredientHandler struct {
	svc service.DishIngredientService
}

func NewDishIngredientHandler(svc service.DishIngredientService) *DishIngredientHandler {
	return &DishIngredientHandler{svc: svc}
}

func (h *DishIngredientHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("", h.List)
	public.GET("/:id", h.Get)

	protected.POST("", h.Create)
	protected.PUT("/:id", h.Update)
	protected.PATCH("/:id", h.Update)
	protected.DELETE("/:id", h.Delete)
}

func (h *DishIngredientHandler) List(c *gin.Context) {
	var dishID *int64
	if raw := c.Query("dish_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish_id"})
			return
		}
		dishID = &id
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, dishID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]dto.DishIngredientResponse, 0, len(list))
	for _, line := range list {
		resp = append(resp, dto.FromDishIngredient(line))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "count": len(resp)})
}

func (h *DishIngredientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	line, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishIngredient(*line))
}

func (h *DishIngredientHandler) Create(c *gin.Context) {
	var in dto.DishIngredientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	line, err := h.svc.Create(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromDishIngredient(*line))
}

func (h *DishIngredientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in dto.IngredientLineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	line, err := h.svc.Update(ctx, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDishIngredient(*line))
}

func (h *DishIngredientHandler) Delete(c *gin.Context) {
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
