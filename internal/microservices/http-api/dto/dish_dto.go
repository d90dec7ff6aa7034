package dto

import (
	"time"

	"cookbook/internal/microservices/http-api/models"
)

// URLFunc resolves a stored image key to the URL clients fetch it from.
type URLFunc func(key string) string

// IngredientLineInput is one recipe line. The ingredient and the unit are
// each given either by id or by a new name.
type IngredientLineInput struct {
	IngredientID   *int64  `json:"ingredient_id,omitempty"`
	IngredientName string  `json:"ingredient_name,omitempty"`
	UnitID         *int64  `json:"unit_id,omitempty"`
	UnitName       string  `json:"unit_name,omitempty"`
	Quantity       float64 `json:"quantity"`
}

type StepInput struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
	// ImageKey keeps an image this dish's steps already have.
	ImageKey string `json:"image_key,omitempty"`
}

// DishInput is the body of create, replace and partial update. Nil fields
// are left unchanged on update; a nil list leaves the existing rows alone
// while an empty list removes them all.
type DishInput struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	PrepTime    *int                  `json:"prep_time"`
	CookTime    *int                  `json:"cook_time"`
	Ingredients []IngredientLineInput `json:"ingredients"`
	Steps       []StepInput           `json:"steps"`
	RemoveImage bool                  `json:"remove_image,omitempty"`
}

type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

type DishSummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PrepTime    int       `json:"prep_time"`
	CookTime    int       `json:"cook_time"`
	TotalTime   int       `json:"total_time"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

type DishResponse struct {
	DishSummary
	UpdatedAt   time.Time                `json:"updated_at"`
	Ingredients []DishIngredientResponse `json:"ingredients"`
	Steps       []StepResponse           `json:"steps"`
}

type StepResponse struct {
	ID          int64  `json:"id"`
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
	Image       string `json:"image"`
	ImageKey    string `json:"image_key,omitempty"`
}

func FromDishToSummary(d models.Dish, url URLFunc) DishSummary {
	return DishSummary{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PrepTime:    d.PrepTime,
		CookTime:    d.CookTime,
		TotalTime:   d.TotalTime(),
		Image:       url(d.Image),
		CreatedAt:   d.CreatedAt,
	}
}

func FromDishToResponse(d models.Dish, url URLFunc) DishResponse {
	resp := DishResponse{
		DishSummary: FromDishToSummary(d, url),
		UpdatedAt:   d.UpdatedAt,
		Ingredients: make([]DishIngredientResponse, 0, len(d.Ingredients)),
		Steps:       make([]StepResponse, 0, len(d.Steps)),
	}
	for _, line := range d.Ingredients {
		resp.Ingredients = append(resp.Ingredients, FromDishIngredient(line))
	}
	for _, s := range d.Steps {
		resp.Steps = append(resp.Steps, FromStep(s, url))
	}
	return resp
}

func FromStep(s models.CookingStep, url URLFunc) StepResponse {
	return StepResponse{
		ID:          s.ID,
		StepNumber:  s.StepNumber,
		Instruction: s.Instruction,
		Image:       url(s.Image),
		ImageKey:    s.Image,
	}
}
