package dto

import "cookbook/internal/microservices/http-api/models"

type IngredientInput struct {
	Name string `json:"name" binding:"required"`
}

type UnitInput struct {
	Name         string `json:"name" binding:"required"`
	Abbreviation string `json:"abbreviation"`
}

type IngredientResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	DishCount int64  `json:"dish_count"`
}

func FromIngredient(ing models.Ingredient) IngredientResponse {
	return IngredientResponse{ID: ing.ID, Name: ing.Name, DishCount: ing.DishCount}
}

type UnitResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

func FromUnit(u models.Unit) UnitResponse {
	return UnitResponse{ID: u.ID, Name: u.Name, Abbreviation: u.Abbreviation}
}

// DishIngredientInput creates a line on an existing dish.
type DishIngredientInput struct {
	DishID int64 `json:"dish_id" binding:"required"`
	IngredientLineInput
}

type DishIngredientResponse struct {
	ID           int64   `json:"id"`
	DishID       int64   `json:"dish_id"`
	IngredientID int64   `json:"ingredient_id"`
	Ingredient   string  `json:"ingredient"`
	Quantity     float64 `json:"quantity"`
	UnitID       int64   `json:"unit_id"`
	Unit         string  `json:"unit"`
}

func FromDishIngredient(line models.DishIngredient) DishIngredientResponse {
	resp := DishIngredientResponse{
		ID:           line.ID,
		DishID:       line.DishID,
		IngredientID: line.IngredientID,
		Quantity:     line.Quantity,
		UnitID:       line.UnitID,
	}
	if line.Ingredient != nil {
		resp.Ingredient = line.Ingredient.Name
	}
	if line.Unit != nil {
		resp.Unit = line.Unit.Label()
	}
	return resp
}
