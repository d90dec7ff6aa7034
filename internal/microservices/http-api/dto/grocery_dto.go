package dto

import (
	"time"

	"cookbook/internal/microservices/http-api/models"
)

// GroceryItemInput is used for create (name required) and partial update.
type GroceryItemInput struct {
	Name       *string  `json:"name"`
	Quantity   *float64 `json:"quantity"`
	UnitID     *int64   `json:"unit_id"`
	ClearUnit  bool     `json:"clear_unit,omitempty"`
	InCart     *bool    `json:"in_cart"`
	IsOptional *bool    `json:"is_optional"`
}

type GroceryItemResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Quantity   *float64  `json:"quantity"`
	UnitID     *int64    `json:"unit_id"`
	Unit       string    `json:"unit,omitempty"`
	InCart     bool      `json:"in_cart"`
	IsOptional bool      `json:"is_optional"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromGroceryItem(item models.GroceryItem) GroceryItemResponse {
	resp := GroceryItemResponse{
		ID:         item.ID,
		Name:       item.Name,
		Quantity:   item.Quantity,
		UnitID:     item.UnitID,
		InCart:     item.InCart,
		IsOptional: item.IsOptional,
		CreatedAt:  item.CreatedAt,
	}
	if item.Unit != nil {
		resp.Unit = item.Unit.Label()
	}
	return resp
}

type BulkActionResponse struct {
	Updated int64 `json:"updated,omitempty"`
	Deleted int64 `json:"deleted,omitempty"`
}
