package models

import "time"

// GroceryItem is a free-standing shopping list entry.
type GroceryItem struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string    `json:"name" gorm:"size:100;not null;index"`
	Quantity   *float64  `json:"quantity,omitempty" gorm:"type:decimal(10,2)"`
	UnitID     *int64    `json:"unit_id,omitempty" gorm:"index"`
	InCart     bool      `json:"in_cart" gorm:"not null;default:false"`
	IsOptional bool      `json:"is_optional" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	Unit *Unit `json:"unit,omitempty" gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT;"`
}

func (GroceryItem) TableName() string {
	return "grocery_items"
}
