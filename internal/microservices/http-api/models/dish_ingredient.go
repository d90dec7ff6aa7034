package models

// DishIngredient is one line of a recipe: this much of an ingredient, in
// this unit, for this dish. An ingredient appears at most once per dish.
type DishIngredient struct {
	ID           int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DishID       int64   `json:"dish_id" gorm:"not null;uniqueIndex:idx_dish_ingredient"`
	IngredientID int64   `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_dish_ingredient;index"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(10,2);not null"`
	UnitID       int64   `json:"unit_id" gorm:"not null;index"`

	// associations
	Ingredient *Ingredient `json:"ingredient,omitempty" gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE;"`
	Unit       *Unit       `json:"unit,omitempty" gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT;"`
}

func (DishIngredient) TableName() string {
	return "dish_ingredients"
}
