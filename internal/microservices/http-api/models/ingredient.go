package models

type Ingredient struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:100;uniqueIndex;not null"`

	// filled by list queries only
	DishCount int64 `json:"dish_count" gorm:"->;-:migration"`
}

func (Ingredient) TableName() string {
	return "ingredients"
}
