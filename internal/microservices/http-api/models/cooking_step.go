package models

type CookingStep struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	DishID      int64  `json:"dish_id" gorm:"not null;uniqueIndex:idx_dish_step"`
	StepNumber  int    `json:"step_number" gorm:"not null;uniqueIndex:idx_dish_step"`
	Instruction string `json:"instruction" gorm:"type:text;not null"`
	Image       string `json:"image,omitempty" gorm:"size:255"`
}

func (CookingStep) TableName() string {
	return "cooking_steps"
}
