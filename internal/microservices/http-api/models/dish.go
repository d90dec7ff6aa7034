package models

import "time"

// MaxTotalTime caps prep_time + cook_time, in minutes.
const MaxTotalTime = 240

type Dish struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	PrepTime    int       `json:"prep_time" gorm:"not null"`
	CookTime    int       `json:"cook_time" gorm:"not null"`
	Image       string    `json:"image,omitempty" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// associations
	Ingredients []DishIngredient `json:"ingredients,omitempty" gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE;"`
	Steps       []CookingStep    `json:"steps,omitempty" gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE;"`
}

func (Dish) TableName() string {
	return "dishes"
}

func (d Dish) TotalTime() int {
	return d.PrepTime + d.CookTime
}

// ImageKeys lists the dish image and every step image that is set.
func (d Dish) ImageKeys() []string {
	var keys []string
	if d.Image != "" {
		keys = append(keys, d.Image)
	}
	for _, s := range d.Steps {
		if s.Image != "" {
			keys = append(keys, s.Image)
		}
	}
	return keys
}
