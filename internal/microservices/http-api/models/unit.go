package models

type Unit struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"size:20;uniqueIndex;not null"`
	Abbreviation string `json:"abbreviation" gorm:"size:10"`
}

func (Unit) TableName() string {
	return "units"
}

// Label is what a recipe line prints next to the quantity.
func (u Unit) Label() string {
	if u.Abbreviation != "" {
		return u.Abbreviation
	}
	return u.Name
}
