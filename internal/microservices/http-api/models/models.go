package models

// All lists every table in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&RefreshToken{},
		&Unit{},
		&Ingredient{},
		&Dish{},
		&DishIngredient{},
		&CookingStep{},
		&GroceryItem{},
	}
}
