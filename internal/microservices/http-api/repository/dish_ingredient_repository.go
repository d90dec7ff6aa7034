package repository

import (
	"context"
	"fmt"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DishIngredientRepo struct {
	db *gorm.DB
}

func NewDishIngredientRepo(db *gorm.DB) *DishIngredientRepo {
	return &DishIngredientRepo{db: db}
}

func (r *DishIngredientRepo) WithTx(tx *gorm.DB) *DishIngredientRepo {
	return &DishIngredientRepo{db: tx}
}

// List returns recipe lines, optionally for a single dish.
func (r *DishIngredientRepo) List(ctx context.Context, dishID *int64) ([]models.DishIngredient, error) {
	var list []models.DishIngredient
	q := r.db.WithContext(ctx).Preload("Ingredient").Preload("Unit")
	if dishID != nil {
		q = q.Where("dish_id = ?", *dishID)
	}
	if err := q.Order("dish_id asc, id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list dish ingredients: %w", err)
	}
	return list, nil
}

func (r *DishIngredientRepo) GetByID(ctx context.Context, id int64) (*models.DishIngredient, error) {
	var line models.DishIngredient
	if err := r.db.WithContext(ctx).Preload("Ingredient").Preload("Unit").First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// Exists reports whether the dish already has a line for the ingredient.
func (r *DishIngredientRepo) Exists(ctx context.Context, dishID, ingredientID, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.DishIngredient{}).
		Where("dish_id = ? AND ingredient_id = ?", dishID, ingredientID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check dish ingredient: %w", err)
	}
	return n > 0, nil
}

func (r *DishIngredientRepo) Create(ctx context.Context, line *models.DishIngredient) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(line).Error; err != nil {
		return fmt.Errorf("create dish ingredient: %w", err)
	}
	return nil
}

func (r *DishIngredientRepo) Update(ctx context.Context, line *models.DishIngredient) error {
	res := r.db.WithContext(ctx).Model(&models.DishIngredient{}).Where("id = ?", line.ID).
		Updates(map[string]any{
			"ingredient_id": line.IngredientID,
			"quantity":      line.Quantity,
			"unit_id":       line.UnitID,
		})
	if res.Error != nil {
		return fmt.Errorf("update dish ingredient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DishIngredientRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.DishIngredient{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete dish ingredient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DishIngredientRepo) DeleteByDish(ctx context.Context, dishID int64) error {
	if err := r.db.WithContext(ctx).Where("dish_id = ?", dishID).Delete(&models.DishIngredient{}).Error; err != nil {
		return fmt.Errorf("delete dish ingredients: %w", err)
	}
	return nil
}
