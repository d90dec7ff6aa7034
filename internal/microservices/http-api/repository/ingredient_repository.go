package repository

import (
	"context"
	"fmt"
	"strings"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

const ingredientWithCount = "ingredients.*, " +
	"(SELECT COUNT(*) FROM dish_ingredients WHERE dish_ingredients.ingredient_id = ingredients.id) AS dish_count"

type IngredientRepo struct {
	db *gorm.DB
}

func NewIngredientRepo(db *gorm.DB) *IngredientRepo {
	return &IngredientRepo{db: db}
}

func (r *IngredientRepo) WithTx(tx *gorm.DB) *IngredientRepo {
	return &IngredientRepo{db: tx}
}

// List returns ingredients by name with the number of dishes using each.
// search matches anywhere in the name, case-insensitively.
func (r *IngredientRepo) List(ctx context.Context, search string) ([]models.Ingredient, error) {
	var list []models.Ingredient
	q := r.db.WithContext(ctx).Model(&models.Ingredient{}).Select(ingredientWithCount)
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" {
		q = q.Where("LOWER(ingredients.name) LIKE ?", "%"+s+"%")
	}
	if err := q.Order("ingredients.name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return list, nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := r.db.WithContext(ctx).Model(&models.Ingredient{}).Select(ingredientWithCount).
		Where("ingredients.id = ?", id).First(&ing).Error; err != nil {
		return nil, err
	}
	return &ing, nil
}

// FindFirstByTerms returns the lowest-id ingredient whose name equals any
// of terms case-insensitively, or nil. Inside a transaction the matched
// row stays locked until commit.
func (r *IngredientRepo) FindFirstByTerms(ctx context.Context, terms []string, excludeID int64) (*models.Ingredient, error) {
	terms = lowerAll(terms)
	if len(terms) == 0 {
		return nil, nil
	}
	q := forUpdate(r.db.WithContext(ctx)).Where("LOWER(name) IN ?", terms)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var list []models.Ingredient
	if err := q.Order("id asc").Limit(1).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find ingredient: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *IngredientRepo) Create(ctx context.Context, ing *models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ing).Error; err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

func (r *IngredientRepo) Rename(ctx context.Context, id int64, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("update ingredient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DishIDs lists the dishes that use the ingredient.
func (r *IngredientRepo) DishIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.DishIngredient{}).
		Where("ingredient_id = ?", id).Distinct().Pluck("dish_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list ingredient dishes: %w", err)
	}
	return ids, nil
}

// Delete removes the ingredient and every recipe line using it.
func (r *IngredientRepo) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("ingredient_id = ?", id).Delete(&models.DishIngredient{}).Error; err != nil {
		return fmt.Errorf("delete ingredient lines: %w", err)
	}
	res := db.Delete(&models.Ingredient{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete ingredient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
