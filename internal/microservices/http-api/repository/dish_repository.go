package repository

import (
	"context"
	"fmt"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DishFilter struct {
	// MaxCookTime keeps dishes whose cook_time is at most this many minutes.
	MaxCookTime *int
	Search      string
}

type DishRepo struct {
	db *gorm.DB
}

func NewDishRepo(db *gorm.DB) *DishRepo {
	return &DishRepo{db: db}
}

func (r *DishRepo) WithTx(tx *gorm.DB) *DishRepo {
	return &DishRepo{db: tx}
}

func (r *DishRepo) List(ctx context.Context, f DishFilter) ([]models.Dish, error) {
	var list []models.Dish
	q := r.db.WithContext(ctx)
	if f.MaxCookTime != nil {
		q = q.Where("cook_time <= ?", *f.MaxCookTime)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+f.Search+"%")
	}
	if err := q.Order("created_at desc, id desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return list, nil
}

func withDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("dish_ingredients.id asc") }).
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.Unit").
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("cooking_steps.step_number asc") })
}

// GetByID loads a dish with its recipe lines and ordered steps.
func (r *DishRepo) GetByID(ctx context.Context, id int64) (*models.Dish, error) {
	var d models.Dish
	if err := withDetail(r.db.WithContext(ctx)).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// GetForUpdate loads and locks a dish with its steps.
func (r *DishRepo) GetForUpdate(ctx context.Context, id int64) (*models.Dish, error) {
	var d models.Dish
	err := forUpdate(r.db.WithContext(ctx)).
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("cooking_steps.step_number asc") }).
		First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByIDs loads the existing dishes among ids with their steps.
func (r *DishRepo) FindByIDs(ctx context.Context, ids []int64) ([]models.Dish, error) {
	var list []models.Dish
	if len(ids) == 0 {
		return list, nil
	}
	if err := forUpdate(r.db.WithContext(ctx)).Preload("Steps").
		Where("id IN ?", ids).Order("id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find dishes: %w", err)
	}
	return list, nil
}

func (r *DishRepo) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Dish{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check dish name: %w", err)
	}
	return n > 0, nil
}

// Create inserts the dish row only; lines and steps are written separately.
func (r *DishRepo) Create(ctx context.Context, d *models.Dish) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error; err != nil {
		return fmt.Errorf("create dish: %w", err)
	}
	return nil
}

func (r *DishRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Dish{ID: id}).Omit(clause.Associations).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update dish: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes dishes with their recipe lines and steps. It returns the
// number of dishes deleted.
func (r *DishRepo) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("dish_id IN ?", ids).Delete(&models.DishIngredient{}).Error; err != nil {
		return 0, fmt.Errorf("delete dish lines: %w", err)
	}
	if err := db.Where("dish_id IN ?", ids).Delete(&models.CookingStep{}).Error; err != nil {
		return 0, fmt.Errorf("delete dish steps: %w", err)
	}
	res := db.Where("id IN ?", ids).Delete(&models.Dish{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete dishes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
