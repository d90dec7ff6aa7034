package repository

import (
	"context"
	"fmt"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type UnitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) *UnitRepo {
	return &UnitRepo{db: db}
}

func (r *UnitRepo) WithTx(tx *gorm.DB) *UnitRepo {
	return &UnitRepo{db: tx}
}

func (r *UnitRepo) List(ctx context.Context) ([]models.Unit, error) {
	var list []models.Unit
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return list, nil
}

func (r *UnitRepo) GetByID(ctx context.Context, id int64) (*models.Unit, error) {
	var u models.Unit
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindFirstByTerms returns the lowest-id unit whose name or abbreviation
// equals any of terms case-insensitively, or nil.
func (r *UnitRepo) FindFirstByTerms(ctx context.Context, terms []string, excludeID int64) (*models.Unit, error) {
	terms = lowerAll(terms)
	if len(terms) == 0 {
		return nil, nil
	}
	q := forUpdate(r.db.WithContext(ctx)).
		Where("LOWER(name) IN ? OR LOWER(abbreviation) IN ?", terms, terms)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var list []models.Unit
	if err := q.Order("id asc").Limit(1).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find unit: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *UnitRepo) Create(ctx context.Context, u *models.Unit) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (r *UnitRepo) Update(ctx context.Context, u *models.Unit) error {
	res := r.db.WithContext(ctx).Model(&models.Unit{}).Where("id = ?", u.ID).
		Updates(map[string]any{"name": u.Name, "abbreviation": u.Abbreviation})
	if res.Error != nil {
		return fmt.Errorf("update unit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsage reports how many recipe lines and grocery items reference
// the unit.
func (r *UnitRepo) CountUsage(ctx context.Context, id int64) (lines, groceries int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&models.DishIngredient{}).Where("unit_id = ?", id).Count(&lines).Error; err != nil {
		return 0, 0, fmt.Errorf("count unit lines: %w", err)
	}
	if err = db.Model(&models.GroceryItem{}).Where("unit_id = ?", id).Count(&groceries).Error; err != nil {
		return 0, 0, fmt.Errorf("count unit groceries: %w", err)
	}
	return lines, groceries, nil
}

// DishIDs lists the dishes with a recipe line in the unit.
func (r *UnitRepo) DishIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.DishIngredient{}).
		Where("unit_id = ?", id).Distinct().Pluck("dish_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list unit dishes: %w", err)
	}
	return ids, nil
}

func (r *UnitRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Unit{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete unit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
