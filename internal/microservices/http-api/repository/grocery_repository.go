package repository

import (
	"context"
	"fmt"
	"strings"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroceryFilter struct {
	InCart     *bool
	IsOptional *bool
	Search     string
}

type GroceryRepo struct {
	db *gorm.DB
}

func NewGroceryRepo(db *gorm.DB) *GroceryRepo {
	return &GroceryRepo{db: db}
}

func (r *GroceryRepo) WithTx(tx *gorm.DB) *GroceryRepo {
	return &GroceryRepo{db: tx}
}

// List returns items still to buy first, then by name.
func (r *GroceryRepo) List(ctx context.Context, f GroceryFilter) ([]models.GroceryItem, error) {
	var list []models.GroceryItem
	q := r.db.WithContext(ctx).Preload("Unit")
	if f.InCart != nil {
		q = q.Where("in_cart = ?", *f.InCart)
	}
	if f.IsOptional != nil {
		q = q.Where("is_optional = ?", *f.IsOptional)
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+s+"%")
	}
	if err := q.Order("in_cart desc, name asc, id asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list grocery items: %w", err)
	}
	return list, nil
}

func (r *GroceryRepo) GetByID(ctx context.Context, id int64) (*models.GroceryItem, error) {
	var item models.GroceryItem
	if err := r.db.WithContext(ctx).Preload("Unit").First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOpen returns an item not yet in the cart with the same name
// (case-insensitive) and unit, or nil.
func (r *GroceryRepo) FindOpen(ctx context.Context, name string, unitID *int64) (*models.GroceryItem, error) {
	q := forUpdate(r.db.WithContext(ctx)).
		Where("LOWER(name) = ? AND in_cart = ?", strings.ToLower(name), false)
	if unitID == nil {
		q = q.Where("unit_id IS NULL")
	} else {
		q = q.Where("unit_id = ?", *unitID)
	}
	var list []models.GroceryItem
	if err := q.Order("id asc").Limit(1).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find grocery item: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (r *GroceryRepo) Create(ctx context.Context, item *models.GroceryItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("create grocery item: %w", err)
	}
	return nil
}

func (r *GroceryRepo) Update(ctx context.Context, item *models.GroceryItem) error {
	res := r.db.WithContext(ctx).Model(&models.GroceryItem{}).Where("id = ?", item.ID).
		Updates(map[string]any{
			"name":        item.Name,
			"quantity":    item.Quantity,
			"unit_id":     item.UnitID,
			"in_cart":     item.InCart,
			"is_optional": item.IsOptional,
		})
	if res.Error != nil {
		return fmt.Errorf("update grocery item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GroceryRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.GroceryItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete grocery item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkAllInCart flags every open item as in the cart and returns how
// many changed.
func (r *GroceryRepo) MarkAllInCart(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.GroceryItem{}).Where("in_cart = ?", false).Update("in_cart", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark all in cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ClearCart deletes the items already in the cart.
func (r *GroceryRepo) ClearCart(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("in_cart = ?", true).Delete(&models.GroceryItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("clear cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}
