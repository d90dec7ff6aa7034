package service

import (
	"context"
	"errors"
	"strings"

	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type GroceryService interface {
	List(ctx context.Context, f repository.GroceryFilter) ([]models.GroceryItem, error)
	Get(ctx context.Context, id int64) (*models.GroceryItem, error)
	Create(ctx context.Context, in dto.GroceryItemInput) (*models.GroceryItem, error)
	Update(ctx context.Context, id int64, in dto.GroceryItemInput) (*models.GroceryItem, error)
	Delete(ctx context.Context, id int64) error
	MarkAllInCart(ctx context.Context) (int64, error)
	ClearCart(ctx context.Context) (int64, error)
	// AddFromDish puts every line of a dish on the list. A line whose
	// ingredient and unit match an item not yet in the cart adds to that
	// item's quantity instead of creating a new one.
	AddFromDish(ctx context.Context, dishID int64) ([]models.GroceryItem, error)
}

type groceryService struct {
	db   *gorm.DB
	repo *repository.GroceryRepo
	log  *zap.Logger
}

func NewGroceryService(db *gorm.DB, log *zap.Logger) GroceryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &groceryService{
		db:   db,
		repo: repository.NewGroceryRepo(db),
		log:  log.Named("grocery"),
	}
}

// groceryName trims and title-cases a list entry ("red onion" -> "Red Onion").
func groceryName(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

func (s *groceryService) List(ctx context.Context, f repository.GroceryFilter) ([]models.GroceryItem, error) {
	return s.repo.List(ctx, f)
}

func (s *groceryService) Get(ctx context.Context, id int64) (*models.GroceryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func validateGrocery(in dto.GroceryItemInput, create bool) error {
	v := &ValidationError{}
	if in.Name != nil || create {
		var name string
		if in.Name != nil {
			name = *in.Name
		}
		validateName(v, "name", name, maxGroceryName)
	}
	if in.Quantity != nil {
		validateQuantity(v, "quantity", *in.Quantity)
	}
	return v.Err()
}

func (s *groceryService) checkUnit(ctx context.Context, tx *gorm.DB, unitID *int64) error {
	if unitID == nil {
		return nil
	}
	if _, err := repository.NewUnitRepo(tx).GetByID(ctx, *unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ReferenceError{Entity: "unit", ID: *unitID, Field: "unit_id"}
		}
		return err
	}
	return nil
}

func (s *groceryService) Create(ctx context.Context, in dto.GroceryItemInput) (*models.GroceryItem, error) {
	if err := validateGrocery(in, true); err != nil {
		return nil, err
	}
	item := &models.GroceryItem{
		Name:   groceryName(*in.Name),
		UnitID: in.UnitID,
	}
	if in.Quantity != nil {
		q := roundQuantity(*in.Quantity)
		item.Quantity = &q
	}
	if in.InCart != nil {
		item.InCart = *in.InCart
	}
	if in.IsOptional != nil {
		item.IsOptional = *in.IsOptional
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkUnit(ctx, tx, item.UnitID); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, item.ID)
}

func (s *groceryService) Update(ctx context.Context, id int64, in dto.GroceryItemInput) (*models.GroceryItem, error) {
	if err := validateGrocery(in, false); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if in.Name != nil {
			item.Name = groceryName(*in.Name)
		}
		if in.Quantity != nil {
			q := roundQuantity(*in.Quantity)
			item.Quantity = &q
		}
		switch {
		case in.ClearUnit:
			item.UnitID = nil
		case in.UnitID != nil:
			if err := s.checkUnit(ctx, tx, in.UnitID); err != nil {
				return err
			}
			item.UnitID = in.UnitID
		}
		if in.InCart != nil {
			item.InCart = *in.InCart
		}
		if in.IsOptional != nil {
			item.IsOptional = *in.IsOptional
		}
		return notFound(repo.Update(ctx, item))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *groceryService) Delete(ctx context.Context, id int64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *groceryService) MarkAllInCart(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkAllInCart(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("marked grocery items in cart", zap.Int64("updated", n))
	return n, nil
}

func (s *groceryService) ClearCart(ctx context.Context) (int64, error) {
	n, err := s.repo.ClearCart(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("cleared grocery cart", zap.Int64("deleted", n))
	return n, nil
}

func (s *groceryService) AddFromDish(ctx context.Context, dishID int64) ([]models.GroceryItem, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dish, err := repository.NewDishRepo(tx).GetByID(ctx, dishID)
		if err != nil {
			return notFound(err)
		}
		repo := s.repo.WithTx(tx)
		for _, line := range dish.Ingredients {
			if line.Ingredient == nil {
				continue
			}
			name := groceryName(line.Ingredient.Name)
			unitID := line.UnitID
			existing, err := repo.FindOpen(ctx, name, &unitID)
			if err != nil {
				return err
			}
			if existing != nil {
				q := line.Quantity
				if existing.Quantity != nil {
					q = roundQuantity(*existing.Quantity + q)
				}
				existing.Quantity = &q
				if err := repo.Update(ctx, existing); err != nil {
					return err
				}
				ids = append(ids, existing.ID)
				continue
			}
			q := line.Quantity
			item := &models.GroceryItem{Name: name, Quantity: &q, UnitID: &unitID}
			if err := repo.Create(ctx, item); err != nil {
				return err
			}
			ids = append(ids, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("added dish to grocery list", zap.Int64("dish_id", dishID), zap.Int("items", len(ids)))

	items := make([]models.GroceryItem, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}
