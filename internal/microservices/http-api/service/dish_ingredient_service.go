package service

import (
	"context"
	"errors"

	"cookbook/internal/cache"
	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DishIngredientService edits single recipe lines outside the nested dish
// payload. Lines naming a new ingredient or unit go through the same
// conflict checks as dish writes.
type DishIngredientService interface {
	List(ctx context.Context, dishID *int64) ([]models.DishIngredient, error)
	Get(ctx context.Context, id int64) (*models.DishIngredient, error)
	Create(ctx context.Context, in dto.DishIngredientInput) (*models.DishIngredient, error)
	Update(ctx context.Context, id int64, in dto.IngredientLineInput) (*models.DishIngredient, error)
	Delete(ctx context.Context, id int64) error
}

type dishIngredientService struct {
	db       *gorm.DB
	repo     *repository.DishIngredientRepo
	resolver *Resolver
	cache    *cache.DishCache
	log      *zap.Logger
}

func NewDishIngredientService(db *gorm.DB, resolver *Resolver, dishCache *cache.DishCache, log *zap.Logger) DishIngredientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &dishIngredientService{
		db:       db,
		repo:     repository.NewDishIngredientRepo(db),
		resolver: resolver,
		cache:    dishCache,
		log:      log.Named("dish_ingredients"),
	}
}

func plainField(name string) string { return name }

func plainLineField(_ int, name string) string { return name }

func (s *dishIngredientService) List(ctx context.Context, dishID *int64) ([]models.DishIngredient, error) {
	return s.repo.List(ctx, dishID)
}

func (s *dishIngredientService) Get(ctx context.Context, id int64) (*models.DishIngredient, error) {
	line, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return line, nil
}

func (s *dishIngredientService) Create(ctx context.Context, in dto.DishIngredientInput) (*models.DishIngredient, error) {
	v := &ValidationError{}
	validateLine(v, plainField, in.IngredientLineInput)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var id int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewDishRepo(tx).GetForUpdate(ctx, in.DishID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ReferenceError{Entity: "dish", ID: in.DishID, Field: "dish_id"}
			}
			return err
		}
		line, err := s.resolveLine(ctx, tx, in.DishID, 0, in.IngredientLineInput)
		if err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, line); err != nil {
			return lineTaken(err)
		}
		id = line.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.DishID)
	return s.Get(ctx, id)
}

func (s *dishIngredientService) Update(ctx context.Context, id int64, in dto.IngredientLineInput) (*models.DishIngredient, error) {
	v := &ValidationError{}
	validateLine(v, plainField, in)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var dishID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cur, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		dishID = cur.DishID
		line, err := s.resolveLine(ctx, tx, cur.DishID, id, in)
		if err != nil {
			return err
		}
		line.ID = id
		if err := repo.Update(ctx, line); err != nil {
			return lineTaken(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, dishID)
	return s.Get(ctx, id)
}

func (s *dishIngredientService) Delete(ctx context.Context, id int64) error {
	line, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx, line.DishID)
	return nil
}

// resolveLine maps the input to ids and rejects a second line for the
// same ingredient on the dish.
func (s *dishIngredientService) resolveLine(ctx context.Context, tx *gorm.DB, dishID, excludeID int64, in dto.IngredientLineInput) (*models.DishIngredient, error) {
	lr := s.resolver.lines(tx)
	ingredientID, err := lr.ingredient(ctx, 0, in, plainLineField)
	if err != nil {
		return nil, err
	}
	unitID, err := lr.unit(ctx, 0, in, plainLineField)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.WithTx(tx).Exists(ctx, dishID, ingredientID, excludeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fieldError("ingredient", "This ingredient is already listed for the dish.")
	}
	return &models.DishIngredient{
		DishID:       dishID,
		IngredientID: ingredientID,
		Quantity:     roundQuantity(in.Quantity),
		UnitID:       unitID,
	}, nil
}

func lineTaken(err error) error {
	if repository.IsUniqueViolation(err) {
		return fieldError("ingredient", "This ingredient is already listed for the dish.")
	}
	return notFound(err)
}

func (s *dishIngredientService) invalidate(ctx context.Context, dishID int64) {
	if err := s.cache.Invalidate(ctx, dishID); err != nil {
		s.log.Warn("dish cache invalidation failed", zap.Int64("dish_id", dishID), zap.Error(err))
	}
}
