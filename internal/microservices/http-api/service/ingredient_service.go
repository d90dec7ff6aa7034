package service

import (
	"context"

	"cookbook/internal/cache"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/normalize"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IngredientService interface {
	List(ctx context.Context, search string) ([]models.Ingredient, error)
	Get(ctx context.Context, id int64) (*models.Ingredient, error)
	Create(ctx context.Context, name string) (*models.Ingredient, error)
	Rename(ctx context.Context, id int64, name string) (*models.Ingredient, error)
	// Delete removes the ingredient and every recipe line that uses it.
	Delete(ctx context.Context, id int64) error
}

type ingredientService struct {
	db       *gorm.DB
	repo     *repository.IngredientRepo
	resolver *Resolver
	cache    *cache.DishCache
	log      *zap.Logger
}

func NewIngredientService(db *gorm.DB, resolver *Resolver, dishCache *cache.DishCache, log *zap.Logger) IngredientService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ingredientService{
		db:       db,
		repo:     repository.NewIngredientRepo(db),
		resolver: resolver,
		cache:    dishCache,
		log:      log.Named("ingredients"),
	}
}

func (s *ingredientService) List(ctx context.Context, search string) ([]models.Ingredient, error) {
	return s.repo.List(ctx, search)
}

func (s *ingredientService) Get(ctx context.Context, id int64) (*models.Ingredient, error) {
	ing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return ing, nil
}

func validateIngredientName(name string) error {
	v := &ValidationError{}
	validateName(v, "name", name, maxIngredientName)
	return v.Err()
}

func (s *ingredientService) Create(ctx context.Context, name string) (*models.Ingredient, error) {
	if err := validateIngredientName(name); err != nil {
		return nil, err
	}
	var ing *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		ing, err = s.resolver.CreateIngredient(ctx, tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ing, nil
}

func (s *ingredientService) Rename(ctx context.Context, id int64, name string) (*models.Ingredient, error) {
	if err := validateIngredientName(name); err != nil {
		return nil, err
	}
	normalized := normalize.Ingredient(name)
	var dishIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repository.LockNames(ctx, tx, "ingredient"); err != nil {
			return err
		}
		conflict, err := s.resolver.IngredientConflict(ctx, tx, normalized, id)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflict
		}
		if err := repo.Rename(ctx, id, normalized); err != nil {
			return notFound(uniqueConflict(err, "ingredient", "name", normalized))
		}
		dishIDs, err = repo.DishIDs(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, dishIDs)
	return s.Get(ctx, id)
}

func (s *ingredientService) Delete(ctx context.Context, id int64) error {
	var dishIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if dishIDs, err = repo.DishIDs(ctx, id); err != nil {
			return err
		}
		return notFound(repo.Delete(ctx, id))
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, dishIDs)
	return nil
}

func (s *ingredientService) invalidate(ctx context.Context, dishIDs []int64) {
	if err := s.cache.Invalidate(ctx, dishIDs...); err != nil {
		s.log.Warn("dish cache invalidation failed", zap.Error(err))
	}
}
