package service

import (
	"context"
	"fmt"
	"strings"

	"cookbook/internal/cache"
	"cookbook/internal/microservices/http-api/dto"
	"cookbook/internal/microservices/http-api/models"
	"cookbook/internal/microservices/http-api/repository"
	"cookbook/internal/normalize"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UnitService interface {
	List(ctx context.Context) ([]models.Unit, error)
	Get(ctx context.Context, id int64) (*models.Unit, error)
	Create(ctx context.Context, in dto.UnitInput) (*models.Unit, error)
	Update(ctx context.Context, id int64, in dto.UnitInput) (*models.Unit, error)
	// Delete fails with a ReferenceError while any recipe line or grocery
	// item still uses the unit.
	Delete(ctx context.Context, id int64) error
}

type unitService struct {
	db       *gorm.DB
	repo     *repository.UnitRepo
	resolver *Resolver
	cache    *cache.DishCache
	log      *zap.Logger
}

func NewUnitService(db *gorm.DB, resolver *Resolver, dishCache *cache.DishCache, log *zap.Logger) UnitService {
	if log == nil {
		log = zap.NewNop()
	}
	return &unitService{
		db:       db,
		repo:     repository.NewUnitRepo(db),
		resolver: resolver,
		cache:    dishCache,
		log:      log.Named("units"),
	}
}

func (s *unitService) List(ctx context.Context) ([]models.Unit, error) {
	return s.repo.List(ctx)
}

func (s *unitService) Get(ctx context.Context, id int64) (*models.Unit, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func validateUnit(in dto.UnitInput) error {
	v := &ValidationError{}
	validateName(v, "name", in.Name, maxUnitName)
	if len([]rune(strings.TrimSpace(in.Abbreviation))) > maxAbbreviation {
		v.Addf("abbreviation", "Ensure this field has no more than %d characters.", maxAbbreviation)
	}
	return v.Err()
}

func (s *unitService) Create(ctx context.Context, in dto.UnitInput) (*models.Unit, error) {
	if err := validateUnit(in); err != nil {
		return nil, err
	}
	var u *models.Unit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		u, err = s.resolver.CreateUnit(ctx, tx, in.Name, in.Abbreviation, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *unitService) Update(ctx context.Context, id int64, in dto.UnitInput) (*models.Unit, error) {
	if err := validateUnit(in); err != nil {
		return nil, err
	}
	u := &models.Unit{
		ID:           id,
		Name:         normalize.Unit(in.Name),
		Abbreviation: normalize.Abbreviation(in.Abbreviation),
	}
	var dishIDs []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repository.LockNames(ctx, tx, "unit"); err != nil {
			return err
		}
		conflict, err := s.resolver.UnitConflict(ctx, tx, u.Name, "name", id)
		if err != nil {
			return err
		}
		if conflict == nil && u.Abbreviation != "" {
			conflict, err = s.resolver.UnitConflict(ctx, tx, u.Abbreviation, "abbreviation", id)
			if err != nil {
				return err
			}
		}
		if conflict != nil {
			return conflict
		}
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, u); err != nil {
			return notFound(uniqueConflict(err, "unit", "name", u.Name))
		}
		dishIDs, err = repo.DishIDs(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	// recipe lines print the unit label
	if err := s.cache.Invalidate(ctx, dishIDs...); err != nil {
		s.log.Warn("dish cache invalidation failed", zap.Error(err))
	}
	return u, nil
}

func (s *unitService) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.GetByID(ctx, id); err != nil {
			return notFound(err)
		}
		lines, groceries, err := repo.CountUsage(ctx, id)
		if err != nil {
			return err
		}
		if lines+groceries > 0 {
			return &ReferenceError{
				Entity: "unit",
				ID:     id,
				InUse:  true,
				Usage:  fmt.Sprintf("%d recipe line(s) and %d grocery item(s)", lines, groceries),
			}
		}
		if err := repo.Delete(ctx, id); err != nil {
			if repository.IsForeignKeyViolation(err) {
				return &ReferenceError{Entity: "unit", ID: id, InUse: true, Usage: "other records"}
			}
			return notFound(err)
		}
		return nil
	})
}
