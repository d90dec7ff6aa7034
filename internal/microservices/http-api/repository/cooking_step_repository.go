package repository

import (
	"context"
	"fmt"

	"cookbook/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type CookingStepRepo struct {
	db *gorm.DB
}

func NewCookingStepRepo(db *gorm.DB) *CookingStepRepo {
	return &CookingStepRepo{db: db}
}

func (r *CookingStepRepo) WithTx(tx *gorm.DB) *CookingStepRepo {
	return &CookingStepRepo{db: tx}
}

func (r *CookingStepRepo) GetByNumber(ctx context.Context, dishID int64, stepNumber int) (*models.CookingStep, error) {
	var step models.CookingStep
	if err := forUpdate(r.db.WithContext(ctx)).
		Where("dish_id = ? AND step_number = ?", dishID, stepNumber).First(&step).Error; err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *CookingStepRepo) Create(ctx context.Context, step *models.CookingStep) error {
	if err := r.db.WithContext(ctx).Create(step).Error; err != nil {
		return fmt.Errorf("create cooking step: %w", err)
	}
	return nil
}

func (r *CookingStepRepo) SetImage(ctx context.Context, id int64, key string) error {
	if err := r.db.WithContext(ctx).Model(&models.CookingStep{}).Where("id = ?", id).
		Update("image", key).Error; err != nil {
		return fmt.Errorf("update step image: %w", err)
	}
	return nil
}

func (r *CookingStepRepo) DeleteByDish(ctx context.Context, dishID int64) error {
	if err := r.db.WithContext(ctx).Where("dish_id = ?", dishID).Delete(&models.CookingStep{}).Error; err != nil {
		return fmt.Errorf("delete cooking steps: %w", err)
	}
	return nil
}
