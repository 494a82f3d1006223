package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"coursepay/internal/domain/enrollment"
	"coursepay/internal/infrastructure/persistence/mappers"
	"coursepay/internal/infrastructure/persistence/models"
	"coursepay/internal/shared/db"
	apperrors "coursepay/internal/shared/errors"
)

type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (r *AttemptRepository) Create(ctx context.Context, a *enrollment.PaymentAttempt) error {
	model := mappers.AttemptToModel(a)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment attempt: %w", err)
	}

	// Write back the auto-generated ID to the domain object
	a.SetID(model.ID)

	return nil
}

func (r *AttemptRepository) Update(ctx context.Context, a *enrollment.PaymentAttempt) error {
	model := mappers.AttemptToModel(a)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentAttemptModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"failure_reason": model.FailureReason,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update payment attempt: %w", result.Error)
	}

	return nil
}

func (r *AttemptRepository) GetByReference(ctx context.Context, reference string) (*enrollment.PaymentAttempt, error) {
	var model models.PaymentAttemptModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment attempt not found")
		}
		return nil, fmt.Errorf("failed to get payment attempt: %w", err)
	}

	return mappers.AttemptToDomain(&model)
}
