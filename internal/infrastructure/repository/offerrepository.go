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

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) GetByID(ctx context.Context, id uint) (*enrollment.Offer, error) {
	var model models.OfferModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("offer not found")
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return mappers.OfferToDomain(&model), nil
}
