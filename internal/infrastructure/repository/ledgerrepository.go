package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"coursepay/internal/domain/enrollment"
	"coursepay/internal/infrastructure/persistence/mappers"
	"coursepay/internal/infrastructure/persistence/models"
	"coursepay/internal/shared/db"
	apperrors "coursepay/internal/shared/errors"
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) HasProcessed(ctx context.Context, reference string) (bool, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LedgerEntryModel{}).
		Where("reference = ?", reference).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}

	return count > 0, nil
}

// Record inserts the entry. The unique index on reference rejects a second
// writer; that surfaces as a conflict error so the caller can treat the
// delivery as already processed.
func (r *LedgerRepository) Record(ctx context.Context, entry *enrollment.LedgerEntry) error {
	model := mappers.LedgerEntryToModel(entry)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("ledger entry already recorded", err.Error())
		}
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	entry.ID = model.ID

	return nil
}

func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) (*enrollment.LedgerEntry, error) {
	var model models.LedgerEntryModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("ledger entry not found")
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return mappers.LedgerEntryToDomain(&model), nil
}
