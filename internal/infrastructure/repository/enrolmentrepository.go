package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"coursepay/internal/domain/directory"
	"coursepay/internal/infrastructure/persistence/models"
	"coursepay/internal/shared/biztime"
	"coursepay/internal/shared/db"
)

const (
	enrolmentStatusActive    = "active"
	enrolmentStatusSuspended = "suspended"
)

// EnrolmentRepository implements directory.Enroller against the
// user_enrolments table. One row per user and course; Enrol is idempotent
// and reactivates a suspended row instead of inserting a second one.
type EnrolmentRepository struct {
	db *gorm.DB
}

func NewEnrolmentRepository(db *gorm.DB) *EnrolmentRepository {
	return &EnrolmentRepository{db: db}
}

func (r *EnrolmentRepository) Enrol(ctx context.Context, cmd directory.EnrolCommand) error {
	tx := db.GetTxFromContext(ctx, r.db)
	now := biztime.NowUTC()

	var timeStart, timeEnd *time.Time
	if !cmd.TimeStart.IsZero() {
		timeStart = &cmd.TimeStart
	}
	if !cmd.TimeEnd.IsZero() {
		timeEnd = &cmd.TimeEnd
	}

	var existing models.EnrolmentModel
	err := tx.Where("user_id = ? AND course_id = ?", cmd.UserID, cmd.CourseID).
		First(&existing).Error

	switch {
	case err == nil:
		result := tx.Model(&models.EnrolmentModel{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"offer_id":   cmd.OfferID,
				"role_id":    cmd.RoleID,
				"status":     enrolmentStatusActive,
				"time_start": timeStart,
				"time_end":   timeEnd,
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to reactivate enrolment: %w", result.Error)
		}
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		model := &models.EnrolmentModel{
			UserID:    cmd.UserID,
			CourseID:  cmd.CourseID,
			OfferID:   cmd.OfferID,
			RoleID:    cmd.RoleID,
			Status:    enrolmentStatusActive,
			TimeStart: timeStart,
			TimeEnd:   timeEnd,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create enrolment: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("failed to look up enrolment: %w", err)
	}
}

func (r *EnrolmentRepository) Unenrol(ctx context.Context, userID, courseID uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.EnrolmentModel{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{
			"status":     enrolmentStatusSuspended,
			"updated_at": biztime.NowUTC(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to suspend enrolment: %w", result.Error)
	}

	return nil
}

func (r *EnrolmentRepository) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.EnrolmentModel{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, enrolmentStatusActive).
		Where("time_end IS NULL OR time_end > ?", biztime.NowUTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check enrolment: %w", err)
	}

	return count > 0, nil
}
