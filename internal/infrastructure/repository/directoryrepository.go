package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"coursepay/internal/domain/directory"
	"coursepay/internal/infrastructure/persistence/mappers"
	"coursepay/internal/infrastructure/persistence/models"
	"coursepay/internal/shared/db"
	apperrors "coursepay/internal/shared/errors"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*directory.User, error) {
	var model models.UserModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mappers.UserToDomain(&model), nil
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) GetByID(ctx context.Context, id uint) (*directory.Course, error) {
	var model models.CourseModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("course not found")
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return mappers.CourseToDomain(&model), nil
}

func (r *CourseRepository) GetTeacher(ctx context.Context, courseID uint) (*directory.User, error) {
	var course models.CourseModel

	if err := db.GetTxFromContext(ctx, r.db).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("course not found")
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if course.TeacherID == nil {
		return nil, nil
	}

	var teacher models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).First(&teacher, *course.TeacherID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}

	return mappers.UserToDomain(&teacher), nil
}
