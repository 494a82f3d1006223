package mappers

import (
	"coursepay/internal/domain/directory"
	"coursepay/internal/infrastructure/persistence/models"
)

func UserToDomain(model *models.UserModel) *directory.User {
	return &directory.User{
		ID:       model.ID,
		Email:    model.Email,
		FullName: model.FullName,
	}
}

func CourseToDomain(model *models.CourseModel) *directory.Course {
	return &directory.Course{
		ID:        model.ID,
		FullName:  model.FullName,
		ShortName: model.ShortName,
	}
}
