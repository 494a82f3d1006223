package mappers

import (
	"fmt"

	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/infrastructure/persistence/models"
)

func AttemptToModel(a *enrollment.PaymentAttempt) *models.PaymentAttemptModel {
	return &models.PaymentAttemptModel{
		ID:            a.ID(),
		Reference:     a.Reference(),
		UserID:        a.UserID(),
		CourseID:      a.CourseID(),
		OfferID:       a.OfferID(),
		Amount:        a.Amount().AmountMinor(),
		Currency:      a.Amount().Currency(),
		Status:        a.Status().String(),
		FailureReason: a.FailureReason(),
		Version:       a.Version(),
		CreatedAt:     a.CreatedAt(),
		UpdatedAt:     a.UpdatedAt(),
	}
}

func AttemptToDomain(model *models.PaymentAttemptModel) (*enrollment.PaymentAttempt, error) {
	status := vo.AttemptStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid attempt status: %s", model.Status)
	}

	return enrollment.ReconstructAttempt(enrollment.AttemptReconstructParams{
		ID:            model.ID,
		Reference:     model.Reference,
		UserID:        model.UserID,
		CourseID:      model.CourseID,
		OfferID:       model.OfferID,
		Amount:        vo.NewMoney(model.Amount, model.Currency),
		Status:        status,
		FailureReason: model.FailureReason,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}), nil
}
