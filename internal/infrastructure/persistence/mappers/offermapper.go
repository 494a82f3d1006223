package mappers

import (
	"time"

	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/infrastructure/persistence/models"
)

func OfferToDomain(model *models.OfferModel) *enrollment.Offer {
	return &enrollment.Offer{
		ID:       model.ID,
		CourseID: model.CourseID,
		Status:   enrollment.OfferStatus(model.Status),
		Cost:     vo.NewMoney(model.CostAmount, model.Currency),
		Period:   time.Duration(model.PeriodSeconds) * time.Second,
		RoleID:   model.RoleID,
	}
}

func OfferToModel(o *enrollment.Offer) *models.OfferModel {
	return &models.OfferModel{
		ID:            o.ID,
		CourseID:      o.CourseID,
		Status:        string(o.Status),
		CostAmount:    o.Cost.AmountMinor(),
		Currency:      o.Cost.Currency(),
		PeriodSeconds: int64(o.Period / time.Second),
		RoleID:        o.RoleID,
	}
}
