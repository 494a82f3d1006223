package mappers

import (
	"gorm.io/datatypes"

	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/infrastructure/persistence/models"
)

func LedgerEntryToModel(e *enrollment.LedgerEntry) *models.LedgerEntryModel {
	return &models.LedgerEntryModel{
		ID:              e.ID,
		Reference:       e.Reference,
		UserID:          e.UserID,
		CourseID:        e.CourseID,
		OfferID:         e.OfferID,
		Amount:          e.Amount.AmountMinor(),
		Currency:        e.Amount.Currency(),
		GatewayStatus:   e.GatewayStatus,
		GatewayResponse: e.GatewayResponse,
		Raw:             datatypes.JSON(e.Raw),
		CreatedAt:       e.CreatedAt,
	}
}

func LedgerEntryToDomain(model *models.LedgerEntryModel) *enrollment.LedgerEntry {
	return &enrollment.LedgerEntry{
		ID:              model.ID,
		Reference:       model.Reference,
		UserID:          model.UserID,
		CourseID:        model.CourseID,
		OfferID:         model.OfferID,
		Amount:          vo.NewMoney(model.Amount, model.Currency),
		GatewayStatus:   model.GatewayStatus,
		GatewayResponse: model.GatewayResponse,
		Raw:             []byte(model.Raw),
		CreatedAt:       model.CreatedAt,
	}
}
