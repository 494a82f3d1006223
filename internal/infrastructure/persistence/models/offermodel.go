package models

import "time"

type OfferModel struct {
	ID            uint   `gorm:"primaryKey"`
	CourseID      uint   `gorm:"index;not null"`
	Status        string `gorm:"size:20;not null;default:'enabled'"`
	CostAmount    int64  `gorm:"not null"`
	Currency      string `gorm:"size:10;not null;default:'NGN'"`
	PeriodSeconds int64  `gorm:"not null;default:0"`
	RoleID        uint   `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OfferModel) TableName() string {
	return "enrolment_offers"
}
