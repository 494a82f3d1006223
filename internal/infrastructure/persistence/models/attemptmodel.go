package models

import "time"

type PaymentAttemptModel struct {
	ID            uint    `gorm:"primaryKey"`
	Reference     string  `gorm:"uniqueIndex;size:64;not null"`
	UserID        uint    `gorm:"index;not null"`
	CourseID      uint    `gorm:"index;not null"`
	OfferID       uint    `gorm:"index;not null"`
	Amount        int64   `gorm:"not null"`
	Currency      string  `gorm:"size:10;not null;default:'NGN'"`
	Status        string  `gorm:"size:20;not null;index"`
	FailureReason *string `gorm:"type:text"`
	Version       int     `gorm:"default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PaymentAttemptModel) TableName() string {
	return "payment_attempts"
}
