package models

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEntryModel is append-only. The unique index on reference is what
// makes the grant at-most-once: concurrent writers for the same reference
// race on the insert and exactly one wins.
type LedgerEntryModel struct {
	ID              uint           `gorm:"primaryKey"`
	Reference       string         `gorm:"uniqueIndex;size:64;not null"`
	UserID          uint           `gorm:"index;not null"`
	CourseID        uint           `gorm:"index;not null"`
	OfferID         uint           `gorm:"index;not null"`
	Amount          int64          `gorm:"not null"`
	Currency        string         `gorm:"size:10;not null"`
	GatewayStatus   string         `gorm:"size:20;not null"`
	GatewayResponse string         `gorm:"size:255"`
	Raw             datatypes.JSON `gorm:"type:json"`
	CreatedAt       time.Time
}

func (LedgerEntryModel) TableName() string {
	return "enrolment_ledger"
}
