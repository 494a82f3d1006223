package models

import "time"

// EnrolmentModel holds one user's access to one course. At most one row per
// user and course; re-enrolling updates the existing row.
type EnrolmentModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:uk_user_course;not null"`
	CourseID  uint   `gorm:"uniqueIndex:uk_user_course;not null"`
	OfferID   uint   `gorm:"index;not null"`
	RoleID    uint   `gorm:"not null"`
	Status    string `gorm:"size:20;not null;default:'active'"`
	TimeStart *time.Time
	TimeEnd   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (EnrolmentModel) TableName() string {
	return "user_enrolments"
}
