package models

import "time"

type CourseModel struct {
	ID        uint   `gorm:"primaryKey"`
	FullName  string `gorm:"size:255;not null"`
	ShortName string `gorm:"size:100;not null"`
	TeacherID *uint  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CourseModel) TableName() string {
	return "courses"
}
