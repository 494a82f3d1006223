// Package directory exposes the host system's user and course records and
// its enrolment operation. The verification core only performs key lookups
// and grant/revoke calls here; ownership of these records is external.
package directory

import (
	"context"
	"time"
)

type User struct {
	ID       uint
	Email    string
	FullName string
}

type Course struct {
	ID        uint
	FullName  string
	ShortName string
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*User, error)
}

type CourseRepository interface {
	GetByID(ctx context.Context, id uint) (*Course, error)
	// GetTeacher returns the course's primary teacher, or nil when the
	// course has none.
	GetTeacher(ctx context.Context, courseID uint) (*User, error)
}

// EnrolCommand describes one grant. A zero end time means indefinite
// access.
type EnrolCommand struct {
	UserID    uint
	CourseID  uint
	OfferID   uint
	RoleID    uint
	TimeStart time.Time
	TimeEnd   time.Time
}

// Enroller grants and revokes course access. Enrol must be idempotent for
// an already-active enrolment.
type Enroller interface {
	Enrol(ctx context.Context, cmd EnrolCommand) error
	Unenrol(ctx context.Context, userID, courseID uint) error
	IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error)
}
