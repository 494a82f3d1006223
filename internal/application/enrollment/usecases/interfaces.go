package usecases

import (
	"context"
	"time"

	"coursepay/internal/domain/directory"
	vo "coursepay/internal/domain/enrollment/valueobjects"
)

// EnrolmentNotification carries everything the mailers need about one
// completed enrolment.
type EnrolmentNotification struct {
	Reference  string
	User       directory.User
	Course     directory.Course
	Teacher    *directory.User // nil when the course has no teacher
	Amount     vo.Money
	EnrolledAt time.Time
}

// EnrolmentNotifier sends enrolment mail. Each send is independently
// best-effort; a failed send never affects the grant.
type EnrolmentNotifier interface {
	NotifyStudentEnrolled(ctx context.Context, n EnrolmentNotification) error
	NotifyTeacherEnrolled(ctx context.Context, n EnrolmentNotification) error
	NotifyAdminsEnrolled(ctx context.Context, n EnrolmentNotification) error
	// NotifyAdminsPaymentError reports a permanently rejected payment so an
	// operator can investigate and refund if needed.
	NotifyAdminsPaymentError(ctx context.Context, subject string, details map[string]interface{}) error
}

// ChargeTracker reports successful charges to the gateway's integration
// tracker. Fire and forget.
type ChargeTracker interface {
	LogChargeSuccess(ctx context.Context, reference string)
}

// TransactionRunner runs fn atomically; repositories called with the ctx it
// passes in share one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
