package enrollment

import (
	"fmt"
	"time"

	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/shared/biztime"
)

// PaymentAttempt tracks one payment initiation against the gateway. The
// reference is generated before the gateway session is created and is the
// only key the browser brings back on the redirect channel, so the attempt
// is what lets that channel recover the access token.
type PaymentAttempt struct {
	id        uint
	reference string
	userID    uint
	courseID  uint
	offerID   uint
	amount    vo.Money
	status    vo.AttemptStatus

	failureReason *string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

func NewPaymentAttempt(reference string, token AccessToken, amount vo.Money) (*PaymentAttempt, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	if token.UserID == 0 || token.CourseID == 0 || token.OfferID == 0 {
		return nil, fmt.Errorf("access token is incomplete")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	now := biztime.NowUTC()

	return &PaymentAttempt{
		reference: reference,
		userID:    token.UserID,
		courseID:  token.CourseID,
		offerID:   token.OfferID,
		amount:    amount,
		status:    vo.AttemptStatusPending,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// MarkCompleted transitions the attempt to completed. Marking an already
// completed attempt is a no-op so duplicate deliveries stay idempotent.
func (a *PaymentAttempt) MarkCompleted() error {
	if a.status == vo.AttemptStatusCompleted {
		return nil
	}
	if a.status != vo.AttemptStatusPending {
		return fmt.Errorf("cannot complete attempt with status %s", a.status)
	}

	a.status = vo.AttemptStatusCompleted
	a.updatedAt = biztime.NowUTC()
	a.version++

	return nil
}

func (a *PaymentAttempt) MarkFailed(reason string) error {
	if a.status.IsFinal() {
		return fmt.Errorf("cannot fail attempt with final status %s", a.status)
	}

	a.status = vo.AttemptStatusFailed
	a.failureReason = &reason
	a.updatedAt = biztime.NowUTC()
	a.version++

	return nil
}

// Token rebuilds the access token this attempt was initiated with.
func (a *PaymentAttempt) Token() AccessToken {
	return AccessToken{
		UserID:   a.userID,
		CourseID: a.courseID,
		OfferID:  a.offerID,
	}
}

func (a *PaymentAttempt) ID() uint {
	return a.id
}

func (a *PaymentAttempt) Reference() string {
	return a.reference
}

func (a *PaymentAttempt) UserID() uint {
	return a.userID
}

func (a *PaymentAttempt) CourseID() uint {
	return a.courseID
}

func (a *PaymentAttempt) OfferID() uint {
	return a.offerID
}

func (a *PaymentAttempt) Amount() vo.Money {
	return a.amount
}

func (a *PaymentAttempt) Status() vo.AttemptStatus {
	return a.status
}

func (a *PaymentAttempt) FailureReason() *string {
	return a.failureReason
}

func (a *PaymentAttempt) Version() int {
	return a.version
}

func (a *PaymentAttempt) CreatedAt() time.Time {
	return a.createdAt
}

func (a *PaymentAttempt) UpdatedAt() time.Time {
	return a.updatedAt
}

// SetID sets the attempt ID after persistence (used by repository after Create)
func (a *PaymentAttempt) SetID(id uint) {
	a.id = id
}

// AttemptReconstructParams carries persisted state back into the aggregate.
type AttemptReconstructParams struct {
	ID            uint
	Reference     string
	UserID        uint
	CourseID      uint
	OfferID       uint
	Amount        vo.Money
	Status        vo.AttemptStatus
	FailureReason *string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ReconstructAttempt(p AttemptReconstructParams) *PaymentAttempt {
	return &PaymentAttempt{
		id:            p.ID,
		reference:     p.Reference,
		userID:        p.UserID,
		courseID:      p.CourseID,
		offerID:       p.OfferID,
		amount:        p.Amount,
		status:        p.Status,
		failureReason: p.FailureReason,
		version:       p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}
}
