package enrollment

import "context"

type AttemptRepository interface {
	Create(ctx context.Context, attempt *PaymentAttempt) error
	Update(ctx context.Context, attempt *PaymentAttempt) error
	GetByReference(ctx context.Context, reference string) (*PaymentAttempt, error)
}

// LedgerRepository is the idempotency ledger. Record must be backed by a
// uniqueness constraint on reference; a duplicate write surfaces as a
// conflict error, which callers treat as "already granted".
type LedgerRepository interface {
	HasProcessed(ctx context.Context, reference string) (bool, error)
	Record(ctx context.Context, entry *LedgerEntry) error
}

type OfferRepository interface {
	GetByID(ctx context.Context, id uint) (*Offer, error)
}
