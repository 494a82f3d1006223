package enrollment

import (
	"time"

	vo "coursepay/internal/domain/enrollment/valueobjects"
)

type OfferStatus string

const (
	OfferStatusEnabled  OfferStatus = "enabled"
	OfferStatusDisabled OfferStatus = "disabled"
)

// Offer is one purchasable enrolment for a course: its price, currency,
// enrolment period, and the role granted. Offers are admin-managed; the
// verification flow treats them as read-only input.
type Offer struct {
	ID       uint
	CourseID uint
	Status   OfferStatus
	Cost     vo.Money
	Period   time.Duration // zero means indefinite enrolment
	RoleID   uint
}

func (o *Offer) IsEnabled() bool {
	return o.Status == OfferStatusEnabled
}

// EnrolmentWindow derives the enrolment start and end times from the offer
// period. The start is always the grant time; a zero period yields a zero
// end, meaning indefinite access.
func (o *Offer) EnrolmentWindow(now time.Time) (start, end time.Time) {
	if o.Period == 0 {
		return now, time.Time{}
	}
	return now, now.Add(o.Period)
}
