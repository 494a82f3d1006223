package enrollment

import (
	"fmt"
	"time"

	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/shared/biztime"
)

// LedgerEntry is the durable record of one completed, gateway-verified
// grant. At most one entry exists per reference; writing the entry is the
// commit step of the verification flow and the second writer in a
// duplicate-delivery race loses on the unique index, not in application
// code.
type LedgerEntry struct {
	ID              uint
	Reference       string
	UserID          uint
	CourseID        uint
	OfferID         uint
	Amount          vo.Money // amount verified against the gateway, minor units
	GatewayStatus   string
	GatewayResponse string
	Raw             []byte // raw verify payload, kept for audit
	CreatedAt       time.Time
}

func NewLedgerEntry(reference string, token AccessToken, amount vo.Money, gatewayStatus, gatewayResponse string, raw []byte) (*LedgerEntry, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	if token.UserID == 0 || token.CourseID == 0 || token.OfferID == 0 {
		return nil, fmt.Errorf("access token is incomplete")
	}
	if gatewayStatus == "" {
		return nil, fmt.Errorf("gateway status is required")
	}

	return &LedgerEntry{
		Reference:       reference,
		UserID:          token.UserID,
		CourseID:        token.CourseID,
		OfferID:         token.OfferID,
		Amount:          amount,
		GatewayStatus:   gatewayStatus,
		GatewayResponse: gatewayResponse,
		Raw:             raw,
		CreatedAt:       biztime.NowUTC(),
	}, nil
}
