package paymentgateway

import "context"

// PaymentGateway is the port the enrolment flow uses to talk to the payment
// processor. Implementations must report transport failures and unparseable
// responses as retryable gateway errors, and a declined or abandoned
// transaction as a normal Verification result.
type PaymentGateway interface {
	// InitializeTransaction opens a payment session for the given reference.
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	// VerifyTransaction fetches the authoritative state of a transaction.
	// Its result overrides anything a notification claimed.
	VerifyTransaction(ctx context.Context, reference string) (*Verification, error)
}

// InitializeRequest contains the data needed to open a payment session.
// AmountMinor is in the smallest currency unit (e.g. kobo for NGN).
type InitializeRequest struct {
	AmountMinor int64
	Email       string
	Reference   string
	CallbackURL string
}

type InitializeResponse struct {
	AuthorizationURL string
	Reference        string
}

// Verification is the processor's record of one transaction.
// AmountMinor is in the smallest currency unit, matching the offer cost
// stored in the database.
type Verification struct {
	GatewayStatus   string
	AmountMinor     int64
	Currency        string
	GatewayResponse string
	Raw             []byte
}

// StatusSuccess is the only gateway status that releases a grant.
const StatusSuccess = "success"
