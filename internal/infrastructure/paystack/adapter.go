package paystack

import (
	"context"

	"coursepay/internal/application/enrollment/paymentgateway"
)

// Gateway adapts Client to the application-level payment gateway port.
type Gateway struct {
	client *Client
}

var _ paymentgateway.PaymentGateway = (*Gateway)(nil)

func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) InitializeTransaction(ctx context.Context, req paymentgateway.InitializeRequest) (*paymentgateway.InitializeResponse, error) {
	result, err := g.client.Initialize(ctx, InitializeRequest{
		AmountMinor: req.AmountMinor,
		Email:       req.Email,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return nil, err
	}

	return &paymentgateway.InitializeResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
	}, nil
}

func (g *Gateway) VerifyTransaction(ctx context.Context, reference string) (*paymentgateway.Verification, error) {
	result, err := g.client.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}

	return &paymentgateway.Verification{
		GatewayStatus:   result.GatewayStatus,
		AmountMinor:     result.AmountMinor,
		Currency:        result.Currency,
		GatewayResponse: result.GatewayResponse,
		Raw:             result.Raw,
	}, nil
}
