// Package paystack is the typed wrapper around the Paystack REST API.
// It issues exactly two calls on behalf of the enrolment flow: initialize
// and verify. Transport failures and unparseable responses are reported as
// distinct retryable error classes; a payment the gateway reports as failed
// comes back as an ordinary VerifyResult.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"coursepay/internal/shared/config"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     logger.Interface
}

func NewClient(cfg *config.PaystackConfig, log logger.Interface) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		secretKey:  cfg.SecretKey(),
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// InitializeRequest contains the data needed to open a payment session.
// Amount is in the smallest currency unit (kobo/cents).
type InitializeRequest struct {
	AmountMinor int64
	Email       string
	Reference   string
	CallbackURL string
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult is the server-side truth about one transaction. Amount is in
// the smallest currency unit. Status reflects the top-level API status;
// GatewayStatus is the transaction status string ("success", "failed",
// "abandoned", ...).
type VerifyResult struct {
	Status          bool
	GatewayStatus   string
	AmountMinor     int64
	Currency        string
	GatewayResponse string
	Message         string
	Raw             json.RawMessage
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Amount          int64  `json:"amount"`
		Currency        string `json:"currency"`
		Status          string `json:"status"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

// Initialize opens a payment session and returns the URL the browser should
// be redirected to.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":       req.AmountMinor,
		"email":        req.Email,
		"reference":    req.Reference,
		"callback_url": req.CallbackURL,
	})
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode initialize request", err.Error())
	}

	body, err := c.do(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	var resp initializeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewGatewayProtocolError("malformed initialize response", err.Error())
	}

	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, apperrors.NewGatewayProtocolError("initialize rejected by gateway", resp.Message)
	}

	return &InitializeResult{
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Reference:        resp.Data.Reference,
	}, nil
}

// Verify fetches the authoritative state of a transaction by reference.
// The result is trusted over anything a webhook or redirect claimed.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if reference == "" {
		return nil, apperrors.NewValidationError("reference is required")
	}

	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.NewGatewayProtocolError("malformed verify response", err.Error())
	}

	return &VerifyResult{
		Status:          resp.Status,
		GatewayStatus:   resp.Data.Status,
		AmountMinor:     resp.Data.Amount,
		Currency:        resp.Data.Currency,
		GatewayResponse: resp.Data.GatewayResponse,
		Message:         resp.Message,
		Raw:             json.RawMessage(body),
	}, nil
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build gateway request", err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("gateway request failed", "method", method, "url", url, "error", err)
		return nil, apperrors.NewGatewayConnectError(
			fmt.Sprintf("failed to reach payment gateway: %s %s", method, url),
			err.Error(),
		)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewGatewayConnectError("failed to read gateway response", err.Error())
	}

	return raw, nil
}
