package paystack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/shared/config"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.PaystackConfig{
		TestSecretKey:  "sk_test_xyz",
		BaseURL:        baseURL,
		TimeoutSeconds: 2,
	}, logger.NewLogger())
}

func TestClient_VerifySuccess(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {
				"amount": 500000,
				"currency": "NGN",
				"status": "success",
				"gateway_response": "Successful"
			}
		}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Verify(context.Background(), "abc123")

	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test_xyz", gotAuth)
	assert.Equal(t, "/transaction/verify/abc123", gotPath)
	assert.True(t, result.Status)
	assert.Equal(t, "success", result.GatewayStatus)
	assert.Equal(t, int64(500000), result.AmountMinor)
	assert.Equal(t, "NGN", result.Currency)
	assert.NotEmpty(t, result.Raw)
}

func TestClient_VerifyFailedPaymentIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Verification successful",
			"data": {"amount": 500000, "currency": "NGN", "status": "failed", "gateway_response": "Declined"}
		}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Verify(context.Background(), "abc123")

	require.NoError(t, err, "a declined payment travels as a result, not an error")
	assert.Equal(t, "failed", result.GatewayStatus)
}

func TestClient_VerifyTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).Verify(context.Background(), "abc123")

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailable(err))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGatewayConnect, appErr.Type)
}

func TestClient_VerifyMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway maintenance</html>`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Verify(context.Background(), "abc123")

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailable(err))
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrorTypeGatewayProtocol, appErr.Type)
}

func TestClient_VerifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Verify(context.Background(), "abc123")

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailable(err))
}

func TestClient_VerifyEmptyReference(t *testing.T) {
	_, err := newTestClient("http://unused").Verify(context.Background(), "")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestClient_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/xyz",
				"access_code": "xyz",
				"reference": "abc123"
			}
		}`))
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Initialize(context.Background(), InitializeRequest{
		AmountMinor: 500000,
		Email:       "student@example.com",
		Reference:   "abc123",
		CallbackURL: "https://lms.example.com/enrol/return",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/xyz", result.AuthorizationURL)
	assert.Equal(t, "abc123", result.Reference)
}

func TestClient_InitializeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Initialize(context.Background(), InitializeRequest{
		AmountMinor: 500000,
		Email:       "student@example.com",
		Reference:   "abc123",
	})

	require.Error(t, err)
}
