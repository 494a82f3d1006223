package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/infrastructure/paystack"
	"coursepay/internal/shared/logger"
)

const testSecret = "sk_test_xyz"

type hmacVerifier struct{ secret string }

func (v hmacVerifier) SignatureValid(body []byte, signature string) bool {
	return paystack.SignatureValid(body, signature, v.secret)
}

func newWebhookRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// Requests that pass signature verification and carry a charge.success
	// event would reach the use case; these tests only exercise the paths
	// in front of it.
	h := NewWebhookHandler(nil, hmacVerifier{secret: testSecret}, logger.NewLogger())

	router := gin.New()
	router.POST("/paystack/webhook", h.HandleWebhook)
	return router
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/paystack/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Paystack-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookHandler_MissingSignatureRejected(t *testing.T) {
	router := newWebhookRouter(t)

	w := postWebhook(router, []byte(`{"event":"charge.success"}`), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_ForgedSignatureRejected(t *testing.T) {
	router := newWebhookRouter(t)
	body := []byte(`{"event":"charge.success","data":{"reference":"abc123"}}`)

	w := postWebhook(router, body, paystack.Sign(body, "sk_test_wrong"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_TamperedBodyRejected(t *testing.T) {
	router := newWebhookRouter(t)
	original := []byte(`{"event":"charge.success","data":{"reference":"abc123"}}`)
	tampered := []byte(`{"event":"charge.success","data":{"reference":"abc124"}}`)

	w := postWebhook(router, tampered, paystack.Sign(original, testSecret))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookHandler_UnrelatedEventAcknowledged(t *testing.T) {
	router := newWebhookRouter(t)
	body := []byte(`{"event":"transfer.success","data":{"reference":"abc123"}}`)

	w := postWebhook(router, body, paystack.Sign(body, testSecret))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "event ignored", resp["message"])
}

func TestWebhookHandler_MalformedBodyWithValidSignature(t *testing.T) {
	router := newWebhookRouter(t)
	body := []byte(`not json at all`)

	w := postWebhook(router, body, paystack.Sign(body, testSecret))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookPayload_TokenExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain custom field",
			body: `{"event":"charge.success","data":{"reference":"r1","metadata":{"custom":"7-42-3"}}}`,
			want: "7-42-3",
		},
		{
			name: "custom_fields entry",
			body: `{"event":"charge.success","data":{"reference":"r1","metadata":{"custom_fields":[{"variable_name":"custom","value":"7-42-3"}]}}}`,
			want: "7-42-3",
		},
		{
			name: "no token",
			body: `{"event":"charge.success","data":{"reference":"r1"}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload webhookPayload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &payload))
			assert.Equal(t, tt.want, payload.token())
		})
	}
}
