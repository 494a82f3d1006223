package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	enrolUsecases "coursepay/internal/application/enrollment/usecases"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
	"coursepay/internal/shared/utils"
)

const signatureHeader = "X-Paystack-Signature"

const eventChargeSuccess = "charge.success"

// SignatureVerifier authenticates a webhook body against its signature
// header. A true return means the payload came from the gateway.
type SignatureVerifier interface {
	SignatureValid(body []byte, signature string) bool
}

// WebhookHandler receives the gateway's server-to-server notifications.
//
// Response codes drive the gateway's retry behavior: 2xx acknowledges the
// delivery (including permanent rejections, which retrying cannot fix),
// 5xx asks for a redelivery. Bad signatures get 400 and are never
// processed.
type WebhookHandler struct {
	completeUC *enrolUsecases.CompleteEnrollmentUseCase
	verifier   SignatureVerifier
	logger     logger.Interface
}

func NewWebhookHandler(
	completeUC *enrolUsecases.CompleteEnrollmentUseCase,
	verifier SignatureVerifier,
	logger logger.Interface,
) *WebhookHandler {
	return &WebhookHandler{
		completeUC: completeUC,
		verifier:   verifier,
		logger:     logger,
	}
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Metadata  struct {
			Custom       string `json:"custom"`
			CustomFields []struct {
				VariableName string `json:"variable_name"`
				Value        string `json:"value"`
			} `json:"custom_fields"`
		} `json:"metadata"`
	} `json:"data"`
}

// token returns the access token carried in the payload metadata, either as
// the plain "custom" field or as a custom_fields entry.
func (p *webhookPayload) token() string {
	if p.Data.Metadata.Custom != "" {
		return p.Data.Metadata.Custom
	}
	for _, f := range p.Data.Metadata.CustomFields {
		if f.VariableName == "custom" {
			return f.Value
		}
	}
	return ""
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	// The signature covers the raw body as delivered; it must be read
	// before any binding touches it.
	body, err := c.GetRawData()
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read request body")
		return
	}

	signature := c.GetHeader(signatureHeader)
	if !h.verifier.SignatureValid(body, signature) {
		h.logger.Warnw("webhook signature rejected",
			"client_ip", c.ClientIP(),
			"signature_present", signature != "")
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warnw("malformed webhook payload", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "malformed payload")
		return
	}

	if payload.Event != eventChargeSuccess {
		utils.SuccessResponse(c, http.StatusOK, "event ignored", nil)
		return
	}

	cmd := enrolUsecases.CompleteEnrollmentCommand{
		Reference: payload.Data.Reference,
		Token:     payload.token(),
	}

	outcome, err := h.completeUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		if apperrors.IsGatewayUnavailable(err) {
			h.logger.Warnw("gateway unavailable, requesting redelivery",
				"reference", cmd.Reference, "error", err)
			utils.ErrorResponse(c, http.StatusBadGateway, "verification temporarily unavailable")
			return
		}
		if apperrors.IsValidationError(err) || apperrors.IsNotFoundError(err) {
			// Permanently unprocessable; acknowledge so the gateway stops
			// redelivering.
			h.logger.Warnw("webhook permanently unprocessable",
				"reference", cmd.Reference, "error", err)
			utils.SuccessResponse(c, http.StatusOK, "notification ignored", nil)
			return
		}
		h.logger.Errorw("failed to process webhook", "reference", cmd.Reference, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to process notification")
		return
	}

	switch outcome.Status {
	case enrolUsecases.OutcomeRejected:
		utils.SuccessResponse(c, http.StatusOK, "payment rejected: "+outcome.Reason, nil)
	case enrolUsecases.OutcomeAlreadyProcessed:
		utils.SuccessResponse(c, http.StatusOK, "already processed", nil)
	default:
		utils.SuccessResponse(c, http.StatusOK, "enrolment granted", nil)
	}
}
