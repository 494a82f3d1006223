package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	enrolUsecases "coursepay/internal/application/enrollment/usecases"
	"coursepay/internal/shared/config"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
	"coursepay/internal/shared/utils"
)

type EnrolmentHandler struct {
	startUC    *enrolUsecases.StartEnrollmentUseCase
	completeUC *enrolUsecases.CompleteEnrollmentUseCase
	cfg        config.EnrolmentConfig
	logger     logger.Interface
}

func NewEnrolmentHandler(
	startUC *enrolUsecases.StartEnrollmentUseCase,
	completeUC *enrolUsecases.CompleteEnrollmentUseCase,
	cfg config.EnrolmentConfig,
	logger logger.Interface,
) *EnrolmentHandler {
	return &EnrolmentHandler{
		startUC:    startUC,
		completeUC: completeUC,
		cfg:        cfg,
		logger:     logger,
	}
}

type StartEnrolmentRequest struct {
	UserID   uint `json:"user_id" binding:"required"`
	CourseID uint `json:"course_id" binding:"required"`
	OfferID  uint `json:"offer_id" binding:"required"`
}

type StartEnrolmentResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	AccessToken      string `json:"access_token"`
}

// StartEnrolment opens a payment session and returns the gateway checkout
// URL the browser should be sent to.
func (h *EnrolmentHandler) StartEnrolment(c *gin.Context) {
	var req StartEnrolmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("failed to bind request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.startUC.Execute(c.Request.Context(), enrolUsecases.StartEnrollmentCommand{
		UserID:   req.UserID,
		CourseID: req.CourseID,
		OfferID:  req.OfferID,
	})
	if err != nil {
		h.logger.Errorw("failed to start enrolment", "error", err,
			"user_id", req.UserID, "course_id", req.CourseID, "offer_id", req.OfferID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "payment session created", StartEnrolmentResponse{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
		AccessToken:      result.AccessToken,
	})
}

// HandleReturn is the browser redirect back from the gateway checkout page.
// It only carries the transaction reference; the access token is recovered
// from the recorded attempt. The browser always ends up on the success or
// failure page, never on an API error body.
func (h *EnrolmentHandler) HandleReturn(c *gin.Context) {
	reference := c.Query("trxref")
	if reference == "" {
		reference = c.Query("reference")
	}
	if reference == "" {
		h.logger.Warnw("return redirect without reference", "client_ip", c.ClientIP())
		h.redirectFailure(c, "", "missing reference")
		return
	}

	outcome, err := h.completeUC.Execute(c.Request.Context(), enrolUsecases.CompleteEnrollmentCommand{
		Reference: reference,
	})
	if err != nil {
		if apperrors.IsGatewayUnavailable(err) {
			h.logger.Warnw("gateway unavailable on return redirect", "reference", reference, "error", err)
			h.redirectFailure(c, reference, "verification unavailable, please retry")
			return
		}
		h.logger.Errorw("failed to process return redirect", "reference", reference, "error", err)
		h.redirectFailure(c, reference, "payment could not be verified")
		return
	}

	if outcome.Status == enrolUsecases.OutcomeRejected {
		h.redirectFailure(c, reference, outcome.Reason)
		return
	}

	h.redirect(c, h.cfg.SuccessURL, url.Values{"reference": {reference}})
}

func (h *EnrolmentHandler) redirectFailure(c *gin.Context, reference, reason string) {
	params := url.Values{}
	if reference != "" {
		params.Set("reference", reference)
	}
	if reason != "" {
		params.Set("reason", reason)
	}
	h.redirect(c, h.cfg.FailureURL, params)
}

func (h *EnrolmentHandler) redirect(c *gin.Context, target string, params url.Values) {
	if target == "" {
		target = "/"
	}
	if len(params) > 0 {
		sep := "?"
		if u, err := url.Parse(target); err == nil && u.RawQuery != "" {
			sep = "&"
		}
		target = target + sep + params.Encode()
	}
	c.Redirect(http.StatusFound, target)
}
