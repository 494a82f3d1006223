package usecases

import (
	"context"
	"fmt"
	"time"

	"coursepay/internal/application/enrollment/paymentgateway"
	"coursepay/internal/domain/directory"
	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/shared/biztime"
	"coursepay/internal/shared/config"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/goroutine"
	"coursepay/internal/shared/logger"
)

type OutcomeStatus string

const (
	// OutcomeGranted means this call verified the payment and released the
	// enrolment.
	OutcomeGranted OutcomeStatus = "granted"
	// OutcomeAlreadyProcessed means the reference was granted before; the
	// caller should acknowledge without side effects.
	OutcomeAlreadyProcessed OutcomeStatus = "already_processed"
	// OutcomeRejected means the payment is permanently unacceptable
	// (declined, wrong currency, underpaid). Retrying cannot change it.
	OutcomeRejected OutcomeStatus = "rejected"
)

type EnrollmentOutcome struct {
	Status OutcomeStatus
	Reason string
}

// CompleteEnrollmentCommand identifies one payment to settle. Token is the
// encoded access token from the notification payload; when empty (the
// redirect channel only carries the reference) the token is recovered from
// the recorded payment attempt.
type CompleteEnrollmentCommand struct {
	Reference string
	Token     string
}

// CompleteEnrollmentUseCase settles one payment notification end to end:
// resolve the access token, re-verify the transaction with the gateway,
// apply the anti-fraud checks, and release the enrolment at most once per
// reference.
//
// Transient failures (gateway unreachable, unparseable response, database
// errors before the commit point) surface as errors so the delivery is
// retried. Permanent mismatches come back as a Rejected outcome so the
// caller acknowledges the delivery and stops the retry loop.
type CompleteEnrollmentUseCase struct {
	attemptRepo enrollment.AttemptRepository
	ledgerRepo  enrollment.LedgerRepository
	offerRepo   enrollment.OfferRepository
	userRepo    directory.UserRepository
	courseRepo  directory.CourseRepository
	enroller    directory.Enroller
	gateway     paymentgateway.PaymentGateway
	txRunner    TransactionRunner
	notifier    EnrolmentNotifier // Optional
	tracker     ChargeTracker     // Optional
	cfg         config.EnrolmentConfig
	logger      logger.Interface
}

func NewCompleteEnrollmentUseCase(
	attemptRepo enrollment.AttemptRepository,
	ledgerRepo enrollment.LedgerRepository,
	offerRepo enrollment.OfferRepository,
	userRepo directory.UserRepository,
	courseRepo directory.CourseRepository,
	enroller directory.Enroller,
	gateway paymentgateway.PaymentGateway,
	txRunner TransactionRunner,
	cfg config.EnrolmentConfig,
	logger logger.Interface,
) *CompleteEnrollmentUseCase {
	return &CompleteEnrollmentUseCase{
		attemptRepo: attemptRepo,
		ledgerRepo:  ledgerRepo,
		offerRepo:   offerRepo,
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		enroller:    enroller,
		gateway:     gateway,
		txRunner:    txRunner,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetNotifier sets the enrolment notifier (optional dependency injection)
func (uc *CompleteEnrollmentUseCase) SetNotifier(notifier EnrolmentNotifier) {
	uc.notifier = notifier
}

// SetTracker sets the charge tracker (optional dependency injection)
func (uc *CompleteEnrollmentUseCase) SetTracker(tracker ChargeTracker) {
	uc.tracker = tracker
}

func (uc *CompleteEnrollmentUseCase) Execute(ctx context.Context, cmd CompleteEnrollmentCommand) (*EnrollmentOutcome, error) {
	if cmd.Reference == "" {
		return nil, apperrors.NewValidationError("reference is required")
	}

	attempt, token, err := uc.resolveToken(ctx, cmd)
	if err != nil {
		return nil, uc.flagPermanent(cmd, err)
	}

	user, err := uc.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, uc.flagPermanent(cmd, err)
	}
	course, err := uc.courseRepo.GetByID(ctx, token.CourseID)
	if err != nil {
		return nil, uc.flagPermanent(cmd, err)
	}
	offer, err := uc.offerRepo.GetByID(ctx, token.OfferID)
	if err != nil {
		return nil, uc.flagPermanent(cmd, err)
	}
	if !offer.IsEnabled() {
		return nil, uc.flagPermanent(cmd, apperrors.NewValidationError("offer is disabled"))
	}
	if offer.CourseID != token.CourseID {
		return nil, uc.flagPermanent(cmd, apperrors.NewValidationError("offer does not belong to course"))
	}

	// The gateway's verify response is the only trusted source; the
	// notification payload's own status and amount are ignored. Connect and
	// protocol errors pass through untouched so the caller can signal the
	// gateway to redeliver.
	verification, err := uc.gateway.VerifyTransaction(ctx, cmd.Reference)
	if err != nil {
		return nil, err
	}

	if verification.GatewayStatus != paymentgateway.StatusSuccess {
		return uc.rejectUnsuccessful(ctx, cmd.Reference, attempt, token, verification)
	}

	verified := vo.NewMoney(verification.AmountMinor, verification.Currency)
	if verified.Currency() != offer.Cost.Currency() {
		reason := fmt.Sprintf("currency mismatch: expected %s, got %s", offer.Cost.Currency(), verified.Currency())
		return uc.reject(ctx, cmd.Reference, attempt, token, verification, reason)
	}
	if !verified.Covers(offer.Cost) {
		reason := fmt.Sprintf("amount below cost: expected at least %s, got %s", offer.Cost.String(), verified.String())
		return uc.reject(ctx, cmd.Reference, attempt, token, verification, reason)
	}

	processed, err := uc.ledgerRepo.HasProcessed(ctx, cmd.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger: %w", err)
	}
	if processed {
		// A prior delivery won; make sure the grant it promised actually
		// stuck before acknowledging again.
		if err := uc.ensureEnrolled(ctx, token, offer); err != nil {
			return nil, err
		}
		uc.logger.Infow("payment already processed", "reference", cmd.Reference)
		return &EnrollmentOutcome{Status: OutcomeAlreadyProcessed}, nil
	}

	enrolled, err := uc.enroller.IsEnrolled(ctx, token.UserID, token.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrolment: %w", err)
	}
	if enrolled {
		uc.logger.Infow("user already enrolled", "reference", cmd.Reference,
			"user_id", token.UserID, "course_id", token.CourseID)
		return &EnrollmentOutcome{Status: OutcomeAlreadyProcessed}, nil
	}

	// Commit point. Ledger write and grant land in one transaction; the
	// unique index on reference decides a duplicate delivery race and the
	// loser sees a duplicate error, rolls back, and acknowledges.
	entry, err := enrollment.NewLedgerEntry(cmd.Reference, token, verified,
		verification.GatewayStatus, verification.GatewayResponse, verification.Raw)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build ledger entry", err.Error())
	}

	err = uc.txRunner.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.ledgerRepo.Record(txCtx, entry); err != nil {
			return err
		}
		if err := uc.ensureEnrolled(txCtx, token, offer); err != nil {
			return err
		}
		uc.completeAttempt(txCtx, attempt)
		return nil
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) || apperrors.IsConflictError(err) {
			uc.logger.Infow("lost duplicate delivery race", "reference", cmd.Reference)
			return &EnrollmentOutcome{Status: OutcomeAlreadyProcessed}, nil
		}
		return nil, fmt.Errorf("failed to commit grant: %w", err)
	}

	uc.logger.Infow("enrolment granted",
		"reference", cmd.Reference,
		"user_id", token.UserID,
		"course_id", token.CourseID,
		"offer_id", token.OfferID,
		"amount", verified.String())

	uc.fanOutSuccess(cmd.Reference, *user, *course, verified)

	return &EnrollmentOutcome{Status: OutcomeGranted}, nil
}

// resolveToken returns the recorded attempt (nil when none exists) and the
// access token, taken from the command when present and recovered from the
// attempt otherwise.
func (uc *CompleteEnrollmentUseCase) resolveToken(ctx context.Context, cmd CompleteEnrollmentCommand) (*enrollment.PaymentAttempt, enrollment.AccessToken, error) {
	attempt, err := uc.attemptRepo.GetByReference(ctx, cmd.Reference)
	if err != nil && !apperrors.IsNotFoundError(err) {
		return nil, enrollment.AccessToken{}, fmt.Errorf("failed to load payment attempt: %w", err)
	}

	if cmd.Token != "" {
		token, err := enrollment.DecodeToken(cmd.Token)
		if err != nil {
			return nil, enrollment.AccessToken{}, err
		}
		return attempt, token, nil
	}

	if attempt == nil {
		return nil, enrollment.AccessToken{}, apperrors.NewValidationError(
			"unknown reference", "no access token supplied and no attempt recorded")
	}
	return attempt, attempt.Token(), nil
}

func (uc *CompleteEnrollmentUseCase) ensureEnrolled(ctx context.Context, token enrollment.AccessToken, offer *enrollment.Offer) error {
	enrolled, err := uc.enroller.IsEnrolled(ctx, token.UserID, token.CourseID)
	if err != nil {
		return fmt.Errorf("failed to check enrolment: %w", err)
	}
	if enrolled {
		return nil
	}

	start, end := offer.EnrolmentWindow(biztime.NowUTC())
	if err := uc.enroller.Enrol(ctx, directory.EnrolCommand{
		UserID:    token.UserID,
		CourseID:  token.CourseID,
		OfferID:   token.OfferID,
		RoleID:    offer.RoleID,
		TimeStart: start,
		TimeEnd:   end,
	}); err != nil {
		return fmt.Errorf("failed to enrol user: %w", err)
	}
	return nil
}

// rejectUnsuccessful handles a verify response whose status is anything but
// success. If the user somehow holds an active enrolment for this offer the
// grant is revoked, compensating for an earlier optimistic grant.
func (uc *CompleteEnrollmentUseCase) rejectUnsuccessful(
	ctx context.Context,
	reference string,
	attempt *enrollment.PaymentAttempt,
	token enrollment.AccessToken,
	verification *paymentgateway.Verification,
) (*EnrollmentOutcome, error) {
	enrolled, err := uc.enroller.IsEnrolled(ctx, token.UserID, token.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrolment: %w", err)
	}
	if enrolled {
		if err := uc.enroller.Unenrol(ctx, token.UserID, token.CourseID); err != nil {
			return nil, fmt.Errorf("failed to revoke enrolment for unsuccessful payment: %w", err)
		}
		uc.logger.Warnw("revoked enrolment for unsuccessful payment",
			"reference", reference, "user_id", token.UserID, "course_id", token.CourseID)
	}

	reason := fmt.Sprintf("payment not successful: %s", verification.GatewayStatus)
	return uc.reject(ctx, reference, attempt, token, verification, reason)
}

func (uc *CompleteEnrollmentUseCase) reject(
	ctx context.Context,
	reference string,
	attempt *enrollment.PaymentAttempt,
	token enrollment.AccessToken,
	verification *paymentgateway.Verification,
	reason string,
) (*EnrollmentOutcome, error) {
	if attempt != nil && !attempt.Status().IsFinal() {
		if err := attempt.MarkFailed(reason); err == nil {
			if err := uc.attemptRepo.Update(ctx, attempt); err != nil {
				uc.logger.Warnw("failed to update attempt after rejection", "reference", reference, "error", err)
			}
		}
	}

	uc.logger.Warnw("payment rejected",
		"reference", reference,
		"user_id", token.UserID,
		"course_id", token.CourseID,
		"reason", reason,
		"gateway_status", verification.GatewayStatus,
		"gateway_response", verification.GatewayResponse)

	uc.notifyAdminsError(reference, token, reason, map[string]interface{}{
		"gateway_status":   verification.GatewayStatus,
		"gateway_response": verification.GatewayResponse,
		"amount_minor":     verification.AmountMinor,
		"currency":         verification.Currency,
	})

	return &EnrollmentOutcome{Status: OutcomeRejected, Reason: reason}, nil
}

// flagPermanent reports a notification that is permanently unusable before
// any gateway call: a malformed token, records that do not exist, a disabled
// or mismatched offer. The caller acknowledges the delivery and the gateway
// stops retrying, so the admin mail is the only trace an operator gets.
// Transient errors pass through untouched.
func (uc *CompleteEnrollmentUseCase) flagPermanent(cmd CompleteEnrollmentCommand, err error) error {
	if !apperrors.IsValidationError(err) && !apperrors.IsNotFoundError(err) {
		return err
	}

	uc.logger.Warnw("notification rejected before verification",
		"reference", cmd.Reference,
		"token", cmd.Token,
		"error", err)

	uc.sendAdminAlert(err.Error(), map[string]interface{}{
		"reference": cmd.Reference,
		"token":     cmd.Token,
	})
	return err
}

func (uc *CompleteEnrollmentUseCase) notifyAdminsError(reference string, token enrollment.AccessToken, subject string, details map[string]interface{}) {
	payload := map[string]interface{}{
		"reference": reference,
		"user_id":   token.UserID,
		"course_id": token.CourseID,
		"offer_id":  token.OfferID,
	}
	for k, v := range details {
		payload[k] = v
	}
	uc.sendAdminAlert(subject, payload)
}

func (uc *CompleteEnrollmentUseCase) sendAdminAlert(subject string, payload map[string]interface{}) {
	if uc.notifier == nil || !uc.cfg.MailAdmins {
		return
	}

	goroutine.SafeGo(uc.logger, "enrolment-notify-admins-error", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.notifier.NotifyAdminsPaymentError(notifyCtx, subject, payload); err != nil {
			uc.logger.Warnw("failed to notify admins about payment error", "subject", subject, "error", err)
		}
	})
}

// fanOutSuccess logs the charge to the tracker and sends the enrolment
// mails. Each send runs independently; any of them failing is logged and
// never unwinds the grant.
func (uc *CompleteEnrollmentUseCase) fanOutSuccess(reference string, user directory.User, course directory.Course, amount vo.Money) {
	if uc.tracker != nil {
		goroutine.SafeGo(uc.logger, "enrolment-track-charge", func() {
			trackCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			uc.tracker.LogChargeSuccess(trackCtx, reference)
		})
	}

	if uc.notifier == nil {
		return
	}
	if !uc.cfg.MailStudents && !uc.cfg.MailTeachers && !uc.cfg.MailAdmins {
		return
	}

	goroutine.SafeGo(uc.logger, "enrolment-notify", func() {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		n := EnrolmentNotification{
			Reference:  reference,
			User:       user,
			Course:     course,
			Amount:     amount,
			EnrolledAt: biztime.NowUTC(),
		}

		if uc.cfg.MailTeachers {
			if teacher, err := uc.courseRepo.GetTeacher(notifyCtx, course.ID); err != nil {
				uc.logger.Warnw("failed to look up course teacher", "course_id", course.ID, "error", err)
			} else {
				n.Teacher = teacher
			}
		}

		if uc.cfg.MailStudents {
			if err := uc.notifier.NotifyStudentEnrolled(notifyCtx, n); err != nil {
				uc.logger.Warnw("failed to mail student", "reference", reference, "error", err)
			}
		}
		if uc.cfg.MailTeachers && n.Teacher != nil {
			if err := uc.notifier.NotifyTeacherEnrolled(notifyCtx, n); err != nil {
				uc.logger.Warnw("failed to mail teacher", "reference", reference, "error", err)
			}
		}
		if uc.cfg.MailAdmins {
			if err := uc.notifier.NotifyAdminsEnrolled(notifyCtx, n); err != nil {
				uc.logger.Warnw("failed to mail admins", "reference", reference, "error", err)
			}
		}
	})
}

func (uc *CompleteEnrollmentUseCase) completeAttempt(ctx context.Context, attempt *enrollment.PaymentAttempt) {
	if attempt == nil {
		return
	}
	if err := attempt.MarkCompleted(); err != nil {
		uc.logger.Warnw("failed to mark attempt completed", "reference", attempt.Reference(), "error", err)
		return
	}
	if err := uc.attemptRepo.Update(ctx, attempt); err != nil {
		uc.logger.Warnw("failed to update completed attempt", "reference", attempt.Reference(), "error", err)
	}
}
