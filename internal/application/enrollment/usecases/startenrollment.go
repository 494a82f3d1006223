package usecases

import (
	"context"
	"fmt"

	"coursepay/internal/application/enrollment/paymentgateway"
	"coursepay/internal/domain/directory"
	"coursepay/internal/domain/enrollment"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/id"
	"coursepay/internal/shared/logger"
)

type StartEnrollmentCommand struct {
	UserID   uint
	CourseID uint
	OfferID  uint
}

type StartEnrollmentResult struct {
	AuthorizationURL string
	Reference        string
	AccessToken      string
}

// StartEnrollmentUseCase opens a payment session for an offer. It mints the
// transaction reference, records a pending attempt keyed by it, and hands
// the gateway's authorization URL back for the browser redirect.
type StartEnrollmentUseCase struct {
	attemptRepo     enrollment.AttemptRepository
	offerRepo       enrollment.OfferRepository
	userRepo        directory.UserRepository
	courseRepo      directory.CourseRepository
	enroller        directory.Enroller
	gateway         paymentgateway.PaymentGateway
	callbackURL     string
	referenceLength int
	logger          logger.Interface
}

func NewStartEnrollmentUseCase(
	attemptRepo enrollment.AttemptRepository,
	offerRepo enrollment.OfferRepository,
	userRepo directory.UserRepository,
	courseRepo directory.CourseRepository,
	enroller directory.Enroller,
	gateway paymentgateway.PaymentGateway,
	callbackURL string,
	referenceLength int,
	logger logger.Interface,
) *StartEnrollmentUseCase {
	if referenceLength <= 0 {
		referenceLength = id.DefaultReferenceLength
	}
	return &StartEnrollmentUseCase{
		attemptRepo:     attemptRepo,
		offerRepo:       offerRepo,
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		enroller:        enroller,
		gateway:         gateway,
		callbackURL:     callbackURL,
		referenceLength: referenceLength,
		logger:          logger,
	}
}

func (uc *StartEnrollmentUseCase) Execute(ctx context.Context, cmd StartEnrollmentCommand) (*StartEnrollmentResult, error) {
	user, err := uc.userRepo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := uc.courseRepo.GetByID(ctx, cmd.CourseID); err != nil {
		return nil, err
	}

	offer, err := uc.offerRepo.GetByID(ctx, cmd.OfferID)
	if err != nil {
		return nil, err
	}
	if !offer.IsEnabled() {
		return nil, apperrors.NewValidationError("offer is disabled")
	}
	if offer.CourseID != cmd.CourseID {
		return nil, apperrors.NewValidationError("offer does not belong to course")
	}
	if !offer.Cost.IsPositive() {
		return nil, apperrors.NewValidationError("offer has no cost; paid enrolment not applicable")
	}

	// An active enrolment means there is nothing left to buy; opening a
	// session anyway would take a payment whose completion short-circuits
	// without granting anything new.
	enrolled, err := uc.enroller.IsEnrolled(ctx, cmd.UserID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrolment: %w", err)
	}
	if enrolled {
		return nil, apperrors.NewValidationError("user is already enrolled in this course")
	}

	reference, err := id.NewReference(uc.referenceLength)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate reference", err.Error())
	}

	token := enrollment.AccessToken{
		UserID:   cmd.UserID,
		CourseID: cmd.CourseID,
		OfferID:  cmd.OfferID,
	}

	attempt, err := enrollment.NewPaymentAttempt(reference, token, offer.Cost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create payment attempt", err.Error())
	}

	if err := uc.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to persist payment attempt: %w", err)
	}

	session, err := uc.gateway.InitializeTransaction(ctx, paymentgateway.InitializeRequest{
		AmountMinor: offer.Cost.AmountMinor(),
		Email:       user.Email,
		Reference:   reference,
		CallbackURL: uc.callbackURL,
	})
	if err != nil {
		if markErr := attempt.MarkFailed("gateway initialize failed"); markErr == nil {
			if updateErr := uc.attemptRepo.Update(ctx, attempt); updateErr != nil {
				uc.logger.Warnw("failed to mark attempt failed after initialize error",
					"reference", reference, "error", updateErr)
			}
		}
		return nil, err
	}

	uc.logger.Infow("payment session opened",
		"reference", reference,
		"user_id", cmd.UserID,
		"course_id", cmd.CourseID,
		"offer_id", cmd.OfferID,
		"amount", offer.Cost.String())

	return &StartEnrollmentResult{
		AuthorizationURL: session.AuthorizationURL,
		Reference:        reference,
		AccessToken:      token.Encode(),
	}, nil
}
