package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/domain/directory"
	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
)

type startFixture struct {
	uc       *StartEnrollmentUseCase
	gateway  *fakeGateway
	attempts *fakeAttemptRepo
	enroller *fakeEnroller
}

func newStartFixture(t *testing.T) *startFixture {
	t.Helper()

	gateway := &fakeGateway{}
	attempts := newFakeAttemptRepo()
	enroller := newFakeEnroller()

	offers := &fakeOfferRepo{offers: map[uint]*enrollment.Offer{
		3: {ID: 3, CourseID: 42, Status: enrollment.OfferStatusEnabled, Cost: vo.NewMoney(500000, "NGN"), RoleID: 5},
		4: {ID: 4, CourseID: 42, Status: enrollment.OfferStatusEnabled, Cost: vo.NewMoney(0, "NGN"), RoleID: 5},
	}}
	users := &fakeUserRepo{users: map[uint]*directory.User{
		7: {ID: 7, Email: "student@example.com", FullName: "Ada Student"},
	}}
	courses := &fakeCourseRepo{courses: map[uint]*directory.Course{
		41: {ID: 41, FullName: "Linear Algebra", ShortName: "ALG201"},
		42: {ID: 42, FullName: "Intro to Signals", ShortName: "SIG101"},
	}}

	uc := NewStartEnrollmentUseCase(
		attempts, offers, users, courses, enroller, gateway,
		"https://bridge.example/enrol/return", 25, logger.NewLogger())

	return &startFixture{uc: uc, gateway: gateway, attempts: attempts, enroller: enroller}
}

func TestStartEnrollment_OpensPaymentSession(t *testing.T) {
	f := newStartFixture(t)

	result, err := f.uc.Execute(context.Background(), StartEnrollmentCommand{UserID: 7, CourseID: 42, OfferID: 3})

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/xyz", result.AuthorizationURL)
	assert.Len(t, result.Reference, 25)
	assert.Equal(t, "7-42-3", result.AccessToken)
	assert.Contains(t, f.attempts.attempts, result.Reference)
}

func TestStartEnrollment_AlreadyEnrolledRejected(t *testing.T) {
	f := newStartFixture(t)
	f.enroller.enrolled[enrolKey{7, 42}] = true

	_, err := f.uc.Execute(context.Background(), StartEnrollmentCommand{UserID: 7, CourseID: 42, OfferID: 3})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, f.attempts.attempts, "no attempt may be recorded for a user who already holds access")
}

func TestStartEnrollment_FreeOfferRejected(t *testing.T) {
	f := newStartFixture(t)

	_, err := f.uc.Execute(context.Background(), StartEnrollmentCommand{UserID: 7, CourseID: 42, OfferID: 4})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, f.attempts.attempts)
}

func TestStartEnrollment_OfferCourseMismatchRejected(t *testing.T) {
	f := newStartFixture(t)

	_, err := f.uc.Execute(context.Background(), StartEnrollmentCommand{UserID: 7, CourseID: 41, OfferID: 3})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Empty(t, f.attempts.attempts)
}
