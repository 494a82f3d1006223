package usecases

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursepay/internal/application/enrollment/paymentgateway"
	"coursepay/internal/domain/directory"
	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/shared/config"
	apperrors "coursepay/internal/shared/errors"
	"coursepay/internal/shared/logger"
)

type fakeGateway struct {
	verification *paymentgateway.Verification
	err          error
	verifyCalls  int
}

func (g *fakeGateway) InitializeTransaction(_ context.Context, _ paymentgateway.InitializeRequest) (*paymentgateway.InitializeResponse, error) {
	return &paymentgateway.InitializeResponse{AuthorizationURL: "https://checkout.example/xyz"}, nil
}

func (g *fakeGateway) VerifyTransaction(_ context.Context, _ string) (*paymentgateway.Verification, error) {
	g.verifyCalls++
	if g.err != nil {
		return nil, g.err
	}
	return g.verification, nil
}

type fakeAttemptRepo struct {
	attempts map[string]*enrollment.PaymentAttempt
	updates  int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{attempts: make(map[string]*enrollment.PaymentAttempt)}
}

func (r *fakeAttemptRepo) Create(_ context.Context, a *enrollment.PaymentAttempt) error {
	r.attempts[a.Reference()] = a
	return nil
}

func (r *fakeAttemptRepo) Update(_ context.Context, a *enrollment.PaymentAttempt) error {
	r.updates++
	r.attempts[a.Reference()] = a
	return nil
}

func (r *fakeAttemptRepo) GetByReference(_ context.Context, reference string) (*enrollment.PaymentAttempt, error) {
	a, ok := r.attempts[reference]
	if !ok {
		return nil, apperrors.NewNotFoundError("payment attempt not found")
	}
	return a, nil
}

type fakeLedgerRepo struct {
	entries   map[string]*enrollment.LedgerEntry
	recordErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entries: make(map[string]*enrollment.LedgerEntry)}
}

func (r *fakeLedgerRepo) HasProcessed(_ context.Context, reference string) (bool, error) {
	_, ok := r.entries[reference]
	return ok, nil
}

func (r *fakeLedgerRepo) Record(_ context.Context, entry *enrollment.LedgerEntry) error {
	if r.recordErr != nil {
		return r.recordErr
	}
	if _, ok := r.entries[entry.Reference]; ok {
		return apperrors.NewConflictError("Duplicate entry for reference")
	}
	r.entries[entry.Reference] = entry
	return nil
}

type fakeOfferRepo struct {
	offers map[uint]*enrollment.Offer
}

func (r *fakeOfferRepo) GetByID(_ context.Context, id uint) (*enrollment.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("offer not found")
	}
	return o, nil
}

type fakeUserRepo struct {
	users map[uint]*directory.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*directory.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return u, nil
}

type fakeCourseRepo struct {
	courses map[uint]*directory.Course
	teacher *directory.User
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id uint) (*directory.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("course not found")
	}
	return c, nil
}

func (r *fakeCourseRepo) GetTeacher(_ context.Context, _ uint) (*directory.User, error) {
	return r.teacher, nil
}

type enrolKey struct{ userID, courseID uint }

type fakeEnroller struct {
	enrolled     map[enrolKey]bool
	enrolCalls   int
	unenrolCalls int
}

func newFakeEnroller() *fakeEnroller {
	return &fakeEnroller{enrolled: make(map[enrolKey]bool)}
}

func (e *fakeEnroller) Enrol(_ context.Context, cmd directory.EnrolCommand) error {
	e.enrolCalls++
	e.enrolled[enrolKey{cmd.UserID, cmd.CourseID}] = true
	return nil
}

func (e *fakeEnroller) Unenrol(_ context.Context, userID, courseID uint) error {
	e.unenrolCalls++
	delete(e.enrolled, enrolKey{userID, courseID})
	return nil
}

func (e *fakeEnroller) IsEnrolled(_ context.Context, userID, courseID uint) (bool, error) {
	return e.enrolled[enrolKey{userID, courseID}], nil
}

type fakeNotifier struct {
	mu          sync.Mutex
	adminErrors int
	lastSubject string
	lastPayload map[string]interface{}
}

func (n *fakeNotifier) NotifyStudentEnrolled(_ context.Context, _ EnrolmentNotification) error {
	return nil
}

func (n *fakeNotifier) NotifyTeacherEnrolled(_ context.Context, _ EnrolmentNotification) error {
	return nil
}

func (n *fakeNotifier) NotifyAdminsEnrolled(_ context.Context, _ EnrolmentNotification) error {
	return nil
}

func (n *fakeNotifier) NotifyAdminsPaymentError(_ context.Context, subject string, details map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminErrors++
	n.lastSubject = subject
	n.lastPayload = details
	return nil
}

func (n *fakeNotifier) adminErrorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.adminErrors
}

func (n *fakeNotifier) lastAdminPayload() map[string]interface{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastPayload
}

type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	uc       *CompleteEnrollmentUseCase
	gateway  *fakeGateway
	attempts *fakeAttemptRepo
	ledger   *fakeLedgerRepo
	enroller *fakeEnroller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gateway := &fakeGateway{
		verification: &paymentgateway.Verification{
			GatewayStatus:   paymentgateway.StatusSuccess,
			AmountMinor:     500000,
			Currency:        "NGN",
			GatewayResponse: "Successful",
			Raw:             []byte(`{"status":true}`),
		},
	}
	attempts := newFakeAttemptRepo()
	ledger := newFakeLedgerRepo()
	enroller := newFakeEnroller()

	offers := &fakeOfferRepo{offers: map[uint]*enrollment.Offer{
		3: {ID: 3, CourseID: 42, Status: enrollment.OfferStatusEnabled, Cost: vo.NewMoney(500000, "NGN"), RoleID: 5},
	}}
	users := &fakeUserRepo{users: map[uint]*directory.User{
		7: {ID: 7, Email: "student@example.com", FullName: "Ada Student"},
	}}
	courses := &fakeCourseRepo{courses: map[uint]*directory.Course{
		42: {ID: 42, FullName: "Intro to Signals", ShortName: "SIG101"},
	}}

	uc := NewCompleteEnrollmentUseCase(
		attempts, ledger, offers, users, courses, enroller, gateway,
		fakeTxRunner{},
		config.EnrolmentConfig{},
		logger.NewLogger(),
	)

	return &fixture{uc: uc, gateway: gateway, attempts: attempts, ledger: ledger, enroller: enroller}
}

func TestCompleteEnrollment_Granted(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{
		Reference: "abc123",
		Token:     "7-42-3",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome.Status)
	assert.True(t, f.enroller.enrolled[enrolKey{7, 42}])
	assert.Equal(t, 1, f.enroller.enrolCalls)
	assert.Contains(t, f.ledger.entries, "abc123")
	assert.Equal(t, int64(500000), f.ledger.entries["abc123"].Amount.AmountMinor())
}

func TestCompleteEnrollment_DuplicateDeliveryIsIdempotent(t *testing.T) {
	f := newFixture(t)

	first, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})
	require.NoError(t, err)
	require.Equal(t, OutcomeGranted, first.Status)

	second, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, second.Status)
	assert.Equal(t, 1, f.enroller.enrolCalls, "grant must be released exactly once")
	assert.Len(t, f.ledger.entries, 1)
}

func TestCompleteEnrollment_LostLedgerRaceAcknowledges(t *testing.T) {
	f := newFixture(t)
	f.ledger.recordErr = apperrors.NewConflictError("Duplicate entry 'abc123' for key 'uk_reference'")

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome.Status)
	assert.Equal(t, 0, f.enroller.enrolCalls)
}

func TestCompleteEnrollment_AlreadyEnrolled(t *testing.T) {
	f := newFixture(t)
	f.enroller.enrolled[enrolKey{7, 42}] = true

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, outcome.Status)
	assert.Equal(t, 0, f.enroller.enrolCalls)
	assert.Empty(t, f.ledger.entries)
}

func TestCompleteEnrollment_CurrencyMismatchRejected(t *testing.T) {
	f := newFixture(t)
	f.gateway.verification.Currency = "USD"

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome.Status)
	assert.Contains(t, outcome.Reason, "currency mismatch")
	assert.Equal(t, 0, f.enroller.enrolCalls)
	assert.Empty(t, f.ledger.entries)
}

func TestCompleteEnrollment_UnderpaymentRejected(t *testing.T) {
	f := newFixture(t)
	f.gateway.verification.AmountMinor = 400000

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome.Status)
	assert.Contains(t, outcome.Reason, "amount below cost")
	assert.Equal(t, 0, f.enroller.enrolCalls)
	assert.Empty(t, f.ledger.entries)
}

func TestCompleteEnrollment_OverpaymentIsAccepted(t *testing.T) {
	f := newFixture(t)
	f.gateway.verification.AmountMinor = 600000

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome.Status)
}

func TestCompleteEnrollment_UnsuccessfulStatusRevokesGrant(t *testing.T) {
	f := newFixture(t)
	f.gateway.verification.GatewayStatus = "failed"
	f.enroller.enrolled[enrolKey{7, 42}] = true

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome.Status)
	assert.Equal(t, 1, f.enroller.unenrolCalls)
	assert.False(t, f.enroller.enrolled[enrolKey{7, 42}])
	assert.Empty(t, f.ledger.entries)
}

func TestCompleteEnrollment_MalformedTokenSkipsGateway(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		token string
	}{
		{name: "two segments", token: "7-42"},
		{name: "four segments", token: "7-42-3-1"},
		{name: "non numeric", token: "7-abc-3"},
		{name: "zero segment", token: "0-42-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{
				Reference: "abc123",
				Token:     tt.token,
			})

			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err))
		})
	}

	assert.Equal(t, 0, f.gateway.verifyCalls, "malformed tokens must be rejected before any gateway call")
}

func TestCompleteEnrollment_GatewayFailureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = apperrors.NewGatewayConnectError("failed to reach payment gateway", "dial tcp: timeout")

	_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailable(err))
	assert.Empty(t, f.ledger.entries, "no grant state may change on a transient failure")
	assert.Equal(t, 0, f.enroller.enrolCalls)
}

func TestCompleteEnrollment_RedirectChannelRecoversTokenFromAttempt(t *testing.T) {
	f := newFixture(t)

	token := enrollment.AccessToken{UserID: 7, CourseID: 42, OfferID: 3}
	attempt, err := enrollment.NewPaymentAttempt("abc123", token, vo.NewMoney(500000, "NGN"))
	require.NoError(t, err)
	require.NoError(t, f.attempts.Create(context.Background(), attempt))

	outcome, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome.Status)
	assert.Equal(t, vo.AttemptStatusCompleted, attempt.Status())
}

func TestCompleteEnrollment_RedirectChannelUnknownReference(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "never-seen"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, 0, f.gateway.verifyCalls)
}

func TestCompleteEnrollment_DisabledOfferRejected(t *testing.T) {
	f := newFixture(t)
	f.ucOffers(t).offers[3].Status = enrollment.OfferStatusDisabled
	notifier := &fakeNotifier{}
	f.uc.cfg.MailAdmins = true
	f.uc.SetNotifier(notifier)

	_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, 0, f.gateway.verifyCalls)
	require.Eventually(t, func() bool { return notifier.adminErrorCount() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestCompleteEnrollment_PreVerifyRejectionAlertsAdmins(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed token", token: "7-42"},
		{name: "unknown user", token: "999-42-3"},
		{name: "unknown course", token: "7-99-3"},
		{name: "unknown offer", token: "7-42-999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			notifier := &fakeNotifier{}
			f.uc.cfg.MailAdmins = true
			f.uc.SetNotifier(notifier)

			_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{
				Reference: "abc123",
				Token:     tt.token,
			})

			require.Error(t, err)
			assert.Equal(t, 0, f.gateway.verifyCalls)
			require.Eventually(t, func() bool { return notifier.adminErrorCount() == 1 },
				time.Second, 5*time.Millisecond,
				"admins must hear about a notification that was dropped for good")
			payload := notifier.lastAdminPayload()
			assert.Equal(t, "abc123", payload["reference"])
			assert.Equal(t, tt.token, payload["token"])
		})
	}
}

func TestCompleteEnrollment_TransientFailureDoesNotAlertAdmins(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = apperrors.NewGatewayConnectError("failed to reach payment gateway", "dial tcp: timeout")
	notifier := &fakeNotifier{}
	f.uc.cfg.MailAdmins = true
	f.uc.SetNotifier(notifier)

	_, err := f.uc.Execute(context.Background(), CompleteEnrollmentCommand{Reference: "abc123", Token: "7-42-3"})

	require.Error(t, err)
	assert.True(t, apperrors.IsGatewayUnavailable(err))
	assert.Equal(t, 0, notifier.adminErrorCount(), "retryable failures must stay quiet")
}

func (f *fixture) ucOffers(t *testing.T) *fakeOfferRepo {
	t.Helper()
	repo, ok := f.uc.offerRepo.(*fakeOfferRepo)
	require.True(t, ok)
	return repo
}
