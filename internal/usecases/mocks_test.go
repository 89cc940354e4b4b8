package usecases_test

import (
	"context"

	"fixer.backend/internal/domain/entities"
	"fixer.backend/internal/infrastructure/processor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	m.Called(ctx)
	return ctx
}

// Mock JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Job), args.Error(1)
}

func (m *MockJobRepository) Update(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.JobStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockJobRepository) MarkOpen(ctx context.Context, id, paymentID uuid.UUID) error {
	args := m.Called(ctx, id, paymentID)
	return args.Error(0)
}

func (m *MockJobRepository) GetByPosterID(ctx context.Context, posterID uuid.UUID, limit, offset int) ([]*entities.Job, int, error) {
	args := m.Called(ctx, posterID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Job), args.Int(1), args.Error(2)
}

// Mock PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Payment, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByExternalRef(ctx context.Context, ref string) (*entities.Payment, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, externalRef string) error {
	args := m.Called(ctx, id, externalRef)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) error {
	args := m.Called(ctx, id, refundRef)
	return args.Error(0)
}

// Mock ManualInterventionRepository
type MockInterventionRepository struct {
	mock.Mock
}

func (m *MockInterventionRepository) Create(ctx context.Context, mi *entities.ManualIntervention) error {
	args := m.Called(ctx, mi)
	return args.Error(0)
}

func (m *MockInterventionRepository) ListUnresolved(ctx context.Context, limit, offset int) ([]*entities.ManualIntervention, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.ManualIntervention), args.Int(1), args.Error(2)
}

func (m *MockInterventionRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock PayoutAccountRepository
type MockPayoutAccountRepository struct {
	mock.Mock
}

func (m *MockPayoutAccountRepository) Create(ctx context.Context, account *entities.PayoutAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockPayoutAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayoutAccount), args.Error(1)
}

func (m *MockPayoutAccountRepository) GetByExternalID(ctx context.Context, externalID string) (*entities.PayoutAccount, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PayoutAccount), args.Error(1)
}

func (m *MockPayoutAccountRepository) Update(ctx context.Context, account *entities.PayoutAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockPayoutAccountRepository) ListActionable(ctx context.Context, limit int) ([]*entities.PayoutAccount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PayoutAccount), args.Error(1)
}

// Mock RecoverySessionRepository
type MockRecoverySessionRepository struct {
	mock.Mock
}

func (m *MockRecoverySessionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.RecoverySession, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RecoverySession), args.Error(1)
}

func (m *MockRecoverySessionRepository) Save(ctx context.Context, session *entities.RecoverySession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockRecoverySessionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// Mock WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Create(ctx context.Context, event *entities.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) SetCustomerRef(ctx context.Context, id uuid.UUID, customerRef string) error {
	args := m.Called(ctx, id, customerRef)
	return args.Error(0)
}

// Mock processor.Client
type MockProcessorClient struct {
	mock.Mock
}

func (m *MockProcessorClient) Authorize(ctx context.Context, params processor.AuthorizeParams) (*processor.Charge, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Charge), args.Error(1)
}

func (m *MockProcessorClient) Refund(ctx context.Context, chargeID, idempotencyKey string) (*processor.Refund, error) {
	args := m.Called(ctx, chargeID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Refund), args.Error(1)
}

func (m *MockProcessorClient) CreateCustomer(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockProcessorClient) GetPaymentMethod(ctx context.Context, id string) (*processor.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.PaymentMethod), args.Error(1)
}

func (m *MockProcessorClient) CreateAccount(ctx context.Context, email string) (*processor.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Account), args.Error(1)
}

func (m *MockProcessorClient) CreateAccountLink(ctx context.Context, accountID string) (*processor.AccountLink, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.AccountLink), args.Error(1)
}

func (m *MockProcessorClient) GetAccount(ctx context.Context, accountID string) (*processor.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Account), args.Error(1)
}

// recordingNotifier captures notifications without mock bookkeeping.
type recordingNotifier struct {
	messages []string
	users    []uuid.UUID
}

func (n *recordingNotifier) NotifyUser(_ context.Context, userID uuid.UUID, message string) {
	n.users = append(n.users, userID)
	n.messages = append(n.messages, message)
}

// recordingInvalidator captures listing invalidations.
type recordingInvalidator struct {
	jobIDs []uuid.UUID
}

func (i *recordingInvalidator) InvalidateJobListing(_ context.Context, jobID uuid.UUID) {
	i.jobIDs = append(i.jobIDs, jobID)
}
