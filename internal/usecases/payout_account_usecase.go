package usecases

import (
	"context"
	"errors"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// PayoutAccountUsecase manages worker payout onboarding: one external
// account per worker, created lazily, moved to active only when the
// processor confirms both capabilities.
type PayoutAccountUsecase struct {
	accountRepo repositories.PayoutAccountRepository
	userRepo    repositories.UserRepository
	client      processor.Client

	staleness time.Duration
}

// NewPayoutAccountUsecase creates a new payout account usecase
func NewPayoutAccountUsecase(
	accountRepo repositories.PayoutAccountRepository,
	userRepo repositories.UserRepository,
	client processor.Client,
	staleness time.Duration,
) *PayoutAccountUsecase {
	if staleness <= 0 {
		staleness = DefaultStalenessThreshold
	}
	return &PayoutAccountUsecase{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		client:      client,
		staleness:   staleness,
	}
}

// GetAccount returns the worker's payout account state. A worker who
// never started onboarding gets a synthetic record with status none
// rather than a 404, so clients render one consistent shape.
func (u *PayoutAccountUsecase) GetAccount(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error) {
	account, err := u.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return &entities.PayoutAccount{
				UserID: userID,
				Status: entities.PayoutAccountStatusNone,
			}, nil
		}
		return nil, err
	}
	return account, nil
}

// EnsureAccount returns the worker's payout account, creating the
// external account on first call. Creation is idempotent per worker:
// the user_id unique constraint guarantees at most one row.
func (u *PayoutAccountUsecase) EnsureAccount(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error) {
	account, err := u.accountRepo.GetByUserID(ctx, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	external, err := u.client.CreateAccount(ctx, user.Email)
	if err != nil {
		return nil, domainerrors.PaymentError(err)
	}

	now := time.Now()
	account = &entities.PayoutAccount{
		ID:                utils.GenerateUUIDv7(),
		UserID:            userID,
		ExternalAccountID: null.StringFrom(external.ID),
		Status:            entities.PayoutAccountStatusPending,
		Requirements:      external.Requirements,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// Lost a race with a concurrent first call; the winner's row
			// is the account. The extra external account stays unused.
			return u.accountRepo.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	logger.Info(ctx, "payout account created",
		zap.String("user_id", userID.String()),
		zap.String("external_account_id", external.ID))
	return account, nil
}

// IssueOnboardingLink creates a fresh single-use onboarding link for the
// worker, creating the account first if needed. Links expire quickly;
// reissuing is always safe.
func (u *PayoutAccountUsecase) IssueOnboardingLink(ctx context.Context, userID uuid.UUID) (*entities.OnboardingLinkResponse, error) {
	account, err := u.EnsureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account.Status == entities.PayoutAccountStatusActive {
		return nil, domainerrors.BadRequest("ERR_ALREADY_ONBOARDED", "payout account is already active")
	}

	link, err := u.client.CreateAccountLink(ctx, account.ExternalAccountID.String)
	if err != nil {
		return nil, domainerrors.PaymentError(err)
	}

	now := time.Now()
	account.LinkIssuedAt = &now
	account.UpdatedAt = now
	if err := u.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return &entities.OnboardingLinkResponse{URL: link.URL, ExpiresAt: link.ExpiresAt}, nil
}

// RefreshStatus pulls the account's current state from the processor and
// reclassifies it. Returns the refreshed account.
func (u *PayoutAccountUsecase) RefreshStatus(ctx context.Context, account *entities.PayoutAccount) (*entities.PayoutAccount, error) {
	if !account.ExternalAccountID.Valid {
		return account, nil
	}
	external, err := u.client.GetAccount(ctx, account.ExternalAccountID.String)
	if err != nil {
		return nil, err
	}
	return u.Apply(ctx, account, external.ChargesEnabled, external.PayoutsEnabled, external.Requirements)
}

// Apply reclassifies an account from processor-reported capabilities and
// persists the result. Shared by the poll path and webhook path so both
// produce identical state.
func (u *PayoutAccountUsecase) Apply(ctx context.Context, account *entities.PayoutAccount, chargesEnabled, payoutsEnabled bool, requirements []string) (*entities.PayoutAccount, error) {
	now := time.Now()
	previous := account.Status
	account.Status = classifyAccount(chargesEnabled, payoutsEnabled, requirements)
	account.Requirements = requirements
	account.LastCheckedAt = &now
	account.UpdatedAt = now
	if err := u.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	if account.Status != previous {
		logger.Info(ctx, "payout account status changed",
			zap.String("user_id", account.UserID.String()),
			zap.String("from", string(previous)),
			zap.String("to", string(account.Status)))
	}
	return account, nil
}

// NeedsAttention reports whether the monitor should trigger recovery:
// the account is restricted, or has been pending longer than the
// staleness threshold since its last onboarding link.
func (u *PayoutAccountUsecase) NeedsAttention(account *entities.PayoutAccount, now time.Time) bool {
	switch account.Status {
	case entities.PayoutAccountStatusRestricted:
		return true
	case entities.PayoutAccountStatusPending:
		since := account.CreatedAt
		if account.LinkIssuedAt != nil {
			since = *account.LinkIssuedAt
		}
		return now.Sub(since) > u.staleness
	}
	return false
}

// classifyAccount maps processor capability flags to a local status.
// Both capabilities enabled means active; outstanding requirements with
// capabilities lost means restricted; anything else is still pending.
func classifyAccount(chargesEnabled, payoutsEnabled bool, requirements []string) entities.PayoutAccountStatus {
	if chargesEnabled && payoutsEnabled {
		return entities.PayoutAccountStatusActive
	}
	if len(requirements) > 0 {
		return entities.PayoutAccountStatusRestricted
	}
	return entities.PayoutAccountStatusPending
}
