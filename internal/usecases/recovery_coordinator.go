package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/telemetry"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/utils"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// RecoveryCoordinator drives stalled payout onboarding back to active:
// a bounded cycle of fresh onboarding links per account, escalating to
// the manual intervention queue when the budget is spent. Sessions are
// persisted so the cycle survives restarts and never loops forever.
type RecoveryCoordinator struct {
	accountRepo      repositories.PayoutAccountRepository
	sessionRepo      repositories.RecoverySessionRepository
	interventionRepo repositories.ManualInterventionRepository
	client           processor.Client
	notifier         Notifier

	maxAttempts int
}

// NewRecoveryCoordinator creates a new recovery coordinator
func NewRecoveryCoordinator(
	accountRepo repositories.PayoutAccountRepository,
	sessionRepo repositories.RecoverySessionRepository,
	interventionRepo repositories.ManualInterventionRepository,
	client processor.Client,
	notifier Notifier,
	maxAttempts int,
) *RecoveryCoordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxRecoveryAttempts
	}
	return &RecoveryCoordinator{
		accountRepo:      accountRepo,
		sessionRepo:      sessionRepo,
		interventionRepo: interventionRepo,
		client:           client,
		notifier:         notifier,
		maxAttempts:      maxAttempts,
	}
}

// HandleStall advances the recovery cycle for an account the monitor
// flagged. Each call either issues one fresh link or, once the budget is
// spent, freezes the session and escalates exactly once.
func (c *RecoveryCoordinator) HandleStall(ctx context.Context, account *entities.PayoutAccount) error {
	session, err := c.sessionRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		now := time.Now()
		session = &entities.RecoverySession{
			ID:          utils.GenerateUUIDv7(),
			AccountID:   account.ID,
			State:       entities.RecoveryStateStalled,
			MaxAttempts: c.maxAttempts,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if session.Exhausted() {
		if session.State == entities.RecoveryStateExhausted {
			// Already frozen and escalated; nothing to do until support
			// resolves the intervention.
			return nil
		}
		return c.exhaust(ctx, account, session)
	}

	link, err := c.client.CreateAccountLink(ctx, account.ExternalAccountID.String)
	if err != nil {
		// Transient processor failure does not consume an attempt.
		return err
	}

	now := time.Now()
	session.State = entities.RecoveryStateRetrying
	session.Attempts++
	session.LastLinkIssuedAt = &now
	session.UpdatedAt = now
	if err := c.sessionRepo.Save(ctx, session); err != nil {
		return err
	}

	account.LinkIssuedAt = &now
	account.UpdatedAt = now
	if err := c.accountRepo.Update(ctx, account); err != nil {
		return err
	}

	telemetry.RecoveryAttempts.Inc()
	c.notifier.NotifyUser(ctx, account.UserID, fmt.Sprintf(
		"Your payout setup needs attention. Finish onboarding here: %s", link.URL))
	logger.Info(ctx, "recovery link issued",
		zap.String("account_id", account.ID.String()),
		zap.Int("attempt", session.Attempts),
		zap.Int("max_attempts", session.MaxAttempts))
	return nil
}

// HandleRecovered clears any recovery session once the account reaches
// active. Safe to call when no session exists.
func (c *RecoveryCoordinator) HandleRecovered(ctx context.Context, account *entities.PayoutAccount) error {
	session, err := c.sessionRepo.GetByAccountID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := c.sessionRepo.DeleteByAccountID(ctx, account.ID); err != nil {
		return err
	}
	if session.State == entities.RecoveryStateRetrying || session.State == entities.RecoveryStateExhausted {
		c.notifier.NotifyUser(ctx, account.UserID,
			"Your payout account is verified. You can now be paid for completed jobs.")
	}
	logger.Info(ctx, "payout account recovered",
		zap.String("account_id", account.ID.String()),
		zap.Int("attempts_used", session.Attempts))
	return nil
}

func (c *RecoveryCoordinator) exhaust(ctx context.Context, account *entities.PayoutAccount, session *entities.RecoverySession) error {
	now := time.Now()
	session.State = entities.RecoveryStateExhausted
	session.UpdatedAt = now
	if err := c.sessionRepo.Save(ctx, session); err != nil {
		return err
	}

	mi := &entities.ManualIntervention{
		ID:          utils.GenerateUUIDv7(),
		Kind:        entities.InterventionRecoveryExhausted,
		AccountID:   &account.ID,
		ExternalRef: null.String(account.ExternalAccountID),
		Detail: fmt.Sprintf("onboarding recovery exhausted after %d link attempts; account still %s",
			session.Attempts, account.Status),
		CreatedAt: now,
	}
	if err := c.interventionRepo.Create(ctx, mi); err != nil {
		return err
	}

	telemetry.RecoveryExhausted.Inc()
	c.notifier.NotifyUser(ctx, account.UserID,
		"We could not finish verifying your payout account automatically. Our support team will reach out.")
	logger.Warn(ctx, "recovery exhausted, escalated to manual intervention",
		zap.String("account_id", account.ID.String()),
		zap.Int("attempts", session.Attempts))
	return nil
}
