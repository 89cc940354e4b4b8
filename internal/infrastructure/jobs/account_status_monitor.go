package jobs

import (
	"context"
	"fmt"
	"time"

	"fixer.backend/internal/domain/entities"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/telemetry"
	"fixer.backend/internal/usecases"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/redis"
	"go.uber.org/zap"
)

const (
	// accountLockTTL bounds how long a crashed instance can hold an
	// account; a healthy pass finishes far sooner.
	accountLockTTL = 2 * time.Minute
	batchSize      = 50
)

// AccountStatusMonitor periodically polls actionable payout accounts
// (pending or restricted) against the processor and drives recovery.
// It is the safety net for missed or delayed account.updated webhooks.
// Safe to run on every instance: a per-account redis lock keeps two
// instances from handling the same account in one interval.
type AccountStatusMonitor struct {
	accountRepo repositories.PayoutAccountRepository
	accounts    *usecases.PayoutAccountUsecase
	recovery    *usecases.RecoveryCoordinator

	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewAccountStatusMonitor creates a new account status monitor
func NewAccountStatusMonitor(
	accountRepo repositories.PayoutAccountRepository,
	accounts *usecases.PayoutAccountUsecase,
	recovery *usecases.RecoveryCoordinator,
	interval time.Duration,
) *AccountStatusMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &AccountStatusMonitor{
		accountRepo: accountRepo,
		accounts:    accounts,
		recovery:    recovery,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine.
func (m *AccountStatusMonitor) Start(ctx context.Context) {
	go func() {
		defer close(m.doneCh)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		logger.Info(ctx, "account status monitor started", zap.Duration("interval", m.interval))
		for {
			select {
			case <-ticker.C:
				m.runOnce(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the monitor and waits for the current pass to finish.
func (m *AccountStatusMonitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *AccountStatusMonitor) runOnce(ctx context.Context) {
	accounts, err := m.accountRepo.ListActionable(ctx, batchSize)
	if err != nil {
		logger.Error(ctx, "monitor failed to list accounts", zap.Error(err))
		return
	}
	telemetry.AccountsPolled.Set(float64(len(accounts)))

	now := time.Now()
	for _, account := range accounts {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
		m.checkAccount(ctx, account, now)
	}
}

func (m *AccountStatusMonitor) checkAccount(ctx context.Context, account *entities.PayoutAccount, now time.Time) {
	lockKey := fmt.Sprintf("payout:lock:%s", account.ID)
	locked, err := redis.AcquireLock(ctx, lockKey, accountLockTTL)
	if err != nil || !locked {
		return
	}
	defer func() { _ = redis.ReleaseLock(ctx, lockKey) }()

	refreshed, err := m.accounts.RefreshStatus(ctx, account)
	if err != nil {
		logger.Warn(ctx, "account status refresh failed",
			zap.String("account_id", account.ID.String()), zap.Error(err))
		return
	}

	switch {
	case refreshed.Status == entities.PayoutAccountStatusActive:
		if err := m.recovery.HandleRecovered(ctx, refreshed); err != nil {
			logger.Error(ctx, "failed to close recovery session",
				zap.String("account_id", refreshed.ID.String()), zap.Error(err))
		}
	case m.accounts.NeedsAttention(refreshed, now):
		if err := m.recovery.HandleStall(ctx, refreshed); err != nil {
			logger.Error(ctx, "recovery handling failed",
				zap.String("account_id", refreshed.ID.String()), zap.Error(err))
		}
	}
}
