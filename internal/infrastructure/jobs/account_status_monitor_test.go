package jobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fixer.backend/internal/domain/entities"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/infrastructure/repositories"
	"fixer.backend/internal/usecases"
	"fixer.backend/pkg/redis"
)

// fakeProcessor serves GetAccount from a canned map; other calls are
// not used by the monitor.
type fakeProcessor struct {
	processor.Client
	accounts map[string]*processor.Account
	links    int
}

func (f *fakeProcessor) GetAccount(_ context.Context, accountID string) (*processor.Account, error) {
	return f.accounts[accountID], nil
}

func (f *fakeProcessor) CreateAccountLink(_ context.Context, accountID string) (*processor.AccountLink, error) {
	f.links++
	return &processor.AccountLink{
		URL:       "https://onboard.example/" + accountID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type silentNotifier struct{}

func (silentNotifier) NotifyUser(context.Context, uuid.UUID, string) {}

type monitorFixture struct {
	db          *gorm.DB
	accountRepo *repositories.PayoutAccountRepository
	sessionRepo *repositories.RecoverySessionRepository
	proc        *fakeProcessor
	monitor     *AccountStatusMonitor
}

func newMonitorFixture(t *testing.T, staleness time.Duration) *monitorFixture {
	t.Helper()

	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(cli)
	t.Cleanup(func() { cli.Close() })

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE payout_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		external_account_id TEXT UNIQUE,
		status TEXT NOT NULL,
		requirements TEXT,
		link_issued_at DATETIME,
		last_checked_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE recovery_sessions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		state TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		max_attempts INTEGER NOT NULL,
		last_link_issued_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE manual_interventions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payment_id TEXT,
		account_id TEXT,
		external_ref TEXT,
		detail TEXT,
		resolved BOOLEAN NOT NULL,
		created_at DATETIME,
		resolved_at DATETIME
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		customer_ref TEXT UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	);`).Error)

	accountRepo := repositories.NewPayoutAccountRepository(db)
	sessionRepo := repositories.NewRecoverySessionRepository(db)
	interventionRepo := repositories.NewManualInterventionRepository(db)
	userRepo := repositories.NewUserRepository(db)

	proc := &fakeProcessor{accounts: map[string]*processor.Account{}}
	accounts := usecases.NewPayoutAccountUsecase(accountRepo, userRepo, proc, staleness)
	recovery := usecases.NewRecoveryCoordinator(
		accountRepo, sessionRepo, interventionRepo, proc, silentNotifier{}, 3)

	return &monitorFixture{
		db:          db,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		proc:        proc,
		monitor:     NewAccountStatusMonitor(accountRepo, accounts, recovery, time.Minute),
	}
}

func (f *monitorFixture) seedAccount(t *testing.T, externalID string, status entities.PayoutAccountStatus, linkIssuedAt time.Time) *entities.PayoutAccount {
	t.Helper()
	account := &entities.PayoutAccount{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		ExternalAccountID: null.StringFrom(externalID),
		Status:            status,
		LinkIssuedAt:      &linkIssuedAt,
		CreatedAt:         time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, f.accountRepo.Create(context.Background(), account))
	return account
}

func TestMonitor_StalledAccountGetsRecoveryLink(t *testing.T) {
	f := newMonitorFixture(t, time.Hour)
	account := f.seedAccount(t, "acct_1", entities.PayoutAccountStatusPending, time.Now().Add(-2*time.Hour))
	f.proc.accounts["acct_1"] = &processor.Account{ID: "acct_1"} // still nothing enabled

	f.monitor.runOnce(context.Background())

	require.Equal(t, 1, f.proc.links, "stalled onboarding gets a fresh link")
	session, err := f.sessionRepo.GetByAccountID(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, entities.RecoveryStateRetrying, session.State)
	require.Equal(t, 1, session.Attempts)
}

func TestMonitor_ActivatedAccountClosesSession(t *testing.T) {
	f := newMonitorFixture(t, time.Hour)
	account := f.seedAccount(t, "acct_1", entities.PayoutAccountStatusPending, time.Now().Add(-2*time.Hour))
	require.NoError(t, f.sessionRepo.Save(context.Background(), &entities.RecoverySession{
		AccountID:   account.ID,
		State:       entities.RecoveryStateRetrying,
		Attempts:    1,
		MaxAttempts: 3,
	}))
	f.proc.accounts["acct_1"] = &processor.Account{
		ID: "acct_1", ChargesEnabled: true, PayoutsEnabled: true,
	}

	f.monitor.runOnce(context.Background())

	got, err := f.accountRepo.GetByUserID(context.Background(), account.UserID)
	require.NoError(t, err)
	require.Equal(t, entities.PayoutAccountStatusActive, got.Status)

	_, err = f.sessionRepo.GetByAccountID(context.Background(), account.ID)
	require.Error(t, err, "recovery session is discarded once active")
	require.Equal(t, 0, f.proc.links)
}

func TestMonitor_FreshPendingAccountIsLeftAlone(t *testing.T) {
	f := newMonitorFixture(t, time.Hour)
	f.seedAccount(t, "acct_1", entities.PayoutAccountStatusPending, time.Now().Add(-5*time.Minute))
	f.proc.accounts["acct_1"] = &processor.Account{ID: "acct_1"}

	f.monitor.runOnce(context.Background())

	require.Equal(t, 0, f.proc.links, "onboarding still within the staleness window")
}

func TestMonitor_LockedAccountIsSkipped(t *testing.T) {
	f := newMonitorFixture(t, time.Hour)
	account := f.seedAccount(t, "acct_1", entities.PayoutAccountStatusPending, time.Now().Add(-2*time.Hour))
	f.proc.accounts["acct_1"] = &processor.Account{ID: "acct_1"}

	// Another instance holds the per-account lock.
	locked, err := redis.AcquireLock(context.Background(), fmt.Sprintf("payout:lock:%s", account.ID), time.Minute)
	require.NoError(t, err)
	require.True(t, locked)

	f.monitor.runOnce(context.Background())
	require.Equal(t, 0, f.proc.links)
}

func TestMonitor_StartStop(t *testing.T) {
	f := newMonitorFixture(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.monitor.Start(ctx)
	f.monitor.Stop() // must not hang
}
