package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createJobsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE jobs (
		id TEXT PRIMARY KEY,
		poster_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		skills TEXT,
		payment_type TEXT NOT NULL,
		payment_amount REAL NOT NULL,
		service_fee REAL NOT NULL,
		total_amount REAL NOT NULL,
		status TEXT NOT NULL,
		payment_id TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createPaymentsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		payer_id TEXT NOT NULL,
		job_id TEXT,
		amount REAL NOT NULL,
		service_fee REAL NOT NULL,
		total_amount REAL NOT NULL,
		status TEXT NOT NULL,
		external_ref TEXT UNIQUE,
		refund_ref TEXT,
		idempotency_key TEXT NOT NULL UNIQUE,
		failure_reason TEXT,
		created_at DATETIME,
		completed_at DATETIME,
		updated_at DATETIME
	);`)
}

func createInterventionsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE manual_interventions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		payment_id TEXT,
		account_id TEXT,
		external_ref TEXT,
		detail TEXT,
		resolved BOOLEAN NOT NULL,
		created_at DATETIME,
		resolved_at DATETIME
	);`)
}

func createPayoutAccountsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payout_accounts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		external_account_id TEXT UNIQUE,
		status TEXT NOT NULL,
		requirements TEXT,
		link_issued_at DATETIME,
		last_checked_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createRecoverySessionsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE recovery_sessions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL UNIQUE,
		state TEXT NOT NULL,
		attempts INTEGER NOT NULL,
		max_attempts INTEGER NOT NULL,
		last_link_issued_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWebhookEventsTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE webhook_events (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		event_type TEXT NOT NULL,
		external_ref TEXT,
		event_time DATETIME,
		processed_at DATETIME
	);`)
}

func createUsersTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT,
		customer_ref TEXT UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}
