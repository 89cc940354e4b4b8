package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createWebhookEventsTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	// commit path
	err := u.Do(context.Background(), func(ctx context.Context) error {
		return GetDB(ctx, db).Exec(
			`INSERT INTO webhook_events(id,event_id,event_type) VALUES (?,?,?)`,
			uuid.New().String(), "evt_1", "payment.succeeded").Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("webhook_events").Count(&count).Error)
	require.Equal(t, int64(1), count)

	// rollback path
	err = u.Do(context.Background(), func(ctx context.Context) error {
		if err := GetDB(ctx, db).Exec(
			`INSERT INTO webhook_events(id,event_id,event_type) VALUES (?,?,?)`,
			uuid.New().String(), "evt_2", "payment.failed").Error; err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)

	require.NoError(t, db.Table("webhook_events").Count(&count).Error)
	require.Equal(t, int64(1), count, "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoReusesTransaction(t *testing.T) {
	db := newTestDB(t)
	createWebhookEventsTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(outer context.Context) error {
		return u.Do(outer, func(inner context.Context) error {
			// Inner Do must join the outer transaction, not open a new one.
			require.Equal(t, GetDB(outer, db), GetDB(inner, db))
			return GetDB(inner, db).Exec(
				`INSERT INTO webhook_events(id,event_id,event_type) VALUES (?,?,?)`,
				uuid.New().String(), "evt_1", "payment.succeeded").Error
		})
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Table("webhook_events").Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestUnitOfWork_NestedDoFailureRollsBackOuter(t *testing.T) {
	db := newTestDB(t)
	createWebhookEventsTable(t, db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(outer context.Context) error {
		if err := GetDB(outer, db).Exec(
			`INSERT INTO webhook_events(id,event_id,event_type) VALUES (?,?,?)`,
			uuid.New().String(), "evt_1", "payment.succeeded").Error; err != nil {
			return err
		}
		return u.Do(outer, func(inner context.Context) error {
			return errors.New("inner failure")
		})
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Table("webhook_events").Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestUnitOfWork_WithLockAndGetDB(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	// Without a transaction the lock marker is inert and GetDB falls back.
	require.Equal(t, db, GetDB(u.WithLock(context.Background()), db))

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx, GetDB(txCtx, db))

	lockedDB := GetDB(u.WithLock(txCtx), db)
	require.NotNil(t, lockedDB)
	require.NotEqual(t, tx, lockedDB, "locked reads get a FOR UPDATE clause")
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}
