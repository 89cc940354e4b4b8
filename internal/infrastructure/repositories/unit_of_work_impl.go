package repositories

import (
	"context"
	"fmt"

	domainRepos "fixer.backend/internal/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contextKey string

const (
	txKey   contextKey = "tx_db"
	lockKey contextKey = "row_lock"
)

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db}
}

// Do executes the given function within a transaction scope
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// Reuse an outer transaction if one is already in the context.
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	txCtx := context.WithValue(ctx, txKey, tx)

	if err := fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithLock marks the context so repository reads inside the transaction
// take SELECT ... FOR UPDATE. Both the posting commit and the webhook
// correction go through this, so the two can never race into an
// inconsistent job/payment pair.
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// GetDB extracts the transaction DB from context if present, otherwise
// returns the fallback. Repositories in this package use it for every
// query so they transparently join an ambient transaction.
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	db := fallback
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		db = tx
		if locked, ok := ctx.Value(lockKey).(bool); ok && locked {
			db = db.Clauses(clause.Locking{Strength: "UPDATE"})
		}
	}
	return db
}
