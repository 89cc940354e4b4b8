package repositories

import (
	"context"
	"errors"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/models"
	"fixer.backend/pkg/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecoverySessionRepository implements recovery session data operations
type RecoverySessionRepository struct {
	db *gorm.DB
}

// NewRecoverySessionRepository creates a new recovery session repository
func NewRecoverySessionRepository(db *gorm.DB) *RecoverySessionRepository {
	return &RecoverySessionRepository{db: db}
}

// GetByAccountID gets the session for a payout account
func (r *RecoverySessionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.RecoverySession, error) {
	var m models.RecoverySession
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.RecoverySession{
		ID:               m.ID,
		AccountID:        m.AccountID,
		State:            entities.RecoveryState(m.State),
		Attempts:         m.Attempts,
		MaxAttempts:      m.MaxAttempts,
		LastLinkIssuedAt: m.LastLinkIssuedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

// Save upserts the session keyed by account id
func (r *RecoverySessionRepository) Save(ctx context.Context, session *entities.RecoverySession) error {
	db := GetDB(ctx, r.db)
	now := time.Now()

	if session.ID == uuid.Nil {
		session.ID = utils.GenerateUUIDv7()
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	m := &models.RecoverySession{
		ID:               session.ID,
		AccountID:        session.AccountID,
		State:            string(session.State),
		Attempts:         session.Attempts,
		MaxAttempts:      session.MaxAttempts,
		LastLinkIssuedAt: session.LastLinkIssuedAt,
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}

	result := db.WithContext(ctx).Model(&models.RecoverySession{}).
		Where("account_id = ?", session.AccountID).
		Updates(map[string]interface{}{
			"state":               m.State,
			"attempts":            m.Attempts,
			"max_attempts":        m.MaxAttempts,
			"last_link_issued_at": m.LastLinkIssuedAt,
			"updated_at":          m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.WithContext(ctx).Create(m).Error
	}
	return nil
}

// DeleteByAccountID discards the session once the account reached active
func (r *RecoverySessionRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&models.RecoverySession{}).Error
}
