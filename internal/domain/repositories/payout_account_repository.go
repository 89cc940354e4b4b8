package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// PayoutAccountRepository defines payout account data operations
type PayoutAccountRepository interface {
	Create(ctx context.Context, account *entities.PayoutAccount) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error)
	GetByExternalID(ctx context.Context, externalID string) (*entities.PayoutAccount, error)
	Update(ctx context.Context, account *entities.PayoutAccount) error
	// ListActionable returns accounts the status monitor should poll:
	// pending or restricted, oldest check first.
	ListActionable(ctx context.Context, limit int) ([]*entities.PayoutAccount, error)
}

// RecoverySessionRepository defines recovery session data operations.
// Sessions are keyed one-to-one by payout account.
type RecoverySessionRepository interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*entities.RecoverySession, error)
	Save(ctx context.Context, session *entities.RecoverySession) error
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
}
