package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// PaymentRepository defines payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entities.Payment, error)
	GetByExternalRef(ctx context.Context, ref string) (*entities.Payment, error)
	Update(ctx context.Context, payment *entities.Payment) error
	// MarkCompleted records the successful authorization: status, external
	// reference and completion timestamp in one write.
	MarkCompleted(ctx context.Context, id uuid.UUID, externalRef string) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) error
}

// ManualInterventionRepository defines the escalation queue operations
type ManualInterventionRepository interface {
	Create(ctx context.Context, mi *entities.ManualIntervention) error
	ListUnresolved(ctx context.Context, limit, offset int) ([]*entities.ManualIntervention, int, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}
