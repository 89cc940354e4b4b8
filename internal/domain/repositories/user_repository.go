package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// UserRepository exposes the identity slice this subsystem reads.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	// SetCustomerRef stores the processor-side customer reference created
	// for a payer on first charge.
	SetCustomerRef(ctx context.Context, id uuid.UUID, customerRef string) error
}
