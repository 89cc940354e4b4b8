package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// JobRepository defines job data operations
type JobRepository interface {
	Create(ctx context.Context, job *entities.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	Update(ctx context.Context, job *entities.Job) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.JobStatus) error
	// MarkOpen links the completed payment and opens the job in one write.
	MarkOpen(ctx context.Context, id, paymentID uuid.UUID) error
	GetByPosterID(ctx context.Context, posterID uuid.UUID, limit, offset int) ([]*entities.Job, int, error)
}
