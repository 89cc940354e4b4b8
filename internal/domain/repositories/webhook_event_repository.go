package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
)

// WebhookEventRepository is the processed-event ledger. EventID carries a
// unique constraint so concurrent replays collapse onto one processing.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *entities.WebhookEvent) error
	Exists(ctx context.Context, eventID string) (bool, error)
}
