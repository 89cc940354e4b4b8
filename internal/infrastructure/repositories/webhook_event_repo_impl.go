package repositories

import (
	"context"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/models"
	"gorm.io/gorm"
)

// WebhookEventRepository implements the processed-event ledger
type WebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

// Create records a processed event. The unique event_id index makes a
// concurrent duplicate fail, which the caller treats as already-processed.
func (r *WebhookEventRepository) Create(ctx context.Context, event *entities.WebhookEvent) error {
	m := &models.WebhookEvent{
		ID:          event.ID,
		EventID:     event.EventID,
		EventType:   string(event.EventType),
		ExternalRef: event.ExternalRef,
		EventTime:   event.EventTime,
		ProcessedAt: event.ProcessedAt,
	}
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Exists reports whether an event identifier was already processed
func (r *WebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
