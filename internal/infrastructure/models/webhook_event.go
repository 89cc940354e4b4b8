package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is the gorm model for the webhook_events table. The unique
// EventID index is what makes replayed deliveries collapse to a no-op.
type WebhookEvent struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	EventID     string    `gorm:"uniqueIndex;not null"`
	EventType   string    `gorm:"not null"`
	ExternalRef string    `gorm:"index"`
	EventTime   time.Time
	ProcessedAt time.Time
}

// TableName overrides the table name
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
