package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessorEventType enumerates the closed set of reconciliation events
// accepted from the payment processor. Unknown types are rejected rather
// than silently ignored.
type ProcessorEventType string

const (
	EventPaymentSucceeded ProcessorEventType = "payment.succeeded"
	EventPaymentFailed    ProcessorEventType = "payment.failed"
	EventPaymentRefunded  ProcessorEventType = "payment.refunded"
	EventAccountUpdated   ProcessorEventType = "account.updated"
)

// Known reports whether the event type belongs to the closed set.
func (t ProcessorEventType) Known() bool {
	switch t {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentRefunded, EventAccountUpdated:
		return true
	}
	return false
}

// ProcessorEvent is a verified webhook payload handed to reconciliation.
type ProcessorEvent struct {
	ID        string             `json:"id"`
	Type      ProcessorEventType `json:"type"`
	CreatedAt time.Time          `json:"createdAt"`
	Data      json.RawMessage    `json:"data"`
}

// PaymentEventData is the payload of payment.* events. The processor
// echoes the charge's idempotency key, which lets reconciliation find a
// payment even when the service crashed before storing the charge id.
type PaymentEventData struct {
	ChargeID       string `json:"chargeId"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	RefundID       string `json:"refundId,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
}

// AccountEventData is the payload of account.updated events.
type AccountEventData struct {
	AccountID      string   `json:"accountId"`
	ChargesEnabled bool     `json:"chargesEnabled"`
	PayoutsEnabled bool     `json:"payoutsEnabled"`
	Requirements   []string `json:"requirements"`
}

// WebhookEvent is the processed-event ledger row backing webhook
// idempotency: an event identifier is recorded in the same transaction
// as its state change, so a replay is a no-op.
type WebhookEvent struct {
	ID          uuid.UUID          `json:"id"`
	EventID     string             `json:"eventId"`
	EventType   ProcessorEventType `json:"eventType"`
	ExternalRef string             `json:"externalRef"`
	EventTime   time.Time          `json:"eventTime"`
	ProcessedAt time.Time          `json:"processedAt"`
}
