package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents payment status. Values are persisted verbatim.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment represents a monetary transaction tied to at most one job.
// Invariant: a completed payment always carries the external processor
// reference.
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	PayerID        uuid.UUID     `json:"payerId"`
	JobID          *uuid.UUID    `json:"jobId,omitempty"`
	Amount         float64       `json:"amount"`
	ServiceFee     float64       `json:"serviceFee"`
	TotalAmount    float64       `json:"totalAmount"`
	Status         PaymentStatus `json:"status"`
	ExternalRef    null.String   `json:"externalRef,omitempty"`
	RefundRef      null.String   `json:"refundRef,omitempty"`
	IdempotencyKey string        `json:"-"`
	FailureReason  null.String   `json:"failureReason,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// InterventionKind classifies manual-intervention queue entries.
type InterventionKind string

const (
	// InterventionRefundFailed is raised when a compensating refund
	// exhausted its retry budget. Money is outstanding until resolved.
	InterventionRefundFailed InterventionKind = "refund_failed"
	// InterventionRecoveryExhausted is raised when payout onboarding
	// recovery gave up after the configured attempts.
	InterventionRecoveryExhausted InterventionKind = "recovery_exhausted"
)

// ManualIntervention is a human-visible escalation record. Automatic
// handling ends here; support resolves and clears these.
type ManualIntervention struct {
	ID          uuid.UUID        `json:"id"`
	Kind        InterventionKind `json:"kind"`
	PaymentID   *uuid.UUID       `json:"paymentId,omitempty"`
	AccountID   *uuid.UUID       `json:"accountId,omitempty"`
	ExternalRef null.String      `json:"externalRef,omitempty"`
	Detail      string           `json:"detail"`
	Resolved    bool             `json:"resolved"`
	CreatedAt   time.Time        `json:"createdAt"`
	ResolvedAt  *time.Time       `json:"resolvedAt,omitempty"`
}
