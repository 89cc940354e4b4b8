package entities

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryState represents the recovery state machine for a stalled
// payout account onboarding.
type RecoveryState string

const (
	RecoveryStateStable    RecoveryState = "stable"
	RecoveryStateStalled   RecoveryState = "stalled"
	RecoveryStateRetrying  RecoveryState = "retrying"
	RecoveryStateRecovered RecoveryState = "recovered"
	// RecoveryStateExhausted is terminal until a support action resets it.
	RecoveryStateExhausted RecoveryState = "exhausted"
)

// RecoverySession tracks one bounded attempt cycle to push a stalled
// payout account to active. One session per account, persisted alongside
// the account so recovery is restart-safe.
type RecoverySession struct {
	ID               uuid.UUID     `json:"id"`
	AccountID        uuid.UUID     `json:"accountId"`
	State            RecoveryState `json:"state"`
	Attempts         int           `json:"attempts"`
	MaxAttempts      int           `json:"maxAttempts"`
	LastLinkIssuedAt *time.Time    `json:"lastLinkIssuedAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Exhausted reports whether the attempt budget is spent.
func (s *RecoverySession) Exhausted() bool {
	return s.State == RecoveryStateExhausted || s.Attempts >= s.MaxAttempts
}
