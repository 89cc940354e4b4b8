package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PayoutAccountStatus represents onboarding/verification status of a
// worker's external payout account. Values are persisted verbatim.
type PayoutAccountStatus string

const (
	PayoutAccountStatusNone       PayoutAccountStatus = "none"
	PayoutAccountStatusPending    PayoutAccountStatus = "pending"
	PayoutAccountStatusActive     PayoutAccountStatus = "active"
	PayoutAccountStatusRestricted PayoutAccountStatus = "restricted"
)

// PayoutAccount binds a worker one-to-one with an external payee account.
// Invariant: no payout may be issued while status != active.
type PayoutAccount struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"userId"`
	ExternalAccountID null.String         `json:"externalAccountId,omitempty"`
	Status            PayoutAccountStatus `json:"status"`
	Requirements      []string            `json:"requirements"`
	LinkIssuedAt      *time.Time          `json:"linkIssuedAt,omitempty"`
	LastCheckedAt     *time.Time          `json:"lastCheckedAt,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Payable reports whether the account may receive a payout.
func (a *PayoutAccount) Payable() bool {
	return a.Status == PayoutAccountStatusActive
}

// OnboardingLinkResponse is returned when a fresh onboarding link is issued.
type OnboardingLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
