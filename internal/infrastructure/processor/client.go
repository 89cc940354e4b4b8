// Package processor wraps the external payment processor API: charges,
// refunds, payout accounts and onboarding links. The processor delivers
// webhook events at-least-once and possibly out of order; everything
// consuming this package must stay idempotent.
package processor

import (
	"context"
	"time"
)

// AuthorizeParams describes a single charge attempt. AmountCents is the
// total charged (job amount plus platform fee). IdempotencyKey is stable
// per logical posting attempt so a retry can never double-charge.
type AuthorizeParams struct {
	CustomerRef     string
	PaymentMethodID string
	AmountCents     int64
	Description     string
	IdempotencyKey  string
}

// Charge is the processor's record of an authorization.
type Charge struct {
	ID     string
	Status string
	Amount int64
}

// Refund is the processor's record of a charge reversal.
type Refund struct {
	ID       string
	ChargeID string
	Status   string
}

// Account mirrors the processor's payout account representation. Both
// capability flags must be enabled before the account can be paid out.
type Account struct {
	ID             string
	ChargesEnabled bool
	PayoutsEnabled bool
	Requirements   []string
	DisabledReason string
}

// AccountLink is a single-use onboarding URL with a short expiry.
type AccountLink struct {
	URL       string
	ExpiresAt time.Time
}

// PaymentMethod identifies a stored payment method and its owner.
type PaymentMethod struct {
	ID          string
	CustomerRef string
}

// Client is the boundary to the external payment processor. Each call
// maps to exactly one API request; retrying is the caller's decision.
type Client interface {
	Authorize(ctx context.Context, params AuthorizeParams) (*Charge, error)
	Refund(ctx context.Context, chargeID, idempotencyKey string) (*Refund, error)
	CreateCustomer(ctx context.Context, email string) (string, error)
	GetPaymentMethod(ctx context.Context, id string) (*PaymentMethod, error)
	CreateAccount(ctx context.Context, email string) (*Account, error)
	CreateAccountLink(ctx context.Context, accountID string) (*AccountLink, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
}
