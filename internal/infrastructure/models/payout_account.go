package models

import (
	"time"

	"github.com/google/uuid"
)

// PayoutAccount is the gorm model for the payout_accounts table.
type PayoutAccount struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ExternalAccountID *string   `gorm:"uniqueIndex"`
	Status            string    `gorm:"not null;index"`
	Requirements      string    // comma-separated
	LinkIssuedAt      *time.Time
	LastCheckedAt     *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides the table name
func (PayoutAccount) TableName() string {
	return "payout_accounts"
}

// RecoverySession is the gorm model for the recovery_sessions table.
type RecoverySession struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	State            string    `gorm:"not null"`
	Attempts         int       `gorm:"not null"`
	MaxAttempts      int       `gorm:"not null"`
	LastLinkIssuedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the table name
func (RecoverySession) TableName() string {
	return "recovery_sessions"
}
