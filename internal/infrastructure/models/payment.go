package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the gorm model for the payments table.
type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	PayerID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	JobID          *uuid.UUID `gorm:"type:uuid;index"`
	Amount         float64    `gorm:"not null"`
	ServiceFee     float64    `gorm:"not null"`
	TotalAmount    float64    `gorm:"not null"`
	Status         string     `gorm:"not null;index"`
	ExternalRef    *string    `gorm:"uniqueIndex"`
	RefundRef      *string
	IdempotencyKey string     `gorm:"uniqueIndex;not null"`
	FailureReason  *string
	CreatedAt      time.Time
	CompletedAt    *time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name
func (Payment) TableName() string {
	return "payments"
}

// ManualIntervention is the gorm model for the manual_interventions table.
type ManualIntervention struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	Kind        string     `gorm:"not null;index"`
	PaymentID   *uuid.UUID `gorm:"type:uuid"`
	AccountID   *uuid.UUID `gorm:"type:uuid"`
	ExternalRef *string
	Detail      string
	Resolved    bool `gorm:"not null;index"`
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// TableName overrides the table name
func (ManualIntervention) TableName() string {
	return "manual_interventions"
}
