package models

import (
	"time"

	"github.com/google/uuid"
)

// Job is the gorm model for the jobs table.
type Job struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	PosterID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title         string     `gorm:"not null"`
	Description   string     `gorm:"not null"`
	Skills        string     // comma-separated
	PaymentType   string     `gorm:"not null"`
	PaymentAmount float64    `gorm:"not null"`
	ServiceFee    float64    `gorm:"not null"`
	TotalAmount   float64    `gorm:"not null"`
	Status        string     `gorm:"not null;index"`
	PaymentID     *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time `gorm:"index"`
}

// TableName overrides the table name
func (Job) TableName() string {
	return "jobs"
}
