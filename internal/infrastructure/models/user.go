package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the gorm model for the users table (identity slice only).
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	Email       string    `gorm:"uniqueIndex;not null"`
	Name        string
	CustomerRef *string `gorm:"uniqueIndex"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}
