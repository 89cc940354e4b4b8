package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// User is the slice of identity this subsystem needs: enough to bill a
// poster and onboard a worker. Account management itself lives in the
// auth service.
type User struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	CustomerRef null.String `json:"-"` // processor-side customer for stored payment methods
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
