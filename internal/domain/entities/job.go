package entities

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents job lifecycle status. Values are persisted verbatim.
type JobStatus string

const (
	// JobStatusPendingPayment is the placeholder state while the posting
	// charge is authorized. Never visible to workers.
	JobStatusPendingPayment JobStatus = "pending_payment"
	JobStatusOpen           JobStatus = "open"
	JobStatusAssigned       JobStatus = "assigned"
	JobStatusCompleted      JobStatus = "completed"
	JobStatusPaymentFailed  JobStatus = "payment_failed"
	// JobStatusRefundedClosed marks a job closed because its posting
	// payment was reversed after the job had opened.
	JobStatusRefundedClosed JobStatus = "refunded_closed"
	JobStatusCanceled       JobStatus = "canceled"
)

// PaymentType represents how the job is priced.
type PaymentType string

const (
	PaymentTypeFixed  PaymentType = "fixed"
	PaymentTypeHourly PaymentType = "hourly"
)

// Job represents a job posting. Invariant: a job is never visible in
// listings until its payment has completed.
type Job struct {
	ID            uuid.UUID   `json:"id"`
	PosterID      uuid.UUID   `json:"posterId"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Skills        []string    `json:"skills"`
	PaymentType   PaymentType `json:"paymentType"`
	PaymentAmount float64     `json:"paymentAmount"`
	ServiceFee    float64     `json:"serviceFee"`
	TotalAmount   float64     `json:"totalAmount"`
	Status        JobStatus   `json:"status"`
	PaymentID     *uuid.UUID  `json:"paymentId,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	DeletedAt     *time.Time  `json:"-"`
}

// IsVisible reports whether the job may appear in worker-facing listings.
func (j *Job) IsVisible() bool {
	switch j.Status {
	case JobStatusOpen, JobStatusAssigned:
		return true
	}
	return false
}

// PostJobInput is the payment-first job posting request.
type PostJobInput struct {
	Title           string      `json:"title" binding:"required"`
	Description     string      `json:"description" binding:"required"`
	Skills          []string    `json:"skills"`
	PaymentType     PaymentType `json:"paymentType" binding:"required"`
	PaymentAmount   float64     `json:"paymentAmount" binding:"required"`
	PaymentMethodID string      `json:"paymentMethodId" binding:"required"`

	// IdempotencyKey is taken from the Idempotency-Key header, never the
	// body, so clients cannot accidentally vary it across retries.
	IdempotencyKey string `json:"-"`
}

// PostJobResponse bundles the opened job with its payment record.
type PostJobResponse struct {
	Job     *Job     `json:"job"`
	Payment *Payment `json:"payment"`
}
