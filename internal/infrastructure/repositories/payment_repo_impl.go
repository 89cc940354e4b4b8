package repositories

import (
	"context"
	"errors"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// PaymentRepository implements payment data operations
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create creates a new payment
func (r *PaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	m := toPaymentModel(payment)
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	payment.ID = m.ID
	return nil
}

// GetByID gets a payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByIdempotencyKey gets a payment by its posting-attempt idempotency key
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*entities.Payment, error) {
	return r.getOne(ctx, "idempotency_key = ?", key)
}

// GetByExternalRef gets a payment by the processor charge reference
func (r *PaymentRepository) GetByExternalRef(ctx context.Context, ref string) (*entities.Payment, error) {
	return r.getOne(ctx, "external_ref = ?", ref)
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.Payment, error) {
	var m models.Payment
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPaymentEntity(&m), nil
}

// Update persists all mutable payment fields
func (r *PaymentRepository) Update(ctx context.Context, payment *entities.Payment) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":         payment.Status,
			"job_id":         payment.JobID,
			"external_ref":   payment.ExternalRef.Ptr(),
			"refund_ref":     payment.RefundRef.Ptr(),
			"failure_reason": payment.FailureReason.Ptr(),
			"completed_at":   payment.CompletedAt,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkCompleted records the successful authorization in one write.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, externalRef string) error {
	now := time.Now()
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.PaymentStatusCompleted,
			"external_ref": externalRef,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkFailed records an authorization failure with its reason.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         entities.PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkRefunded records a refund against the payment.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id uuid.UUID, refundRef string) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusRefunded,
			"refund_ref": refundRef,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toPaymentModel(p *entities.Payment) *models.Payment {
	return &models.Payment{
		ID:             p.ID,
		PayerID:        p.PayerID,
		JobID:          p.JobID,
		Amount:         p.Amount,
		ServiceFee:     p.ServiceFee,
		TotalAmount:    p.TotalAmount,
		Status:         string(p.Status),
		ExternalRef:    p.ExternalRef.Ptr(),
		RefundRef:      p.RefundRef.Ptr(),
		IdempotencyKey: p.IdempotencyKey,
		FailureReason:  p.FailureReason.Ptr(),
		CreatedAt:      p.CreatedAt,
		CompletedAt:    p.CompletedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPaymentEntity(m *models.Payment) *entities.Payment {
	return &entities.Payment{
		ID:             m.ID,
		PayerID:        m.PayerID,
		JobID:          m.JobID,
		Amount:         m.Amount,
		ServiceFee:     m.ServiceFee,
		TotalAmount:    m.TotalAmount,
		Status:         entities.PaymentStatus(m.Status),
		ExternalRef:    null.StringFromPtr(m.ExternalRef),
		RefundRef:      null.StringFromPtr(m.RefundRef),
		IdempotencyKey: m.IdempotencyKey,
		FailureReason:  null.StringFromPtr(m.FailureReason),
		CreatedAt:      m.CreatedAt,
		CompletedAt:    m.CompletedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
