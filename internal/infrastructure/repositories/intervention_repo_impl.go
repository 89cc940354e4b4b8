package repositories

import (
	"context"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// ManualInterventionRepository implements the escalation queue
type ManualInterventionRepository struct {
	db *gorm.DB
}

// NewManualInterventionRepository creates a new manual intervention repository
func NewManualInterventionRepository(db *gorm.DB) *ManualInterventionRepository {
	return &ManualInterventionRepository{db: db}
}

// Create records a new escalation
func (r *ManualInterventionRepository) Create(ctx context.Context, mi *entities.ManualIntervention) error {
	m := &models.ManualIntervention{
		ID:          mi.ID,
		Kind:        string(mi.Kind),
		PaymentID:   mi.PaymentID,
		AccountID:   mi.AccountID,
		ExternalRef: mi.ExternalRef.Ptr(),
		Detail:      mi.Detail,
		Resolved:    mi.Resolved,
		CreatedAt:   mi.CreatedAt,
		ResolvedAt:  mi.ResolvedAt,
	}
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	mi.ID = m.ID
	return nil
}

// ListUnresolved returns open escalations, oldest first
func (r *ManualInterventionRepository) ListUnresolved(ctx context.Context, limit, offset int) ([]*entities.ManualIntervention, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ManualIntervention{}).
		Where("resolved = ?", false).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.ManualIntervention
	if err := r.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var out []*entities.ManualIntervention
	for i := range ms {
		m := ms[i]
		out = append(out, &entities.ManualIntervention{
			ID:          m.ID,
			Kind:        entities.InterventionKind(m.Kind),
			PaymentID:   m.PaymentID,
			AccountID:   m.AccountID,
			ExternalRef: null.StringFromPtr(m.ExternalRef),
			Detail:      m.Detail,
			Resolved:    m.Resolved,
			CreatedAt:   m.CreatedAt,
			ResolvedAt:  m.ResolvedAt,
		})
	}
	return out, int(total), nil
}

// Resolve closes an escalation
func (r *ManualInterventionRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.ManualIntervention{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}
