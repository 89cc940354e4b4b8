package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRepository implements job data operations
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create creates a new job
func (r *JobRepository) Create(ctx context.Context, job *entities.Job) error {
	m := toJobModel(job)
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	job.ID = m.ID
	return nil
}

// GetByID gets a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	var m models.Job
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toJobEntity(&m), nil
}

// Update persists all mutable job fields
func (r *JobRepository) Update(ctx context.Context, job *entities.Job) error {
	m := toJobModel(job)
	m.UpdatedAt = time.Now()
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", job.ID).Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus updates only the job status
func (r *JobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.JobStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
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

// MarkOpen links the completed payment and opens the job atomically with
// respect to the surrounding transaction.
func (r *JobRepository) MarkOpen(ctx context.Context, id, paymentID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND status = ?", id, entities.JobStatusPendingPayment).
		Updates(map[string]interface{}{
			"status":     entities.JobStatusOpen,
			"payment_id": paymentID,
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

// GetByPosterID gets jobs for a poster with pagination
func (r *JobRepository) GetByPosterID(ctx context.Context, posterID uuid.UUID, limit, offset int) ([]*entities.Job, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("poster_id = ? AND deleted_at IS NULL", posterID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Job
	if err := r.db.WithContext(ctx).
		Where("poster_id = ? AND deleted_at IS NULL", posterID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var jobs []*entities.Job
	for i := range ms {
		jobs = append(jobs, toJobEntity(&ms[i]))
	}
	return jobs, int(total), nil
}

func toJobModel(j *entities.Job) *models.Job {
	return &models.Job{
		ID:            j.ID,
		PosterID:      j.PosterID,
		Title:         j.Title,
		Description:   j.Description,
		Skills:        strings.Join(j.Skills, ","),
		PaymentType:   string(j.PaymentType),
		PaymentAmount: j.PaymentAmount,
		ServiceFee:    j.ServiceFee,
		TotalAmount:   j.TotalAmount,
		Status:        string(j.Status),
		PaymentID:     j.PaymentID,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
		DeletedAt:     j.DeletedAt,
	}
}

func toJobEntity(m *models.Job) *entities.Job {
	var skills []string
	if m.Skills != "" {
		skills = strings.Split(m.Skills, ",")
	}
	return &entities.Job{
		ID:            m.ID,
		PosterID:      m.PosterID,
		Title:         m.Title,
		Description:   m.Description,
		Skills:        skills,
		PaymentType:   entities.PaymentType(m.PaymentType),
		PaymentAmount: m.PaymentAmount,
		ServiceFee:    m.ServiceFee,
		TotalAmount:   m.TotalAmount,
		Status:        entities.JobStatus(m.Status),
		PaymentID:     m.PaymentID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		DeletedAt:     m.DeletedAt,
	}
}
