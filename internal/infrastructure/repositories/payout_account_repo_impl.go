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
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
)

// PayoutAccountRepository implements payout account data operations
type PayoutAccountRepository struct {
	db *gorm.DB
}

// NewPayoutAccountRepository creates a new payout account repository
func NewPayoutAccountRepository(db *gorm.DB) *PayoutAccountRepository {
	return &PayoutAccountRepository{db: db}
}

// Create creates a new payout account record. The unique user_id index
// turns a concurrent create into ErrAlreadyExists so the caller can
// re-read the winning row.
func (r *PayoutAccountRepository) Create(ctx context.Context, account *entities.PayoutAccount) error {
	m := toPayoutAccountModel(account)
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	account.ID = m.ID
	return nil
}

// GetByUserID gets the payout account owned by a worker
func (r *PayoutAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error) {
	return r.getOne(ctx, "user_id = ?", userID)
}

// GetByExternalID gets a payout account by the processor account reference
func (r *PayoutAccountRepository) GetByExternalID(ctx context.Context, externalID string) (*entities.PayoutAccount, error) {
	return r.getOne(ctx, "external_account_id = ?", externalID)
}

func (r *PayoutAccountRepository) getOne(ctx context.Context, query string, arg interface{}) (*entities.PayoutAccount, error) {
	var m models.PayoutAccount
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPayoutAccountEntity(&m), nil
}

// Update persists status, requirements and timestamps
func (r *PayoutAccountRepository) Update(ctx context.Context, account *entities.PayoutAccount) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.PayoutAccount{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"external_account_id": account.ExternalAccountID.Ptr(),
			"status":              account.Status,
			"requirements":        strings.Join(account.Requirements, ","),
			"link_issued_at":      account.LinkIssuedAt,
			"last_checked_at":     account.LastCheckedAt,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListActionable returns accounts the status monitor should poll:
// onboarding in flight or restricted, least recently checked first.
func (r *PayoutAccountRepository) ListActionable(ctx context.Context, limit int) ([]*entities.PayoutAccount, error) {
	var ms []models.PayoutAccount
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(entities.PayoutAccountStatusPending),
			string(entities.PayoutAccountStatusRestricted),
		}).
		Order("last_checked_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var accounts []*entities.PayoutAccount
	for i := range ms {
		accounts = append(accounts, toPayoutAccountEntity(&ms[i]))
	}
	return accounts, nil
}

func toPayoutAccountModel(a *entities.PayoutAccount) *models.PayoutAccount {
	return &models.PayoutAccount{
		ID:                a.ID,
		UserID:            a.UserID,
		ExternalAccountID: a.ExternalAccountID.Ptr(),
		Status:            string(a.Status),
		Requirements:      strings.Join(a.Requirements, ","),
		LinkIssuedAt:      a.LinkIssuedAt,
		LastCheckedAt:     a.LastCheckedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func toPayoutAccountEntity(m *models.PayoutAccount) *entities.PayoutAccount {
	var reqs []string
	if m.Requirements != "" {
		reqs = strings.Split(m.Requirements, ",")
	}
	return &entities.PayoutAccount{
		ID:                m.ID,
		UserID:            m.UserID,
		ExternalAccountID: null.StringFromPtr(m.ExternalAccountID),
		Status:            entities.PayoutAccountStatus(m.Status),
		Requirements:      reqs,
		LinkIssuedAt:      m.LinkIssuedAt,
		LastCheckedAt:     m.LastCheckedAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
