package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	domainerrors "fixer.backend/internal/domain/errors"
)

func TestUserRepository_GetAndSetCustomerRef(t *testing.T) {
	db := newTestDB(t)
	createUsersTable(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	mustExec(t, db, `INSERT INTO users(id,email,name,created_at,updated_at) VALUES (?,?,?,?,?)`,
		userID.String(), "poster@example.com", "Pat", time.Now(), time.Now())

	got, err := repo.GetByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "poster@example.com", got.Email)
	require.False(t, got.CustomerRef.Valid)

	require.NoError(t, repo.SetCustomerRef(ctx, userID, "cus_1"))

	got, err = repo.GetByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, "cus_1", got.CustomerRef.String)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.SetCustomerRef(ctx, uuid.New(), "cus_2"), domainerrors.ErrNotFound)
}
