package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
)

func TestWebhookEventRepository_CreateAndExists(t *testing.T) {
	db := newTestDB(t)
	createWebhookEventsTable(t, db)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	exists, err := repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.Create(ctx, &entities.WebhookEvent{
		ID:          uuid.New(),
		EventID:     "evt_1",
		EventType:   entities.EventPaymentSucceeded,
		ExternalRef: "ch_1",
		EventTime:   time.Now(),
		ProcessedAt: time.Now(),
	}))

	exists, err = repo.Exists(ctx, "evt_1")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestWebhookEventRepository_DuplicateEventID(t *testing.T) {
	db := newTestDB(t)
	createWebhookEventsTable(t, db)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	first := &entities.WebhookEvent{
		ID:          uuid.New(),
		EventID:     "evt_1",
		EventType:   entities.EventPaymentSucceeded,
		EventTime:   time.Now(),
		ProcessedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, first))

	dup := &entities.WebhookEvent{
		ID:          uuid.New(),
		EventID:     "evt_1",
		EventType:   entities.EventPaymentSucceeded,
		EventTime:   time.Now(),
		ProcessedAt: time.Now(),
	}
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)
}
