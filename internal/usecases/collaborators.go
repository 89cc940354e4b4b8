package usecases

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers user-facing notifications. The implementation lives
// with the messaging service; this subsystem only emits.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, message string)
}

// ListingInvalidator tells the discovery/search collaborator that a
// job's visibility changed.
type ListingInvalidator interface {
	InvalidateJobListing(ctx context.Context, jobID uuid.UUID)
}

// NopNotifier discards notifications. Used where messaging is not wired.
type NopNotifier struct{}

func (NopNotifier) NotifyUser(context.Context, uuid.UUID, string) {}

// NopListingInvalidator discards invalidations.
type NopListingInvalidator struct{}

func (NopListingInvalidator) InvalidateJobListing(context.Context, uuid.UUID) {}
