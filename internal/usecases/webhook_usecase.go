package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/telemetry"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/utils"
	"go.uber.org/zap"
)

// WebhookUsecase reconciles processor events against local state. The
// processor delivers at-least-once and out of order, so every branch is
// written to be idempotent: the event ledger row is inserted in the same
// transaction as the state change, and payment transitions re-check
// current status under lock before writing.
type WebhookUsecase struct {
	uow         repositories.UnitOfWork
	jobRepo     repositories.JobRepository
	paymentRepo repositories.PaymentRepository
	accountRepo repositories.PayoutAccountRepository
	eventRepo   repositories.WebhookEventRepository
	accounts    *PayoutAccountUsecase
	recovery    *RecoveryCoordinator
	notifier    Notifier
	invalidator ListingInvalidator
}

// NewWebhookUsecase creates a new webhook usecase
func NewWebhookUsecase(
	uow repositories.UnitOfWork,
	jobRepo repositories.JobRepository,
	paymentRepo repositories.PaymentRepository,
	accountRepo repositories.PayoutAccountRepository,
	eventRepo repositories.WebhookEventRepository,
	accounts *PayoutAccountUsecase,
	recovery *RecoveryCoordinator,
	notifier Notifier,
	invalidator ListingInvalidator,
) *WebhookUsecase {
	return &WebhookUsecase{
		uow:         uow,
		jobRepo:     jobRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		eventRepo:   eventRepo,
		accounts:    accounts,
		recovery:    recovery,
		notifier:    notifier,
		invalidator: invalidator,
	}
}

// HandleEvent processes one verified processor event. Unknown types are
// rejected so the processor keeps retrying them and a missing handler
// shows up as an alert instead of silent data loss.
func (u *WebhookUsecase) HandleEvent(ctx context.Context, event *entities.ProcessorEvent) error {
	if !event.Type.Known() {
		return domainerrors.ErrUnknownEventType
	}

	seen, err := u.eventRepo.Exists(ctx, event.ID)
	if err != nil {
		return err
	}
	if seen {
		telemetry.WebhookReplays.Inc()
		logger.Debug(ctx, "webhook event already processed", zap.String("event_id", event.ID))
		return nil
	}

	err = u.uow.Do(u.uow.WithLock(ctx), func(ctx context.Context) error {
		var externalRef string
		var handleErr error
		switch event.Type {
		case entities.EventPaymentSucceeded:
			externalRef, handleErr = u.handlePaymentSucceeded(ctx, event)
		case entities.EventPaymentFailed:
			externalRef, handleErr = u.handlePaymentFailed(ctx, event)
		case entities.EventPaymentRefunded:
			externalRef, handleErr = u.handlePaymentRefunded(ctx, event)
		case entities.EventAccountUpdated:
			externalRef, handleErr = u.handleAccountUpdated(ctx, event)
		}
		if handleErr != nil {
			return handleErr
		}

		return u.eventRepo.Create(ctx, &entities.WebhookEvent{
			ID:          utils.GenerateUUIDv7(),
			EventID:     event.ID,
			EventType:   event.Type,
			ExternalRef: externalRef,
			EventTime:   event.CreatedAt,
			ProcessedAt: time.Now(),
		})
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// Concurrent delivery of the same event: the other handler's
			// ledger insert won. This processing already happened.
			telemetry.WebhookReplays.Inc()
			return nil
		}
		return err
	}

	telemetry.WebhookProcessed.Inc()
	return nil
}

// handlePaymentSucceeded is the crash-recovery path for the synchronous
// flow: a payment left pending because the service died between charge
// and commit gets completed here, and its job opened.
func (u *WebhookUsecase) handlePaymentSucceeded(ctx context.Context, event *entities.ProcessorEvent) (string, error) {
	data, err := paymentData(event)
	if err != nil {
		return "", err
	}

	payment, err := u.findPayment(ctx, data)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			// A charge we have no record of. Record the event and leave
			// it for support rather than failing the delivery forever.
			logger.Warn(ctx, "payment.succeeded for unknown charge",
				zap.String("event_id", event.ID), zap.String("charge_id", data.ChargeID))
			return data.ChargeID, nil
		}
		return "", err
	}

	if payment.Status != entities.PaymentStatusPending {
		return data.ChargeID, nil
	}

	if err := u.paymentRepo.MarkCompleted(ctx, payment.ID, data.ChargeID); err != nil {
		return "", err
	}
	if payment.JobID != nil {
		if err := u.jobRepo.MarkOpen(ctx, *payment.JobID, payment.ID); err != nil &&
			!errors.Is(err, domainerrors.ErrNotFound) {
			return "", err
		}
		u.invalidator.InvalidateJobListing(ctx, *payment.JobID)
	}
	logger.Info(ctx, "pending payment completed via webhook",
		zap.String("payment_id", payment.ID.String()),
		zap.String("charge_id", data.ChargeID))
	return data.ChargeID, nil
}

func (u *WebhookUsecase) handlePaymentFailed(ctx context.Context, event *entities.ProcessorEvent) (string, error) {
	data, err := paymentData(event)
	if err != nil {
		return "", err
	}

	payment, err := u.findPayment(ctx, data)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "payment.failed for unknown charge",
				zap.String("event_id", event.ID), zap.String("charge_id", data.ChargeID))
			return data.ChargeID, nil
		}
		return "", err
	}

	switch payment.Status {
	case entities.PaymentStatusPending:
		reason := data.FailureReason
		if reason == "" {
			reason = "declined"
		}
		if err := u.paymentRepo.MarkFailed(ctx, payment.ID, reason); err != nil {
			return "", err
		}
		if payment.JobID != nil {
			if err := u.jobRepo.UpdateStatus(ctx, *payment.JobID, entities.JobStatusPaymentFailed); err != nil &&
				!errors.Is(err, domainerrors.ErrNotFound) {
				return "", err
			}
		}
	case entities.PaymentStatusCompleted:
		// The processor is authoritative: a failure reported after we
		// committed means the charge was reversed upstream, so the
		// payment and any job it opened must not stay live.
		logger.Warn(ctx, "payment.failed for completed payment, reversing",
			zap.String("payment_id", payment.ID.String()))
		if err := u.reverseCompletedPayment(ctx, payment, data.ChargeID); err != nil {
			return "", err
		}
	}
	return data.ChargeID, nil
}

// handlePaymentRefunded closes the paid job when its posting charge is
// reversed after the fact (disputes, support-issued refunds).
func (u *WebhookUsecase) handlePaymentRefunded(ctx context.Context, event *entities.ProcessorEvent) (string, error) {
	data, err := paymentData(event)
	if err != nil {
		return "", err
	}

	payment, err := u.findPayment(ctx, data)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "payment.refunded for unknown charge",
				zap.String("event_id", event.ID), zap.String("charge_id", data.ChargeID))
			return data.ChargeID, nil
		}
		return "", err
	}

	if payment.Status == entities.PaymentStatusRefunded {
		return data.ChargeID, nil
	}

	refundRef := data.RefundID
	if refundRef == "" {
		refundRef = data.ChargeID
	}
	if err := u.reverseCompletedPayment(ctx, payment, refundRef); err != nil {
		return "", err
	}
	return data.ChargeID, nil
}

// reverseCompletedPayment marks the payment refunded and closes its job
// while it is still visible. Shared by the refund event and a late
// payment.failed, both of which override a charge we already committed.
func (u *WebhookUsecase) reverseCompletedPayment(ctx context.Context, payment *entities.Payment, refundRef string) error {
	if err := u.paymentRepo.MarkRefunded(ctx, payment.ID, refundRef); err != nil {
		return err
	}
	if payment.JobID == nil {
		return nil
	}

	job, err := u.jobRepo.GetByID(ctx, *payment.JobID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if !job.IsVisible() {
		return nil
	}

	if err := u.jobRepo.UpdateStatus(ctx, job.ID, entities.JobStatusRefundedClosed); err != nil {
		return err
	}
	u.invalidator.InvalidateJobListing(ctx, job.ID)
	u.notifier.NotifyUser(ctx, job.PosterID, fmt.Sprintf(
		"Your job %q was closed because its payment was refunded.", job.Title))
	logger.Info(ctx, "job closed after payment reversal",
		zap.String("job_id", job.ID.String()),
		zap.String("payment_id", payment.ID.String()))
	return nil
}

// handleAccountUpdated applies processor-pushed account state, with a
// stale-event guard: an event older than our last direct check loses.
func (u *WebhookUsecase) handleAccountUpdated(ctx context.Context, event *entities.ProcessorEvent) (string, error) {
	var data entities.AccountEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return "", domainerrors.BadRequest("ERR_INVALID_PAYLOAD", "malformed account event data")
	}
	if data.AccountID == "" {
		return "", domainerrors.BadRequest("ERR_INVALID_PAYLOAD", "account event missing accountId")
	}

	account, err := u.accountRepo.GetByExternalID(ctx, data.AccountID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "account.updated for unknown account",
				zap.String("event_id", event.ID), zap.String("external_account_id", data.AccountID))
			return data.AccountID, nil
		}
		return "", err
	}

	if account.LastCheckedAt != nil && event.CreatedAt.Before(*account.LastCheckedAt) {
		telemetry.WebhookStale.Inc()
		logger.Debug(ctx, "stale account event ignored",
			zap.String("event_id", event.ID),
			zap.Time("event_time", event.CreatedAt),
			zap.Time("last_checked_at", *account.LastCheckedAt))
		return data.AccountID, nil
	}

	wasActive := account.Status == entities.PayoutAccountStatusActive
	account, err = u.accounts.Apply(ctx, account, data.ChargesEnabled, data.PayoutsEnabled, data.Requirements)
	if err != nil {
		return "", err
	}
	if !wasActive && account.Status == entities.PayoutAccountStatusActive {
		if err := u.recovery.HandleRecovered(ctx, account); err != nil {
			return "", err
		}
	}
	return data.AccountID, nil
}

// findPayment resolves a payment event to a local payment, preferring
// the stored charge reference and falling back to the echoed idempotency
// key for payments that never got their charge id persisted.
func (u *WebhookUsecase) findPayment(ctx context.Context, data *entities.PaymentEventData) (*entities.Payment, error) {
	if data.ChargeID != "" {
		payment, err := u.paymentRepo.GetByExternalRef(ctx, data.ChargeID)
		if err == nil {
			return payment, nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return nil, err
		}
	}
	if data.IdempotencyKey != "" {
		return u.paymentRepo.GetByIdempotencyKey(ctx, data.IdempotencyKey)
	}
	return nil, domainerrors.ErrNotFound
}

func paymentData(event *entities.ProcessorEvent) (*entities.PaymentEventData, error) {
	var data entities.PaymentEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return nil, domainerrors.BadRequest("ERR_INVALID_PAYLOAD", "malformed payment event data")
	}
	if data.ChargeID == "" && data.IdempotencyKey == "" {
		return nil, domainerrors.BadRequest("ERR_INVALID_PAYLOAD", "payment event missing charge reference")
	}
	return &data, nil
}
