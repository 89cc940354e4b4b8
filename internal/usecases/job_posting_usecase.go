package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/telemetry"
	"fixer.backend/pkg/logger"
	"fixer.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

// JobPostingUsecase orchestrates payment-gated job posting. Order of
// operations is fixed: validate, persist placeholders, charge once,
// commit under lock, and compensate with a refund if the commit fails.
// A poster is never charged for a job that does not end up open.
type JobPostingUsecase struct {
	uow              repositories.UnitOfWork
	jobRepo          repositories.JobRepository
	paymentRepo      repositories.PaymentRepository
	interventionRepo repositories.ManualInterventionRepository
	userRepo         repositories.UserRepository
	payments         *PaymentAuthService
	notifier         Notifier
	invalidator      ListingInvalidator

	authorizeTimeout time.Duration
	commitTimeout    time.Duration
	refundAttempts   int
	refundBackoff    time.Duration
}

// NewJobPostingUsecase creates a new job posting usecase
func NewJobPostingUsecase(
	uow repositories.UnitOfWork,
	jobRepo repositories.JobRepository,
	paymentRepo repositories.PaymentRepository,
	interventionRepo repositories.ManualInterventionRepository,
	userRepo repositories.UserRepository,
	payments *PaymentAuthService,
	notifier Notifier,
	invalidator ListingInvalidator,
	authorizeTimeout time.Duration,
	commitTimeout time.Duration,
	refundAttempts int,
	refundBackoff time.Duration,
) *JobPostingUsecase {
	if refundAttempts <= 0 {
		refundAttempts = DefaultRefundAttempts
	}
	if refundBackoff <= 0 {
		refundBackoff = DefaultRefundBackoff
	}
	if commitTimeout <= 0 {
		commitTimeout = DefaultCommitTimeout
	}
	return &JobPostingUsecase{
		uow:              uow,
		jobRepo:          jobRepo,
		paymentRepo:      paymentRepo,
		interventionRepo: interventionRepo,
		userRepo:         userRepo,
		payments:         payments,
		notifier:         notifier,
		invalidator:      invalidator,
		authorizeTimeout: authorizeTimeout,
		commitTimeout:    commitTimeout,
		refundAttempts:   refundAttempts,
		refundBackoff:    refundBackoff,
	}
}

// PostJob runs the payment-first posting flow. The job row exists in
// pending_payment before any processor call so every charge always has a
// durable record to reconcile against.
func (u *JobPostingUsecase) PostJob(ctx context.Context, posterID uuid.UUID, input *entities.PostJobInput) (*entities.PostJobResponse, error) {
	if err := ValidateJobContent(input.Title, input.Description, input.Skills); err != nil {
		return nil, err
	}
	if err := ValidateJobPayment(input.PaymentAmount, input.PaymentType); err != nil {
		return nil, err
	}

	if input.IdempotencyKey == "" {
		input.IdempotencyKey = utils.GenerateUUIDv7().String()
	} else if resp, err := u.replay(ctx, input.IdempotencyKey); resp != nil || err != nil {
		return resp, err
	}

	user, err := u.userRepo.GetByID(ctx, posterID)
	if err != nil {
		return nil, err
	}
	customerRef, err := u.payments.EnsureCustomer(ctx, user)
	if err != nil {
		return nil, domainerrors.PaymentError(err)
	}
	if err := u.payments.VerifyPaymentMethod(ctx, customerRef, input.PaymentMethodID); err != nil {
		return nil, domainerrors.PaymentError(err)
	}

	fee := ServiceFeeFor(input.PaymentAmount)
	total := roundCents(input.PaymentAmount + fee)
	now := time.Now()

	job := &entities.Job{
		ID:            utils.GenerateUUIDv7(),
		PosterID:      posterID,
		Title:         input.Title,
		Description:   input.Description,
		Skills:        input.Skills,
		PaymentType:   input.PaymentType,
		PaymentAmount: input.PaymentAmount,
		ServiceFee:    fee,
		TotalAmount:   total,
		Status:        entities.JobStatusPendingPayment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	payment := &entities.Payment{
		ID:             utils.GenerateUUIDv7(),
		PayerID:        posterID,
		JobID:          &job.ID,
		Amount:         input.PaymentAmount,
		ServiceFee:     fee,
		TotalAmount:    total,
		Status:         entities.PaymentStatusPending,
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.jobRepo.Create(ctx, job); err != nil {
			return err
		}
		return u.paymentRepo.Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	charge, err := u.authorize(ctx, customerRef, input.PaymentMethodID, payment)
	if err != nil {
		u.recordAuthFailure(ctx, job, payment, err)
		telemetry.AuthorizeDeclined.Inc()
		return nil, domainerrors.PaymentError(err)
	}
	telemetry.AuthorizeSuccess.Inc()

	if err := u.commit(ctx, job, payment, charge); err != nil {
		u.compensate(ctx, job, payment, charge)
		return nil, domainerrors.PaymentError(domainerrors.ErrCommitFailed)
	}

	telemetry.JobsOpened.Inc()
	u.invalidator.InvalidateJobListing(ctx, job.ID)
	u.notifier.NotifyUser(ctx, posterID,
		fmt.Sprintf("Your job %q is now live. You were charged $%.2f.", job.Title, total))
	logger.Info(ctx, "job posted",
		zap.String("job_id", job.ID.String()),
		zap.String("payment_id", payment.ID.String()),
		zap.String("charge_id", charge.ID))

	return u.load(ctx, job.ID, payment.ID)
}

// replay resolves an Idempotency-Key the server has seen before. A
// completed payment returns the original result; an in-flight one
// conflicts; a failed one tells the caller to start over.
func (u *JobPostingUsecase) replay(ctx context.Context, key string) (*entities.PostJobResponse, error) {
	payment, err := u.paymentRepo.GetByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	switch payment.Status {
	case entities.PaymentStatusCompleted:
		if payment.JobID == nil {
			return nil, domainerrors.InternalError(errors.New("completed payment without job"))
		}
		return u.load(ctx, *payment.JobID, payment.ID)
	case entities.PaymentStatusPending:
		return nil, domainerrors.NewAppError(http.StatusConflict, "ERR_REQUEST_IN_PROGRESS",
			"A posting attempt with this Idempotency-Key is still in progress.",
			domainerrors.ErrRequestInProgress)
	default:
		msg := "The previous posting attempt failed. Retry with a new Idempotency-Key."
		if payment.FailureReason.Valid {
			msg = fmt.Sprintf("The previous posting attempt failed: %s. Retry with a new Idempotency-Key.",
				payment.FailureReason.String)
		}
		return nil, domainerrors.NewAppError(http.StatusPaymentRequired, "ERR_PAYMENT_FAILED",
			msg, domainerrors.ErrCardDeclined)
	}
}

// authorize issues the single charge attempt under its own deadline.
func (u *JobPostingUsecase) authorize(ctx context.Context, customerRef, paymentMethodID string, payment *entities.Payment) (*processor.Charge, error) {
	authCtx := ctx
	if u.authorizeTimeout > 0 {
		var cancel context.CancelFunc
		authCtx, cancel = context.WithTimeout(ctx, u.authorizeTimeout)
		defer cancel()
	}
	return u.payments.Authorize(authCtx, processor.AuthorizeParams{
		CustomerRef:     customerRef,
		PaymentMethodID: paymentMethodID,
		AmountCents:     int64(payment.TotalAmount*100 + 0.5),
		Description:     fmt.Sprintf("Job posting %s", payment.JobID),
		IdempotencyKey:  payment.IdempotencyKey,
	})
}

// commit records the successful charge and opens the job, atomically and
// under row locks so webhook reconciliation cannot interleave. It runs
// under its own deadline: a wedged database must not hold a captured
// charge in limbo indefinitely.
func (u *JobPostingUsecase) commit(ctx context.Context, job *entities.Job, payment *entities.Payment, charge *processor.Charge) error {
	commitCtx, cancel := context.WithTimeout(ctx, u.commitTimeout)
	defer cancel()

	return u.uow.Do(u.uow.WithLock(commitCtx), func(ctx context.Context) error {
		current, err := u.paymentRepo.GetByID(ctx, payment.ID)
		if err != nil {
			return err
		}
		if current.Status == entities.PaymentStatusCompleted {
			// Webhook reconciliation got here first.
			return nil
		}
		if err := u.paymentRepo.MarkCompleted(ctx, payment.ID, charge.ID); err != nil {
			return err
		}
		return u.jobRepo.MarkOpen(ctx, job.ID, payment.ID)
	})
}

// recordAuthFailure persists the decline so the placeholder job and
// payment carry the terminal state. Best effort: the authorization
// outcome is already decided.
func (u *JobPostingUsecase) recordAuthFailure(ctx context.Context, job *entities.Job, payment *entities.Payment, authErr error) {
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.paymentRepo.MarkFailed(ctx, payment.ID, authErr.Error()); err != nil {
			return err
		}
		return u.jobRepo.UpdateStatus(ctx, job.ID, entities.JobStatusPaymentFailed)
	})
	if err != nil {
		logger.Error(ctx, "failed to record authorization failure",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
	}
}

// compensate reverses a captured charge whose commit failed. Retries are
// bounded with backoff; on exhaustion the payment is escalated to the
// manual intervention queue, because at that point money is sitting on a
// charge with no open job.
func (u *JobPostingUsecase) compensate(ctx context.Context, job *entities.Job, payment *entities.Payment, charge *processor.Charge) {
	// The request context may already be dead; compensation must still run.
	ctx = context.WithoutCancel(ctx)

	logger.Warn(ctx, "commit failed after charge, refunding",
		zap.String("payment_id", payment.ID.String()),
		zap.String("charge_id", charge.ID))

	refundKey := payment.ID.String() + "-refund"
	var refund *processor.Refund
	var err error
	for attempt := 1; attempt <= u.refundAttempts; attempt++ {
		refund, err = u.payments.Refund(ctx, charge.ID, refundKey)
		if err == nil {
			break
		}
		logger.Warn(ctx, "refund attempt failed",
			zap.Int("attempt", attempt),
			zap.String("charge_id", charge.ID),
			zap.Error(err))
		if attempt < u.refundAttempts {
			time.Sleep(u.refundBackoff * time.Duration(attempt))
		}
	}

	if err != nil {
		telemetry.RefundFailures.Inc()
		u.escalateRefundFailure(ctx, payment, charge, err)
		return
	}

	telemetry.RefundsIssued.Inc()
	dbErr := u.uow.Do(ctx, func(ctx context.Context) error {
		if err := u.paymentRepo.MarkRefunded(ctx, payment.ID, refund.ID); err != nil {
			return err
		}
		return u.jobRepo.UpdateStatus(ctx, job.ID, entities.JobStatusPaymentFailed)
	})
	if dbErr != nil {
		// Refund went through; the webhook will reconcile the local rows.
		logger.Error(ctx, "failed to record refund locally",
			zap.String("payment_id", payment.ID.String()), zap.Error(dbErr))
	}
}

func (u *JobPostingUsecase) escalateRefundFailure(ctx context.Context, payment *entities.Payment, charge *processor.Charge, refundErr error) {
	mi := &entities.ManualIntervention{
		ID:          utils.GenerateUUIDv7(),
		Kind:        entities.InterventionRefundFailed,
		PaymentID:   &payment.ID,
		ExternalRef: null.StringFrom(charge.ID),
		Detail:      fmt.Sprintf("refund failed after %d attempts: %v", u.refundAttempts, refundErr),
		CreatedAt:   time.Now(),
	}
	if err := u.interventionRepo.Create(ctx, mi); err != nil {
		logger.Error(ctx, "failed to enqueue manual intervention",
			zap.String("payment_id", payment.ID.String()), zap.Error(err))
	}
	u.notifier.NotifyUser(ctx, payment.PayerID,
		"We hit a problem completing your job posting. Our team is issuing your refund manually.")
	logger.Error(ctx, "refund exhausted, escalated to manual intervention",
		zap.String("payment_id", payment.ID.String()),
		zap.String("charge_id", charge.ID),
		zap.Error(refundErr))
}

func (u *JobPostingUsecase) load(ctx context.Context, jobID, paymentID uuid.UUID) (*entities.PostJobResponse, error) {
	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	payment, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &entities.PostJobResponse{Job: job, Payment: payment}, nil
}

// GetJob returns a job by id.
func (u *JobPostingUsecase) GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error) {
	return u.jobRepo.GetByID(ctx, id)
}

// ListJobsByPoster returns the poster's own jobs, newest first. Posters
// see all statuses including pending_payment and payment_failed.
func (u *JobPostingUsecase) ListJobsByPoster(ctx context.Context, posterID uuid.UUID, page, limit int) ([]*entities.Job, utils.PaginationMeta, error) {
	p := utils.NewPaginationParams(page, limit)
	jobs, total, err := u.jobRepo.GetByPosterID(ctx, posterID, p.Limit, p.Offset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return jobs, p.Meta(int64(total)), nil
}
