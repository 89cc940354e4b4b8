package usecases

import (
	"context"
	"errors"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/pkg/logger"
	"go.uber.org/zap"
)

// PaymentAuthService owns the processor-facing side of charging a poster:
// customer provisioning, payment method ownership checks, authorization
// and refunds. It never touches job state.
type PaymentAuthService struct {
	userRepo repositories.UserRepository
	client   processor.Client
}

// NewPaymentAuthService creates a new payment auth service
func NewPaymentAuthService(userRepo repositories.UserRepository, client processor.Client) *PaymentAuthService {
	return &PaymentAuthService{
		userRepo: userRepo,
		client:   client,
	}
}

// EnsureCustomer returns the processor customer reference for a user,
// creating one on first use. The reference is persisted so repeat
// postings skip the round trip.
func (s *PaymentAuthService) EnsureCustomer(ctx context.Context, user *entities.User) (string, error) {
	if user.CustomerRef.Valid && user.CustomerRef.String != "" {
		return user.CustomerRef.String, nil
	}

	ref, err := s.client.CreateCustomer(ctx, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.SetCustomerRef(ctx, user.ID, ref); err != nil {
		// The processor-side customer exists but the reference was lost;
		// the next posting will create a duplicate customer, which is
		// harmless. Charging against an unsaved reference is not.
		logger.Error(ctx, "failed to persist customer reference",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return "", err
	}
	return ref, nil
}

// VerifyPaymentMethod checks that the payment method exists and belongs
// to the given customer. A method owned by anyone else is rejected the
// same way as a nonexistent one, so the response leaks nothing.
func (s *PaymentAuthService) VerifyPaymentMethod(ctx context.Context, customerRef, paymentMethodID string) error {
	pm, err := s.client.GetPaymentMethod(ctx, paymentMethodID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidPaymentMethod) || errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.ErrInvalidPaymentMethod
		}
		return err
	}
	if pm.CustomerRef != customerRef {
		return domainerrors.ErrInvalidPaymentMethod
	}
	return nil
}

// Authorize issues exactly one charge attempt.
func (s *PaymentAuthService) Authorize(ctx context.Context, params processor.AuthorizeParams) (*processor.Charge, error) {
	return s.client.Authorize(ctx, params)
}

// Refund reverses a charge.
func (s *PaymentAuthService) Refund(ctx context.Context, chargeID, idempotencyKey string) (*processor.Refund, error) {
	return s.client.Refund(ctx, chargeID, idempotencyKey)
}
