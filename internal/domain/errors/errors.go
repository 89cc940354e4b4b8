package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	// Authorization failure taxonomy. Declines are final; processor
	// errors are transient and safe to retry with the same idempotency key.
	ErrCardDeclined         = errors.New("card declined")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrCommitFailed is the post-charge commit failure: the charge was
	// compensated by refund, so the caller was never billed.
	ErrCommitFailed = errors.New("payment could not be completed")

	ErrPayoutNotActive   = errors.New("payout account not active")
	ErrRecoveryExhausted = errors.New("onboarding recovery exhausted")
	ErrUnknownEventType  = errors.New("unknown webhook event type")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrDuplicateEvent    = errors.New("event already processed")
	ErrContentRejected   = errors.New("content rejected")
	ErrAmountOutOfBounds = errors.New("payment amount out of bounds")
	ErrRequestInProgress = errors.New("request already in progress")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "ERR_NOT_FOUND", message, ErrNotFound)
}

func BadRequest(code, message string) *AppError {
	return NewAppError(http.StatusBadRequest, code, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "ERR_UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "ERR_FORBIDDEN", message, ErrForbidden)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "ERR_INTERNAL", "internal server error", err)
}

// PaymentError maps the authorization failure taxonomy to user-facing
// errors. Messages are specific enough to act on without leaking
// processor internals.
func PaymentError(err error) *AppError {
	switch {
	case errors.Is(err, ErrCardDeclined):
		return NewAppError(http.StatusPaymentRequired, "ERR_CARD_DECLINED",
			"Your card was declined. Please try a different payment method.", err)
	case errors.Is(err, ErrInsufficientFunds):
		return NewAppError(http.StatusPaymentRequired, "ERR_INSUFFICIENT_FUNDS",
			"Your card has insufficient funds.", err)
	case errors.Is(err, ErrInvalidPaymentMethod):
		return NewAppError(http.StatusBadRequest, "ERR_INVALID_PAYMENT_METHOD",
			"The selected payment method is invalid or does not belong to you.", err)
	case errors.Is(err, ErrProcessorUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "ERR_PROCESSOR_UNAVAILABLE",
			"Payments are temporarily unavailable. Please try again.", err)
	case errors.Is(err, ErrCommitFailed):
		// Accurate because compensation guarantees the refund.
		return NewAppError(http.StatusInternalServerError, "ERR_PAYMENT_NOT_COMPLETED",
			"Payment could not be completed. You have not been charged.", err)
	default:
		return InternalError(err)
	}
}
