package handlers

import (
	"context"
	"net/http"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/interfaces/http/middleware"
	"fixer.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PayoutService interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (*entities.PayoutAccount, error)
	IssueOnboardingLink(ctx context.Context, userID uuid.UUID) (*entities.OnboardingLinkResponse, error)
}

// PayoutHandler handles payout account endpoints
type PayoutHandler struct {
	payoutUsecase PayoutService
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutUsecase PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutUsecase: payoutUsecase}
}

// GetAccount returns the worker's payout account status
// GET /api/v1/payouts/account
func (h *PayoutHandler) GetAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	account, err := h.payoutUsecase.GetAccount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"account": account})
}

// CreateOnboardingLink issues a fresh onboarding link for the worker
// POST /api/v1/payouts/onboarding-link
func (h *PayoutHandler) CreateOnboardingLink(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	link, err := h.payoutUsecase.IssueOnboardingLink(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, link)
}
