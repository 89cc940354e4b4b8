package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/interfaces/http/response"
	"fixer.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookService interface {
	HandleEvent(ctx context.Context, event *entities.ProcessorEvent) error
}

// WebhookHandler handles processor webhook endpoints
type WebhookHandler struct {
	webhookUsecase WebhookService
	secret         string
	tolerance      time.Duration
	now            func() time.Time
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase WebhookService, secret string, tolerance time.Duration) *WebhookHandler {
	if tolerance <= 0 {
		tolerance = processor.DefaultSignatureTolerance
	}
	return &WebhookHandler{
		webhookUsecase: webhookUsecase,
		secret:         secret,
		tolerance:      tolerance,
		now:            time.Now,
	}
}

// HandleProcessorWebhook handles incoming events from the payment processor
// POST /api/v1/webhooks/processor
func (h *WebhookHandler) HandleProcessorWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "ERR_INVALID_PAYLOAD", "unreadable body")
		return
	}

	// Signature verification runs on the raw bytes before any parsing.
	sig := c.GetHeader(processor.SignatureHeader)
	if err := processor.VerifySignature(h.secret, sig, payload, h.tolerance, h.now()); err != nil {
		logger.Warn(c.Request.Context(), "webhook signature rejected", zap.Error(err))
		response.ErrorWithStatus(c, http.StatusUnauthorized, "ERR_INVALID_SIGNATURE", "invalid signature")
		return
	}

	var event struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		CreatedAt int64           `json:"created"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil || event.ID == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "ERR_INVALID_PAYLOAD", "malformed event")
		return
	}

	err = h.webhookUsecase.HandleEvent(c.Request.Context(), &entities.ProcessorEvent{
		ID:        event.ID,
		Type:      entities.ProcessorEventType(event.Type),
		CreatedAt: time.Unix(event.CreatedAt, 0),
		Data:      event.Data,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnknownEventType) {
			response.ErrorWithStatus(c, http.StatusBadRequest, "ERR_UNKNOWN_EVENT", "unknown event type")
			return
		}
		var appErr *domainerrors.AppError
		if errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError {
			response.Error(c, appErr)
			return
		}
		// 5xx tells the processor to redeliver; the event ledger makes
		// the retry safe.
		logger.Error(c.Request.Context(), "webhook processing failed",
			zap.String("event_id", event.ID), zap.Error(err))
		response.ErrorWithStatus(c, http.StatusInternalServerError, "ERR_INTERNAL", "failed to process event")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
