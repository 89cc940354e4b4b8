package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/infrastructure/processor"
	"fixer.backend/internal/interfaces/http/handlers"
)

type stubWebhookService struct {
	got *entities.ProcessorEvent
	err error
}

func (s *stubWebhookService) HandleEvent(_ context.Context, event *entities.ProcessorEvent) error {
	s.got = event
	return s.err
}

func postWebhook(t *testing.T, h *handlers.WebhookHandler, body []byte, sig string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhooks/processor", h.HandleProcessorWebhook)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/processor", bytes.NewReader(body))
	if sig != "" {
		req.Header.Set(processor.SignatureHeader, sig)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHandleProcessorWebhook_Accepts(t *testing.T) {
	svc := &stubWebhookService{}
	h := handlers.NewWebhookHandler(svc, "whsec_test", 5*time.Minute)

	body := []byte(`{"id":"evt_1","type":"payment.succeeded","created":1756100000,"data":{"chargeId":"ch_1"}}`)
	sig := processor.ComputeSignature("whsec_test", time.Now(), body)

	w := postWebhook(t, h, body, sig)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, "evt_1", svc.got.ID)
	assert.Equal(t, entities.EventPaymentSucceeded, svc.got.Type)
	assert.Equal(t, int64(1756100000), svc.got.CreatedAt.Unix())
}

func TestHandleProcessorWebhook_RejectsBadSignature(t *testing.T) {
	svc := &stubWebhookService{}
	h := handlers.NewWebhookHandler(svc, "whsec_test", 5*time.Minute)

	body := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)

	w := postWebhook(t, h, body, "t=123,v1=bad")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_SIGNATURE")
	assert.Nil(t, svc.got, "unverified events must never reach the usecase")

	w = postWebhook(t, h, body, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleProcessorWebhook_MalformedEvent(t *testing.T) {
	svc := &stubWebhookService{}
	h := handlers.NewWebhookHandler(svc, "whsec_test", 5*time.Minute)

	body := []byte(`{"type":"payment.succeeded"}`) // no id
	sig := processor.ComputeSignature("whsec_test", time.Now(), body)

	w := postWebhook(t, h, body, sig)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_PAYLOAD")
}

func TestHandleProcessorWebhook_UnknownEventType(t *testing.T) {
	svc := &stubWebhookService{err: domainerrors.ErrUnknownEventType}
	h := handlers.NewWebhookHandler(svc, "whsec_test", 5*time.Minute)

	body := []byte(`{"id":"evt_1","type":"payout.created"}`)
	sig := processor.ComputeSignature("whsec_test", time.Now(), body)

	w := postWebhook(t, h, body, sig)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_UNKNOWN_EVENT")
}

func TestHandleProcessorWebhook_InternalErrorTriggersRedelivery(t *testing.T) {
	svc := &stubWebhookService{err: errors.New("db down")}
	h := handlers.NewWebhookHandler(svc, "whsec_test", 5*time.Minute)

	body := []byte(`{"id":"evt_1","type":"payment.succeeded","data":{"chargeId":"ch_1"}}`)
	sig := processor.ComputeSignature("whsec_test", time.Now(), body)

	w := postWebhook(t, h, body, sig)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
