package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/interfaces/http/handlers"
	"fixer.backend/internal/interfaces/http/middleware"
	"fixer.backend/pkg/utils"
)

type stubJobService struct {
	postInput *entities.PostJobInput
	postResp  *entities.PostJobResponse
	postErr   error
	job       *entities.Job
	jobErr    error
}

func (s *stubJobService) PostJob(_ context.Context, _ uuid.UUID, input *entities.PostJobInput) (*entities.PostJobResponse, error) {
	s.postInput = input
	return s.postResp, s.postErr
}

func (s *stubJobService) GetJob(_ context.Context, _ uuid.UUID) (*entities.Job, error) {
	return s.job, s.jobErr
}

func (s *stubJobService) ListJobsByPoster(_ context.Context, _ uuid.UUID, page, limit int) ([]*entities.Job, utils.PaginationMeta, error) {
	return nil, utils.NewPaginationParams(page, limit).Meta(0), nil
}

func newJobRouter(svc *stubJobService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
		}
	}
	h := handlers.NewJobHandler(svc)
	r.POST("/jobs", auth, h.PostJob)
	r.GET("/jobs/:id", auth, h.GetJob)
	r.GET("/jobs", auth, h.ListMyJobs)
	return r
}

func TestPostJob_PassesIdempotencyKeyFromHeader(t *testing.T) {
	job := &entities.Job{ID: uuid.New(), Status: entities.JobStatusOpen}
	svc := &stubJobService{postResp: &entities.PostJobResponse{Job: job, Payment: &entities.Payment{}}}
	r := newJobRouter(svc, uuid.New())

	body := []byte(`{"title":"Fix sink","description":"Leaky trap","paymentType":"fixed","paymentAmount":100,"paymentMethodId":"pm_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.IdempotencyHeader, "key-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.postInput)
	assert.Equal(t, "key-1", svc.postInput.IdempotencyKey)
}

func TestPostJob_InvalidBody(t *testing.T) {
	svc := &stubJobService{}
	r := newJobRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader([]byte(`{"title":""}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_INPUT")
	assert.Nil(t, svc.postInput)
}

func TestPostJob_PaymentErrorPassthrough(t *testing.T) {
	svc := &stubJobService{postErr: domainerrors.PaymentError(domainerrors.ErrCardDeclined)}
	r := newJobRouter(svc, uuid.New())

	body := []byte(`{"title":"Fix sink","description":"Leaky trap","paymentType":"fixed","paymentAmount":100,"paymentMethodId":"pm_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_CARD_DECLINED")
}

func TestGetJob_HidesPlaceholderFromOthers(t *testing.T) {
	posterID := uuid.New()
	job := &entities.Job{
		ID:       uuid.New(),
		PosterID: posterID,
		Status:   entities.JobStatusPendingPayment,
	}

	// A stranger sees nothing.
	svc := &stubJobService{job: job}
	r := newJobRouter(svc, uuid.New())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID.String(), nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	// The poster sees their own placeholder.
	r = newJobRouter(svc, posterID)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGetJob_BadID(t *testing.T) {
	r := newJobRouter(&stubJobService{}, uuid.New())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetJob_NotFound(t *testing.T) {
	svc := &stubJobService{jobErr: domainerrors.ErrNotFound}
	r := newJobRouter(svc, uuid.New())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMyJobs_RequiresAuth(t *testing.T) {
	r := newJobRouter(&stubJobService{}, uuid.Nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
