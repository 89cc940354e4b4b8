package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/interfaces/http/middleware"
	"fixer.backend/internal/interfaces/http/response"
	"fixer.backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type JobPostingService interface {
	PostJob(ctx context.Context, posterID uuid.UUID, input *entities.PostJobInput) (*entities.PostJobResponse, error)
	GetJob(ctx context.Context, id uuid.UUID) (*entities.Job, error)
	ListJobsByPoster(ctx context.Context, posterID uuid.UUID, page, limit int) ([]*entities.Job, utils.PaginationMeta, error)
}

// JobHandler handles job endpoints
type JobHandler struct {
	jobUsecase JobPostingService
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobUsecase JobPostingService) *JobHandler {
	return &JobHandler{jobUsecase: jobUsecase}
}

// PostJob posts a new job, charging the poster first
// POST /api/v1/jobs
func (h *JobHandler) PostJob(c *gin.Context) {
	var input entities.PostJobInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("ERR_INVALID_INPUT", err.Error()))
		return
	}
	input.IdempotencyKey = c.GetHeader(middleware.IdempotencyHeader)

	posterID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	resp, err := h.jobUsecase.PostJob(c.Request.Context(), posterID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

// GetJob gets a job by ID
// GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("ERR_INVALID_INPUT", "Invalid job ID"))
		return
	}

	job, err := h.jobUsecase.GetJob(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Job not found"))
			return
		}
		response.Error(c, err)
		return
	}

	// Placeholder and failed postings exist only for their poster.
	if !job.IsVisible() {
		userID, _ := middleware.GetUserID(c)
		if userID != job.PosterID {
			response.Error(c, domainerrors.NotFound("Job not found"))
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{"job": job})
}

// ListMyJobs lists the current poster's jobs in every status
// GET /api/v1/jobs
func (h *JobHandler) ListMyJobs(c *gin.Context) {
	posterID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	jobs, meta, err := h.jobUsecase.ListJobsByPoster(c.Request.Context(), posterID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"jobs":       jobs,
		"pagination": meta,
	})
}
