package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
	"fixer.backend/internal/domain/repositories"
	"fixer.backend/internal/interfaces/http/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes the manual intervention queue to support tooling
type AdminHandler struct {
	interventionRepo repositories.ManualInterventionRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(interventionRepo repositories.ManualInterventionRepository) *AdminHandler {
	return &AdminHandler{interventionRepo: interventionRepo}
}

// ListInterventions lists unresolved manual interventions, oldest first
// GET /api/v1/admin/interventions
func (h *AdminHandler) ListInterventions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	items, total, err := h.interventionRepo.ListUnresolved(c.Request.Context(), limit, (page-1)*limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		items = []*entities.ManualIntervention{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"interventions": items,
		"total":         total,
	})
}

// ResolveIntervention marks an intervention handled
// POST /api/v1/admin/interventions/:id/resolve
func (h *AdminHandler) ResolveIntervention(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("ERR_INVALID_INPUT", "Invalid intervention ID"))
		return
	}

	if err := h.interventionRepo.Resolve(c.Request.Context(), id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("Intervention not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"resolved": true})
}
