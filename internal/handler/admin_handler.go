package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bfcb/quizmerit-backend/internal/middleware"
	"github.com/bfcb/quizmerit-backend/internal/model"
	"github.com/bfcb/quizmerit-backend/internal/response"
	"github.com/bfcb/quizmerit-backend/internal/service"
	"github.com/bfcb/quizmerit-backend/internal/validator"
)

// AdminHandler handles the review surface: response grading, the merit
// list, the CSV export and the dashboard summary.
type AdminHandler struct {
	evaluationService *service.EvaluationService
	meritService      *service.MeritService
	dashboardService  *service.DashboardService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	evaluationService *service.EvaluationService,
	meritService *service.MeritService,
	dashboardService *service.DashboardService,
) *AdminHandler {
	return &AdminHandler{
		evaluationService: evaluationService,
		meritService:      meritService,
		dashboardService:  dashboardService,
	}
}

// ListResponses godoc
// GET /api/v1/admin/responses
// Returns every stored response with participant, question and grading
// context, newest first.
func (h *AdminHandler) ListResponses(c *gin.Context) {
	rows, err := h.evaluationService.ListReviewFeed(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"responses": rows})
}

// Evaluate godoc
// POST /api/v1/admin/evaluate
// Records the grading for one response. Re-grading overwrites.
func (h *AdminHandler) Evaluate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.EvaluateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	evaluation, err := h.evaluationService.Evaluate(c.Request.Context(), &req, claims.Username)
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"evaluation": evaluation})
}

// GetMeritList godoc
// GET /api/v1/admin/merit-list
// Returns the ranked merit list computed from graded responses.
func (h *AdminHandler) GetMeritList(c *gin.Context) {
	entries, err := h.meritService.ComputeMeritList(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if entries == nil {
		entries = []model.MeritEntry{}
	}

	response.Success(c, http.StatusOK, gin.H{"merit_list": entries})
}

// ExportMeritList godoc
// GET /api/v1/admin/merit-list/export
// Streams the merit list as a CSV attachment.
func (h *AdminHandler) ExportMeritList(c *gin.Context) {
	data, err := h.meritService.ExportCSV(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("merit-list-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// GetStats godoc
// GET /api/v1/admin/stats
// Returns the dashboard summary counts.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
