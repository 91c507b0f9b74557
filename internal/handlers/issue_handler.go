package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/models"
	"github.com/eco_report/internal/repositories"
	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/utils"
)

// IssueHandler handles HTTP requests for issue reports.
type IssueHandler struct {
	service services.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(service services.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

// CreateIssueRequest is the DTO for POST /api/v1/issues.
type CreateIssueRequest struct {
	Lat       float64  `json:"lat" binding:"required"`
	Lng       float64  `json:"lng" binding:"required"`
	Address   *string  `json:"address,omitempty"`
	Category  string   `json:"category" binding:"required,oneof=waste drainage"`
	Severity  string   `json:"severity" binding:"required,oneof=low medium high"`
	Note      string   `json:"note" binding:"required"`
	PhotoURLs []string `json:"photoUrls" binding:"required,min=1,max=5"`
}

// FlagIssueRequest is the DTO for POST /api/v1/issues/:id/flag.
type FlagIssueRequest struct {
	Reason string `json:"reason" binding:"required,max=255"`
}

// UpdateStatusRequest is the DTO for PATCH /api/v1/issues/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=in_progress resolved"`
}

// CreateIssue handles POST /api/v1/issues
// @Summary Submit a new environmental issue report
// @Tags issues
// @Accept json
// @Produce json
// @Param issue body CreateIssueRequest true "Report payload"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Router /issues [post]
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	issue, err := h.service.CreateIssue(c.Request.Context(), services.CreateIssueInput{
		Lat:          req.Lat,
		Lng:          req.Lng,
		Address:      req.Address,
		Category:     models.IssueCategory(req.Category),
		Severity:     models.IssueSeverity(req.Severity),
		Note:         req.Note,
		PhotoURLs:    req.PhotoURLs,
		ActorID:      auth.CallerID(c),
		SessionToken: c.GetHeader(SessionTokenHeader),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, issue, "Report submitted")
}

// GetIssue handles GET /api/v1/issues/:id
// @Summary Get one issue report
// @Tags issues
// @Produce json
// @Param id path string true "Issue id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.APIErrorResponse
// @Router /issues/{id} [get]
func (h *IssueHandler) GetIssue(c *gin.Context) {
	issue, err := h.service.GetIssue(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, issue, "")
}

// ListIssues handles GET /api/v1/issues
// @Summary List issue reports for the map and feed
// @Tags issues
// @Produce json
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Param minLat query number false "Bounding box south edge"
// @Param maxLat query number false "Bounding box north edge"
// @Param minLng query number false "Bounding box west edge"
// @Param maxLng query number false "Bounding box east edge"
// @Param limit query int false "Page size (max 200)"
// @Param offset query int false "Page offset"
// @Success 200 {object} utils.SuccessResponse
// @Router /issues [get]
func (h *IssueHandler) ListIssues(c *gin.Context) {
	filter := repositories.IssueFilter{
		Status:   models.IssueStatus(c.Query("status")),
		Category: models.IssueCategory(c.Query("category")),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bounds := []string{c.Query("minLat"), c.Query("maxLat"), c.Query("minLng"), c.Query("maxLng")}
	if bounds[0] != "" && bounds[1] != "" && bounds[2] != "" && bounds[3] != "" {
		vals := make([]float64, 4)
		for i, raw := range bounds {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				utils.RespondValidationError(c, "bounding box values must be numbers")
				return
			}
			vals[i] = v
		}
		filter.HasBounds = true
		filter.MinLat, filter.MaxLat, filter.MinLng, filter.MaxLng = vals[0], vals[1], vals[2], vals[3]
	}

	issues, err := h.service.ListIssues(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, issues, "")
}

// FlagIssue handles POST /api/v1/issues/:id/flag
// @Summary Flag an issue for moderation review
// @Tags issues
// @Accept json
// @Produce json
// @Param id path string true "Issue id"
// @Param flag body FlagIssueRequest true "Flag reason"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /issues/{id}/flag [post]
func (h *IssueHandler) FlagIssue(c *gin.Context) {
	var req FlagIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	if err := h.service.FlagIssue(c.Request.Context(), auth.CallerRole(c), c.Param("id"), req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "Issue flagged")
}

// UpdateStatus handles PATCH /api/v1/issues/:id/status
// @Summary Apply a moderation status transition
// @Tags issues
// @Accept json
// @Produce json
// @Param id path string true "Issue id"
// @Param status body UpdateStatusRequest true "Target status"
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /issues/{id}/status [patch]
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	err := h.service.UpdateIssueStatus(c.Request.Context(), auth.CallerRole(c), c.Param("id"), models.IssueStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "Status updated")
}
