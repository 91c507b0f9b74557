package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/utils"
)

// VerificationHandler handles HTTP requests for report verifications.
type VerificationHandler struct {
	service services.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(service services.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// SubmitVerificationRequest is the DTO for
// POST /api/v1/issues/:id/verifications.
type SubmitVerificationRequest struct {
	PhotoURL string  `json:"photoUrl" binding:"required"`
	Note     *string `json:"note,omitempty"`
	Lat      float64 `json:"lat" binding:"required"`
	Lng      float64 `json:"lng" binding:"required"`

	// Client-side spam heuristics, recorded for audit.
	ScreenshotSuspected bool     `json:"screenshotSuspected,omitempty"`
	DistanceKm          *float64 `json:"distanceKm,omitempty"`
	DistanceOverridden  bool     `json:"distanceOverridden,omitempty"`
}

// SubmitVerification handles POST /api/v1/issues/:id/verifications
// @Summary Verify an issue report
// @Description Records one verification by the signed-in user and promotes the report to verified once it has two.
// @Tags verifications
// @Accept json
// @Produce json
// @Param id path string true "Issue id"
// @Param verification body SubmitVerificationRequest true "Verification payload"
// @Success 201 {object} utils.SuccessResponse
// @Failure 401 {object} utils.APIErrorResponse
// @Failure 409 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /issues/{id}/verifications [post]
func (h *VerificationHandler) SubmitVerification(c *gin.Context) {
	var req SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	if err := utils.ValidateCoordinates(req.Lat, req.Lng); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	result, err := h.service.SubmitVerification(c.Request.Context(), services.SubmitVerificationInput{
		IssueID:             c.Param("id"),
		VerifierID:          auth.CallerID(c),
		SessionToken:        c.GetHeader(SessionTokenHeader),
		PhotoURL:            req.PhotoURL,
		Note:                req.Note,
		Lat:                 req.Lat,
		Lng:                 req.Lng,
		ScreenshotSuspected: req.ScreenshotSuspected,
		DistanceKm:          req.DistanceKm,
		DistanceOverridden:  req.DistanceOverridden,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, result, "Verification recorded")
}
