package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/utils"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	service services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateProfileRequest is the DTO for PATCH /api/v1/me. Omitted fields
// are left unchanged.
type UpdateProfileRequest struct {
	Username             *string `json:"username,omitempty" binding:"omitempty,max=100"`
	AvatarURL            *string `json:"avatarUrl,omitempty" binding:"omitempty,max=512"`
	Bio                  *string `json:"bio,omitempty"`
	Location             *string `json:"location,omitempty" binding:"omitempty,max=255"`
	Email                *string `json:"email,omitempty"`
	ProfileVisible       *bool   `json:"profileVisible,omitempty"`
	NotifyVerified       *bool   `json:"notifyVerified,omitempty"`
	NotifyActionCards    *bool   `json:"notifyActionCards,omitempty"`
	NotifyMonthlySummary *bool   `json:"notifyMonthlySummary,omitempty"`
}

// GetMe handles GET /api/v1/me
// @Summary Get the signed-in user's profile
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	callerID := auth.CallerID(c)
	user, err := h.service.GetProfile(c.Request.Context(), callerID, auth.CallerRole(c), callerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, user, "")
}

// UpdateMe handles PATCH /api/v1/me
// @Summary Update the signed-in user's profile and notification preferences
// @Tags users
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Fields to update"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /me [patch]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), auth.CallerID(c), services.UpdateProfileInput{
		Username:             req.Username,
		AvatarURL:            req.AvatarURL,
		Bio:                  req.Bio,
		Location:             req.Location,
		Email:                req.Email,
		ProfileVisible:       req.ProfileVisible,
		NotifyVerified:       req.NotifyVerified,
		NotifyActionCards:    req.NotifyActionCards,
		NotifyMonthlySummary: req.NotifyMonthlySummary,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, user, "Profile updated")
}

// GetUser handles GET /api/v1/users/:id
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} utils.SuccessResponse
// @Failure 404 {object} utils.APIErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetProfile(c.Request.Context(), auth.CallerID(c), auth.CallerRole(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, user, "")
}
