package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/imageproc"
	"github.com/eco_report/pkg/utils"
)

// SessionTokenHeader carries the anonymous client session token. The token
// is an opaque value generated and persisted by the client; the server makes
// no assumptions about its shape or lifetime.
const SessionTokenHeader = "X-Session-Token"

// respondServiceError maps service-layer sentinel errors onto HTTP responses.
// The copy for processing failures is deliberately generic: it must never
// reveal that retained photo metadata was the reason.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAuthenticationRequired):
		utils.RespondUnauthorizedError(c, "Sign in to verify reports")
	case errors.Is(err, services.ErrIssueNotFound):
		utils.RespondNotFoundError(c, "Issue")
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondNotFoundError(c, "User")
	case errors.Is(err, services.ErrSelfVerification):
		utils.RespondConflictError(c, "You cannot verify your own report")
	case errors.Is(err, services.ErrAlreadyVerified):
		utils.RespondConflictError(c, "You have already verified this report")
	case errors.Is(err, services.ErrNotVerifiable):
		utils.RespondConflictError(c, "This report no longer accepts verifications")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondAPIError(c, http.StatusForbidden, "Insufficient permissions", nil)
	case errors.Is(err, services.ErrInvalidIssueInput),
		errors.Is(err, services.ErrInvalidProfileInput),
		errors.Is(err, services.ErrBioTooLong),
		errors.Is(err, services.ErrInvalidStatusTransition):
		utils.RespondValidationError(c, err.Error())
	case errors.Is(err, imageproc.ErrUnsupportedMediaType):
		utils.RespondAPIError(c, http.StatusUnsupportedMediaType, "Unsupported image type", nil)
	case errors.Is(err, imageproc.ErrPayloadTooLarge):
		utils.RespondAPIError(c, http.StatusRequestEntityTooLarge, "Image exceeds the 10 MiB limit", nil)
	case errors.Is(err, imageproc.ErrTooManyFiles):
		utils.RespondAPIError(c, http.StatusBadRequest, "At most 5 photos per upload", nil)
	case errors.Is(err, imageproc.ErrProcessingFailed):
		utils.RespondAPIError(c, http.StatusUnprocessableEntity, "Photo processing failed, please try again", nil)
	case errors.Is(err, services.ErrInvalidReference):
		utils.RespondAPIError(c, http.StatusBadRequest, "Unrecognized photo URL", nil)
	case errors.Is(err, services.ErrStorageWriteFailed):
		utils.RespondAPIError(c, http.StatusBadGateway, "Could not store the photo, please try again", nil)
	default:
		utils.RespondInternalServerError(c, "Something went wrong, please try again")
	}
}
