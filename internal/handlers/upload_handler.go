package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eco_report/internal/auth"
	"github.com/eco_report/internal/services"
	"github.com/eco_report/pkg/imageproc"
	"github.com/eco_report/pkg/utils"
)

// UploadHandler handles photo uploads and deletions.
type UploadHandler struct {
	service services.PhotoService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(service services.PhotoService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadedPhoto is the per-file entry in the upload response.
type UploadedPhoto struct {
	FileName string `json:"fileName"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DeletePhotoRequest is the DTO for DELETE /api/v1/uploads.
type DeletePhotoRequest struct {
	URL string `json:"url" binding:"required"`
}

// UploadPhotos handles POST /api/v1/uploads
// @Summary Upload 1-5 photos
// @Description Each photo is re-encoded with all metadata stripped before being stored. Files are processed independently; per-file failures are reported in the response.
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param photos formData file true "Photo files (repeatable, max 5)"
// @Success 201 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Failure 413 {object} utils.APIErrorResponse
// @Failure 415 {object} utils.APIErrorResponse
// @Router /uploads [post]
func (h *UploadHandler) UploadPhotos(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.RespondValidationError(c, "multipart form expected")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		utils.RespondValidationError(c, "at least one photo is required")
		return
	}
	if len(files) > imageproc.MaxFilesPerUpload {
		respondServiceError(c, imageproc.ErrTooManyFiles)
		return
	}

	uploads := make([]services.PhotoUpload, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			utils.RespondValidationError(c, "could not read uploaded file "+fileHeader.Filename)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, imageproc.MaxUploadBytes+1))
		file.Close()
		if err != nil {
			utils.RespondValidationError(c, "could not read uploaded file "+fileHeader.Filename)
			return
		}
		uploads = append(uploads, services.PhotoUpload{
			FileName:     fileHeader.Filename,
			Data:         data,
			DeclaredType: fileHeader.Header.Get("Content-Type"),
		})
	}

	results, err := h.service.UploadPhotos(c.Request.Context(), uploads, auth.CallerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := make([]UploadedPhoto, 0, len(results))
	allFailed := true
	for _, result := range results {
		entry := UploadedPhoto{FileName: result.FileName, URL: result.URL}
		if result.Err != nil {
			entry.Error = uploadErrorMessage(result.Err)
		} else {
			allFailed = false
		}
		response = append(response, entry)
	}

	status := http.StatusCreated
	if allFailed {
		status = http.StatusUnprocessableEntity
	}
	utils.RespondSuccess(c, status, response, "")
}

// DeletePhoto handles DELETE /api/v1/uploads
// @Summary Delete a previously uploaded photo by its public URL
// @Tags uploads
// @Accept json
// @Produce json
// @Param photo body DeletePhotoRequest true "Photo URL"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.APIErrorResponse
// @Security BearerAuth
// @Router /uploads [delete]
func (h *UploadHandler) DeletePhoto(c *gin.Context) {
	var req DeletePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	if err := h.service.DeletePhoto(c.Request.Context(), req.URL); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, nil, "Photo deleted")
}

// uploadErrorMessage maps a per-file pipeline error to user-facing copy.
// Processing failures stay generic on purpose.
func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, imageproc.ErrUnsupportedMediaType):
		return "unsupported image type"
	case errors.Is(err, imageproc.ErrPayloadTooLarge):
		return "image exceeds the 10 MiB limit"
	case errors.Is(err, services.ErrStorageWriteFailed):
		return "could not store the photo, please try again"
	default:
		return "photo processing failed, please try again"
	}
}
