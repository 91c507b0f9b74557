package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/eco_report/pkg/imageproc"
	"github.com/eco_report/pkg/storage"
)

var (
	ErrStorageWriteFailed = errors.New("failed to store the processed photo")
	ErrInvalidReference   = errors.New("the photo URL does not belong to this storage")
)

// PhotoUpload is one file of a multi-file upload.
type PhotoUpload struct {
	FileName     string
	Data         []byte
	DeclaredType string
}

// PhotoUploadResult is the per-file outcome of a multi-file upload. Partial
// failure is reported per file; the caller decides whether to proceed with a
// subset.
type PhotoUploadResult struct {
	FileName string
	URL      string
	Err      error
}

// PhotoService runs the ingestion pipeline and talks to object storage.
type PhotoService interface {
	UploadPhoto(ctx context.Context, data []byte, declaredType, ownerID string) (string, error)
	UploadPhotos(ctx context.Context, uploads []PhotoUpload, ownerID string) ([]PhotoUploadResult, error)
	DeletePhoto(ctx context.Context, publicURL string) error
}

type photoService struct {
	store  storage.ObjectStore
	bucket string
}

// NewPhotoService wires the photo service to an object store and bucket.
func NewPhotoService(store storage.ObjectStore, bucket string) PhotoService {
	return &photoService{store: store, bucket: bucket}
}

// UploadPhoto processes one image through the privacy pipeline and persists
// the result, returning its public URL. The object path is namespaced by
// owner (or "anonymous"), a millisecond timestamp and a short random suffix.
func (s *photoService) UploadPhoto(ctx context.Context, data []byte, declaredType, ownerID string) (string, error) {
	processed, err := imageproc.Process(data, declaredType)
	if err != nil {
		return "", err
	}

	owner := ownerID
	if owner == "" {
		owner = "anonymous"
	}
	object := fmt.Sprintf("%s/%d-%s.jpg", owner, time.Now().UnixMilli(), uuid.NewString()[:8])

	url, err := s.store.Write(ctx, s.bucket, object, processed, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}
	return url, nil
}

// UploadPhotos processes 1 to imageproc.MaxFilesPerUpload files
// independently, reporting success or failure per file.
func (s *photoService) UploadPhotos(ctx context.Context, uploads []PhotoUpload, ownerID string) ([]PhotoUploadResult, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files provided", imageproc.ErrProcessingFailed)
	}
	if len(uploads) > imageproc.MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: %d files (max %d)", imageproc.ErrTooManyFiles, len(uploads), imageproc.MaxFilesPerUpload)
	}

	results := make([]PhotoUploadResult, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.UploadPhoto(ctx, upload.Data, upload.DeclaredType, ownerID)
		results = append(results, PhotoUploadResult{
			FileName: upload.FileName,
			URL:      url,
			Err:      err,
		})
	}
	return results, nil
}

// DeletePhoto resolves a previously issued public URL back to its object and
// removes it.
func (s *photoService) DeletePhoto(ctx context.Context, publicURL string) error {
	object, err := storage.ResolveObjectPath(s.bucket, publicURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	if err := s.store.Delete(ctx, s.bucket, object); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}
	return nil
}
