// Package storage wraps Google Cloud Storage behind the small object-store
// surface the services need: append-only writes with public URL issuance,
// URL-to-object resolution and deletion.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const publicURLPrefix = "https://storage.googleapis.com"

var (
	// ErrInvalidReference means a URL could not be resolved back to an
	// object in the given bucket.
	ErrInvalidReference = errors.New("not a storage URL for this bucket")
	// ErrObjectExists means the no-overwrite precondition rejected a write.
	ErrObjectExists = errors.New("object already exists")
)

// ObjectStore is the storage dependency of the photo services. Writes are
// append-only: overwriting an existing object is never permitted.
type ObjectStore interface {
	Write(ctx context.Context, bucket, object string, data []byte, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, bucket, object string) error
}

// GCSStore implements ObjectStore on Google Cloud Storage.
type GCSStore struct {
	client *gcs.Client
}

// NewGCSStore connects to Google Cloud Storage. When credentialsFile is
// empty, the client falls back to application default credentials.
func NewGCSStore(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Google Cloud Storage: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// VerifyBucket checks that the bucket exists and is reachable. Called once at
// startup so a misconfigured bucket fails fast instead of on first upload.
func (s *GCSStore) VerifyBucket(ctx context.Context, bucket string) error {
	if _, err := s.client.Bucket(bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s is not accessible: %w", bucket, err)
	}
	return nil
}

// Write stores data at bucket/object with a DoesNotExist precondition and
// returns the public URL. Two concurrent uploads can never silently clobber
// each other: the loser gets ErrObjectExists.
func (s *GCSStore) Write(ctx context.Context, bucket, object string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(bucket).Object(object).
		If(gcs.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		// The DoesNotExist precondition surfaces here as a 412 on Close.
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%w: %s", ErrObjectExists, object)
		}
		return "", fmt.Errorf("failed to finalize object %s: %w", object, err)
	}
	return PublicURL(bucket, object), nil
}

// Delete removes the object at bucket/object.
func (s *GCSStore) Delete(ctx context.Context, bucket, object string) error {
	if err := s.client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", object, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// PublicURL returns the public URL issued for an object.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("%s/%s/%s", publicURLPrefix, bucket, object)
}

// ResolveObjectPath maps a previously issued public URL back to its object
// path within bucket. Malformed or foreign URLs yield ErrInvalidReference.
func ResolveObjectPath(bucket, publicURL string) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", publicURLPrefix, bucket)
	if !strings.HasPrefix(publicURL, prefix) {
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, publicURL)
	}
	object := strings.TrimPrefix(publicURL, prefix)
	if object == "" || strings.Contains(object, "://") {
		return "", fmt.Errorf("%w: %s", ErrInvalidReference, publicURL)
	}
	return object, nil
}
