// Package imageproc implements the photo ingestion pipeline: every
// user-supplied image is validated, decoded, re-oriented, bounded in size and
// re-encoded as a clean JPEG before it may reach object storage. Re-encoding
// through a pixel buffer discards all embedded metadata (EXIF, ICC, XMP); a
// final re-parse of the output enforces that no EXIF block survived.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	_ "golang.org/x/image/webp" // register WebP with image.Decode
)

const (
	// MaxUploadBytes is the input size ceiling, checked before any decoding.
	MaxUploadBytes = 10 << 20

	// MaxWidth and MaxHeight bound the output dimensions. Images are scaled
	// down to fit, preserving aspect ratio, and never scaled up.
	MaxWidth  = 1920
	MaxHeight = 1080

	// OutputJPEGQuality is the re-encode quality.
	OutputJPEGQuality = 85

	// MaxFilesPerUpload bounds the multi-file upload variant.
	MaxFilesPerUpload = 5
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("file exceeds the maximum upload size")
	ErrTooManyFiles         = errors.New("too many files in one upload")
	// ErrProcessingFailed covers decode failures, encode failures and the
	// EXIF gate alike. The wording is deliberately generic: user-facing copy
	// must never reveal that retained GPS metadata was the reason.
	ErrProcessingFailed = errors.New("image processing failed")
)

// acceptedTypes is the exact MIME allowlist.
var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// AcceptedType reports whether the declared MIME type is allowed.
func AcceptedType(declaredType string) bool {
	return acceptedTypes[strings.ToLower(strings.TrimSpace(declaredType))]
}

// Process turns raw upload bytes into a privacy-safe, size-bounded JPEG.
// Steps, in order: MIME allowlist, size ceiling (before decoding), decode with
// orientation applied from metadata, downscale to fit MaxWidth x MaxHeight,
// JPEG re-encode at OutputJPEGQuality, and a zero-tolerance re-parse of the
// output that rejects the whole upload if any EXIF data remains.
//
// image/heic passes the allowlist but has no registered decoder, so HEIC
// uploads currently fail at the decode step with ErrProcessingFailed.
func Process(data []byte, declaredType string) ([]byte, error) {
	if !AcceptedType(declaredType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, declaredType)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	// AutoOrientation reads the EXIF orientation tag and physically rotates
	// the pixel data so the encoded output needs no orientation metadata.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProcessingFailed, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxWidth || bounds.Dy() > MaxHeight {
		img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(OutputJPEGQuality)); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", ErrProcessingFailed, err)
	}

	out := buf.Bytes()
	if HasEXIF(out) {
		// Fail closed: returning a file that kept metadata would defeat the
		// privacy guarantee the pipeline exists for.
		return nil, fmt.Errorf("%w: output retained metadata", ErrProcessingFailed)
	}
	return out, nil
}

// HasEXIF reports whether the image bytes contain a parseable EXIF block.
func HasEXIF(data []byte) bool {
	_, err := exif.Decode(bytes.NewReader(data))
	return err == nil
}
