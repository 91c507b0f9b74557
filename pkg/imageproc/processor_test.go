package imageproc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// makeJPEG encodes a small gradient so the JPEG is non-trivial but cheap.
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y += 4 {
		for x := 0; x < width; x += 4 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding fixture jpeg: %v", err)
	}
	return buf.Bytes()
}

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding fixture png: %v", err)
	}
	return buf.Bytes()
}

// withEXIF splices a minimal valid EXIF APP1 segment (a one-entry TIFF with
// Orientation = 1) into a JPEG right after the SOI marker, the way cameras
// write it.
func withEXIF(t *testing.T, jpegData []byte) []byte {
	t.Helper()
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != 0xD8 {
		t.Fatal("fixture is not a JPEG")
	}
	tiff := []byte{
		'I', 'I', 0x2A, 0x00, // little-endian TIFF header
		0x08, 0x00, 0x00, 0x00, // IFD0 at offset 8
		0x01, 0x00, // one entry
		0x12, 0x01, 0x03, 0x00, // Orientation, SHORT
		0x01, 0x00, 0x00, 0x00, // count 1
		0x01, 0x00, 0x00, 0x00, // value 1 (upright)
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	segLen := len(payload) + 2
	segment := append([]byte{0xFF, 0xE1, byte(segLen >> 8), byte(segLen & 0xFF)}, payload...)

	out := make([]byte, 0, len(jpegData)+len(segment))
	out = append(out, jpegData[:2]...)
	out = append(out, segment...)
	out = append(out, jpegData[2:]...)
	return out
}

func TestAcceptedType(t *testing.T) {
	tests := []struct {
		declared string
		want     bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/webp", true},
		{"image/heic", true},
		{"IMAGE/JPEG", true},
		{" image/png ", true},
		{"image/gif", false},
		{"image/svg+xml", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := AcceptedType(tt.declared); got != tt.want {
			t.Errorf("AcceptedType(%q) = %v, want %v", tt.declared, got, tt.want)
		}
	}
}

func TestProcessRejectsUnsupportedType(t *testing.T) {
	_, err := Process(makeJPEG(t, 10, 10), "image/gif")
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("expected ErrUnsupportedMediaType, got %v", err)
	}
}

func TestProcessRejectsOversizedPayloadBeforeDecoding(t *testing.T) {
	// Garbage bytes: the size ceiling must trip before any decode attempt.
	data := make([]byte, MaxUploadBytes+1)
	_, err := Process(data, "image/jpeg")
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestProcessRejectsCorruptImage(t *testing.T) {
	_, err := Process([]byte("definitely not pixels"), "image/jpeg")
	if !errors.Is(err, ErrProcessingFailed) {
		t.Fatalf("expected ErrProcessingFailed, got %v", err)
	}
}

func TestProcessStripsEXIFAndDownscales(t *testing.T) {
	input := withEXIF(t, makeJPEG(t, 3000, 2000))
	if !HasEXIF(input) {
		t.Fatal("fixture must carry EXIF for the test to mean anything")
	}

	out, err := Process(input, "image/jpeg")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if HasEXIF(out) {
		t.Error("output still contains an EXIF block")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output, got %s", format)
	}
	// 3000x2000 fit into 1920x1080 is height-limited: 1620x1080.
	if cfg.Width != 1620 || cfg.Height != 1080 {
		t.Errorf("expected 1620x1080 output, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessNeverUpscales(t *testing.T) {
	out, err := Process(makeJPEG(t, 800, 600), "image/jpeg")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Errorf("expected dimensions preserved at 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestProcessReencodesPNGAsJPEG(t *testing.T) {
	out, err := Process(makePNG(t, 100, 100), "image/png")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("expected jpeg output for png input, got %s", format)
	}
}

func TestHasEXIF(t *testing.T) {
	plain := makeJPEG(t, 10, 10)
	if HasEXIF(plain) {
		t.Error("plain encoder output should carry no EXIF")
	}
	if !HasEXIF(withEXIF(t, plain)) {
		t.Error("spliced EXIF block was not detected")
	}
}
