package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nosmoke-app/backend/pkg/config"
)

func testUploadConfig() *config.UploadConfig {
	return &config.UploadConfig{
		MaxFileSize:  10 * 1024 * 1024,
		MinFileSize:  1024,
		AllowedTypes: []string{"image/jpeg", "image/png"},
	}
}

// makeJPEG encodes a width x height gradient image as JPEG
func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodeImage(t, width, height, "jpeg")
}

// makePNG encodes a width x height gradient image as PNG
func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	return encodeImage(t, width, height, "png")
}

func encodeImage(t *testing.T, width, height int, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "png":
		err = png.Encode(&buf, img)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func TestValidatorBasic(t *testing.T) {
	validator := NewValidator(testUploadConfig())

	tests := []struct {
		name        string
		size        int64
		contentType string
		wantCode    string
		wantStatus  int
	}{
		{
			name:        "valid jpeg",
			size:        2048,
			contentType: "image/jpeg",
		},
		{
			name:        "valid png",
			size:        5 * 1024 * 1024,
			contentType: "image/png",
		},
		{
			name:        "too large",
			size:        10*1024*1024 + 1,
			contentType: "image/jpeg",
			wantCode:    "FILE_TOO_LARGE",
			wantStatus:  413,
		},
		{
			name:        "too small",
			size:        5,
			contentType: "image/png",
			wantCode:    "FILE_TOO_SMALL",
			wantStatus:  400,
		},
		{
			name:        "disallowed type",
			size:        2048,
			contentType: "image/gif",
			wantCode:    "INVALID_FILE_TYPE",
			wantStatus:  400,
		},
		{
			name:        "non-image type",
			size:        2048,
			contentType: "text/plain",
			wantCode:    "INVALID_FILE_TYPE",
			wantStatus:  400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Basic(tt.size, tt.contentType)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			appErr := requireAppError(t, err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.Status)
		})
	}
}

func TestValidatorContentJPEG(t *testing.T) {
	validator := NewValidator(testUploadConfig())

	dims, err := validator.Content(makeJPEG(t, 640, 480))
	require.NoError(t, err)
	assert.Equal(t, 640, dims.Width)
	assert.Equal(t, 480, dims.Height)
	assert.Equal(t, "JPEG", dims.Format)
}

func TestValidatorContentPNG(t *testing.T) {
	validator := NewValidator(testUploadConfig())

	dims, err := validator.Content(makePNG(t, 320, 200))
	require.NoError(t, err)
	assert.Equal(t, 320, dims.Width)
	assert.Equal(t, 200, dims.Height)
	assert.Equal(t, "PNG", dims.Format)
}

func TestValidatorContentRejectsMislabeledText(t *testing.T) {
	validator := NewValidator(testUploadConfig())

	// a text file renamed to .jpg: the sniffed type disagrees
	_, err := validator.Content([]byte("this is definitely not an image, just plain text content"))
	appErr := requireAppError(t, err)
	assert.Equal(t, "INVALID_FILE_TYPE", appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestValidatorContentRejectsCorruptImage(t *testing.T) {
	validator := NewValidator(testUploadConfig())

	// valid JPEG magic bytes followed by garbage: the sniff passes but the
	// decoder must reject it
	corrupt := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x00}, 64)...)
	_, err := validator.Content(corrupt)
	appErr := requireAppError(t, err)
	assert.Equal(t, "INVALID_FILE_TYPE", appErr.Code)
}
