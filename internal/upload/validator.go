package upload

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// register decoders for the allowed upload formats
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nosmoke-app/backend/pkg/config"
	"github.com/nosmoke-app/backend/pkg/types"
)

// Validator performs the two-phase file acceptance check. Basic runs before
// the request body is read; Content runs on the full byte buffer. The split
// keeps the expensive decode behind the cheap metadata checks.
type Validator struct {
	maxSize int64
	minSize int64
	allowed []string
}

// NewValidator creates a validator with the configured limits
func NewValidator(cfg *config.UploadConfig) *Validator {
	return &Validator{
		maxSize: cfg.MaxFileSize,
		minSize: cfg.MinFileSize,
		allowed: cfg.AllowedTypes,
	}
}

// Basic checks declared size and content type without touching the body
func (v *Validator) Basic(size int64, contentType string) error {
	if size > v.maxSize {
		return types.NewFileTooLarge(v.maxSize)
	}
	if size < v.minSize {
		return types.NewFileTooSmall()
	}
	if !v.typeAllowed(contentType) {
		return types.NewInvalidFileType("please select a JPEG or PNG file")
	}
	return nil
}

// Content sniffs the actual MIME type from the bytes and decodes the image
// header, rejecting mislabeled or corrupt uploads. Returns the pixel
// dimensions and the decoded format name.
func (v *Validator) Content(data []byte) (types.Dimensions, error) {
	detected := mimetype.Detect(data)
	if !v.sniffAllowed(detected) {
		return types.Dimensions{}, types.NewInvalidFileType(
			fmt.Sprintf("file content does not match an allowed type (detected: %s)", detected.String()))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.Dimensions{}, types.NewInvalidFileType("image file appears to be corrupt")
	}

	return types.Dimensions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: strings.ToUpper(format),
	}, nil
}

func (v *Validator) typeAllowed(contentType string) bool {
	for _, t := range v.allowed {
		if contentType == t {
			return true
		}
	}
	return false
}

func (v *Validator) sniffAllowed(detected *mimetype.MIME) bool {
	for _, t := range v.allowed {
		if detected.Is(t) {
			return true
		}
	}
	return false
}
