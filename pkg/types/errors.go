package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned to API clients
const (
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeFileTooSmall    = "FILE_TOO_SMALL"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError is a tagged error carrying a stable code and the HTTP status it
// maps to. Handlers translate it into the error envelope without inspecting
// the message text.
type AppError struct {
	Code    string
	Message string
	Status  int
	Details interface{}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AsAppError unwraps err into an *AppError if it carries one
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewFileTooLarge reports a declared size above the configured maximum
func NewFileTooLarge(maxBytes int64) *AppError {
	return &AppError{
		Code:    CodeFileTooLarge,
		Message: fmt.Sprintf("file is too large (maximum %dMB)", maxBytes/(1024*1024)),
		Status:  http.StatusRequestEntityTooLarge,
	}
}

// NewFileTooSmall reports a declared size below the configured minimum
func NewFileTooSmall() *AppError {
	return &AppError{
		Code:    CodeFileTooSmall,
		Message: "file is too small",
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidFileType covers declared-type mismatch, sniffed-type mismatch
// and undecodable image content
func NewInvalidFileType(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidFileType,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewUnauthorized reports a missing, invalid or expired identity token
func NewUnauthorized() *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: "authentication required",
		Status:  http.StatusUnauthorized,
	}
}

// NewValidation reports rejected request input with per-field details
func NewValidation(message string, details interface{}) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// NewNotFound reports a missing document
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}

// NewInternal reports an unanticipated failure with a generic client message
func NewInternal() *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "an unexpected error occurred",
		Status:  http.StatusInternalServerError,
	}
}
