package types

import "time"

// SessionStatus is the lifecycle state of an upload session
type SessionStatus string

const (
	SessionUploading     SessionStatus = "uploading"
	SessionImageUploaded SessionStatus = "image_uploaded"
	SessionCompleted     SessionStatus = "completed"
	SessionFailed        SessionStatus = "failed"
)

// Session groups one upload attempt and its resulting image
type Session struct {
	ID        string        `json:"sessionId" firestore:"sessionId"`
	UserID    string        `json:"userId" firestore:"userId"`
	Status    SessionStatus `json:"status" firestore:"status"`
	ImageID   string        `json:"imageId,omitempty" firestore:"imageId,omitempty"`
	CreatedAt time.Time     `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" firestore:"updatedAt"`
}

// Dimensions holds decoded pixel dimensions and the sniffed format name
type Dimensions struct {
	Width  int    `json:"width" firestore:"width"`
	Height int    `json:"height" firestore:"height"`
	Format string `json:"format" firestore:"format"`
}

// FileMetadata describes an uploaded file as declared plus decoded properties
type FileMetadata struct {
	Filename    string     `json:"filename" firestore:"filename"`
	ContentType string     `json:"contentType" firestore:"contentType"`
	Size        int64      `json:"size" firestore:"size"`
	Dimensions  Dimensions `json:"dimensions" firestore:"dimensions"`
}

// ImageRecord is the durable record of a stored upload. Written once after
// the blob is stored, never mutated afterwards.
type ImageRecord struct {
	ID          string       `json:"imageId" firestore:"imageId"`
	SessionID   string       `json:"sessionId" firestore:"sessionId"`
	UserID      string       `json:"userId" firestore:"userId"`
	OriginalURL string       `json:"originalUrl" firestore:"originalUrl"`
	Metadata    FileMetadata `json:"metadata" firestore:"metadata"`
	UploadedAt  time.Time    `json:"uploadedAt" firestore:"uploadedAt"`
}

// UploadResult is the success payload returned by the upload pipeline
type UploadResult struct {
	ImageID     string       `json:"imageId"`
	SessionID   string       `json:"sessionId"`
	UploadedAt  time.Time    `json:"uploadedAt"`
	OriginalURL string       `json:"originalUrl"`
	Metadata    FileMetadata `json:"metadata"`
}

// Identity is the verified caller identity extracted from a bearer token
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// SuccessResponse is the envelope for all successful API responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// ErrorBody carries the machine-readable error code and human message
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse is the envelope for all failed API responses
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// Success wraps a payload in the standard envelope
func Success(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// Failure wraps an error code and message in the standard envelope
func Failure(code, message string) ErrorResponse {
	return ErrorResponse{Success: false, Error: ErrorBody{Code: code, Message: message}}
}
