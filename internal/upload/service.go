package upload

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/internal/notify"
	"github.com/nosmoke-app/backend/pkg/types"
)

// Pipeline stages in order, with the progress percentage broadcast when the
// stage is entered. Clients rely on these exact pairs.
const (
	StageValidating = "validating"
	StageUploading  = "uploading"
	StageStoring    = "storing"
	StageSaving     = "saving"
	StageCompleted  = "completed"
)

// unknownSession is the document id used for the best-effort failed-status
// write when no session id was ever allocated
const unknownSession = "unknown"

// UploadInput is one upload request as received by the HTTP layer
type UploadInput struct {
	SessionID   string
	UserID      string
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// Service drives a single upload end to end: validate, allocate ids, persist
// the blob, persist metadata, finalize the session, notifying listeners after
// each stage. Stages run strictly sequentially; concurrent uploads share no
// state beyond the hub.
type Service struct {
	validator *Validator
	gateway   *Gateway
	hub       *notify.Hub
}

// NewService creates an upload service
func NewService(validator *Validator, gateway *Gateway, hub *notify.Hub) *Service {
	return &Service{validator: validator, gateway: gateway, hub: hub}
}

// Upload runs the pipeline for one request. On any failure it emits an error
// event, marks the session failed best-effort and returns a tagged *AppError;
// it never panics past the HTTP boundary.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*types.UploadResult, error) {
	sessionID := in.SessionID

	// basic validation happens before the body is read
	if err := s.validator.Basic(in.Size, in.ContentType); err != nil {
		return nil, s.fail(ctx, sessionID, err)
	}

	s.progress(sessionID, StageValidating, 10, "validating file...")

	data, err := io.ReadAll(in.Content)
	if err != nil {
		log.Error().Err(err).Str("filename", in.Filename).Msg("failed to read upload body")
		return nil, s.fail(ctx, sessionID, types.NewInternal())
	}
	if _, err := in.Content.Seek(0, io.SeekStart); err != nil {
		log.Error().Err(err).Str("filename", in.Filename).Msg("failed to rewind upload body")
		return nil, s.fail(ctx, sessionID, types.NewInternal())
	}

	dimensions, err := s.validator.Content(data)
	if err != nil {
		return nil, s.fail(ctx, sessionID, err)
	}

	s.progress(sessionID, StageUploading, 30, "uploading...")

	imageID := NewImageID()
	if sessionID == "" {
		sessionID = NewSessionID()
		if err := s.gateway.CreateSession(ctx, sessionID, in.UserID); err != nil {
			// session bookkeeping never decides the upload outcome
			log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to create session document")
		}
	}
	s.setStatus(ctx, sessionID, types.SessionUploading, "")

	s.progress(sessionID, StageStoring, 60, "storing file...")

	originalURL, err := s.gateway.StoreBlob(ctx, data, in.Filename, sessionID, in.ContentType)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("blob store write failed")
		return nil, s.fail(ctx, sessionID, types.NewInternal())
	}

	s.progress(sessionID, StageSaving, 80, "saving metadata...")

	uploadedAt := time.Now().UTC()
	record := &types.ImageRecord{
		ID:          imageID,
		SessionID:   sessionID,
		UserID:      in.UserID,
		OriginalURL: originalURL,
		Metadata: types.FileMetadata{
			Filename:    in.Filename,
			ContentType: in.ContentType,
			Size:        int64(len(data)),
			Dimensions:  dimensions,
		},
		UploadedAt: uploadedAt,
	}
	if err := s.gateway.CreateImageRecord(ctx, record); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Str("image_id", imageID).Msg("image record write failed")
		return nil, s.fail(ctx, sessionID, types.NewInternal())
	}

	s.setStatus(ctx, sessionID, types.SessionImageUploaded, imageID)

	s.progress(sessionID, StageCompleted, 100, "upload complete")

	log.Info().
		Str("session_id", sessionID).
		Str("image_id", imageID).
		Int64("size", record.Metadata.Size).
		Msg("upload completed")

	return &types.UploadResult{
		ImageID:     imageID,
		SessionID:   sessionID,
		UploadedAt:  uploadedAt,
		OriginalURL: originalURL,
		Metadata:    record.Metadata,
	}, nil
}

// progress broadcasts a stage event. Before a session id exists nobody can
// be subscribed, so the event is skipped.
func (s *Service) progress(sessionID, stage string, percent int, message string) {
	if sessionID == "" {
		return
	}
	s.hub.BroadcastProgress(sessionID, stage, percent, message)
}

// setStatus updates the session document best-effort; failures are logged
// and never mask the upload outcome
func (s *Service) setStatus(ctx context.Context, sessionID string, status types.SessionStatus, imageID string) {
	if err := s.gateway.UpdateSessionStatus(ctx, sessionID, status, imageID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Str("status", string(status)).Msg("failed to update session status")
	}
}

// fail enters the terminal failed state: emit the error event, mark the
// session failed and hand the tagged error back to the HTTP layer
func (s *Service) fail(ctx context.Context, sessionID string, err error) error {
	appErr, ok := types.AsAppError(err)
	if !ok {
		appErr = types.NewInternal()
	}

	if sessionID != "" {
		s.hub.BroadcastError(sessionID, appErr.Code, appErr.Message)
	}

	statusID := sessionID
	if statusID == "" {
		statusID = unknownSession
	}
	s.setStatus(ctx, statusID, types.SessionFailed, "")

	return appErr
}
