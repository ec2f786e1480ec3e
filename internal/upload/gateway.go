package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/nosmoke-app/backend/internal/docstore"
	"github.com/nosmoke-app/backend/internal/storage"
	"github.com/nosmoke-app/backend/pkg/types"
)

// Firestore collection names
const (
	sessionsCollection = "sessions"
	imagesCollection   = "images"
)

// Gateway combines the blob store and the document store into the domain
// operations the upload pipeline needs
type Gateway struct {
	blobs storage.BlobStorage
	docs  docstore.DocumentStore
}

// NewGateway creates a persistence gateway over the given stores
func NewGateway(blobs storage.BlobStorage, docs docstore.DocumentStore) *Gateway {
	return &Gateway{blobs: blobs, docs: docs}
}

// CreateSession writes a new session document with status "uploading"
func (g *Gateway) CreateSession(ctx context.Context, sessionID, userID string) error {
	now := time.Now().UTC()
	fields := map[string]interface{}{
		"sessionId": sessionID,
		"userId":    userID,
		"status":    string(types.SessionUploading),
		"createdAt": now,
		"updatedAt": now,
	}
	if err := g.docs.Set(ctx, sessionsCollection, sessionID, fields, false); err != nil {
		return fmt.Errorf("failed to create session document: %w", err)
	}
	return nil
}

// UpdateSessionStatus merges the new status into the session document,
// creating it if necessary. imageID is recorded when non-empty.
func (g *Gateway) UpdateSessionStatus(ctx context.Context, sessionID string, status types.SessionStatus, imageID string) error {
	fields := map[string]interface{}{
		"status":    string(status),
		"updatedAt": time.Now().UTC(),
	}
	if imageID != "" {
		fields["imageId"] = imageID
	}
	if err := g.docs.Set(ctx, sessionsCollection, sessionID, fields, true); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// GetSession reads a session document
func (g *Gateway) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	fields, found, err := g.docs.Get(ctx, sessionsCollection, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session document: %w", err)
	}
	if !found {
		return nil, nil
	}

	session := &types.Session{
		ID:      getString(fields, "sessionId"),
		UserID:  getString(fields, "userId"),
		Status:  types.SessionStatus(getString(fields, "status")),
		ImageID: getString(fields, "imageId"),
	}
	if t, ok := fields["createdAt"].(time.Time); ok {
		session.CreatedAt = t
	}
	if t, ok := fields["updatedAt"].(time.Time); ok {
		session.UpdatedAt = t
	}
	if session.ID == "" {
		session.ID = sessionID
	}
	return session, nil
}

// StoreBlob writes the uploaded bytes under the session's deterministic key
// and returns the public URL. Retrying an upload for the same session
// overwrites the same object rather than orphaning a second blob.
func (g *Gateway) StoreBlob(ctx context.Context, data []byte, filename, sessionID, contentType string) (string, error) {
	key := BlobKey(sessionID, filename)
	metadata := map[string]string{
		"originalFilename": filename,
		"sessionId":        sessionID,
		"uploadedAt":       time.Now().UTC().Format(time.RFC3339),
		"contentType":      contentType,
	}

	url, err := g.blobs.Store(ctx, key, bytes.NewReader(data), contentType, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to store blob: %w", err)
	}
	return url, nil
}

// CreateImageRecord writes the image document. The record is immutable once
// written.
func (g *Gateway) CreateImageRecord(ctx context.Context, record *types.ImageRecord) error {
	fields := map[string]interface{}{
		"imageId":     record.ID,
		"sessionId":   record.SessionID,
		"userId":      record.UserID,
		"originalUrl": record.OriginalURL,
		"metadata": map[string]interface{}{
			"filename":    record.Metadata.Filename,
			"contentType": record.Metadata.ContentType,
			"size":        record.Metadata.Size,
			"dimensions": map[string]interface{}{
				"width":  record.Metadata.Dimensions.Width,
				"height": record.Metadata.Dimensions.Height,
				"format": record.Metadata.Dimensions.Format,
			},
		},
		"uploadedAt": record.UploadedAt,
		"createdAt":  record.UploadedAt,
	}
	if err := g.docs.Set(ctx, imagesCollection, record.ID, fields, false); err != nil {
		return fmt.Errorf("failed to create image document: %w", err)
	}
	return nil
}

// BlobKey derives the deterministic storage key for a session's upload
func BlobKey(sessionID, filename string) string {
	return path.Join("uploads", sessionID, "original"+fileExtension(filename))
}

func fileExtension(filename string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		return "." + strings.ToLower(filename[idx+1:])
	}
	return ".jpg"
}

func getString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
