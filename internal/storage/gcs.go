package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
)

// writeTimeout bounds a single object write so a stalled upload surfaces as
// a stage failure instead of hanging the request.
const writeTimeout = 30 * time.Second

// GCSStorage implements BlobStorage on a Google Cloud Storage bucket
type GCSStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSStorage creates a storage client bound to the named bucket
func NewGCSStorage(ctx context.Context, bucketName string) (*GCSStorage, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name must be provided")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	log.Info().Str("bucket", bucketName).Msg("gcs storage initialized")
	return &GCSStorage{
		client: client,
		bucket: client.Bucket(bucketName),
		name:   bucketName,
	}, nil
}

// Store writes content to the bucket under key, sets object metadata, makes
// the object publicly readable and returns its public URL
func (g *GCSStorage) Store(ctx context.Context, key string, content io.Reader, contentType string, metadata map[string]string) (string, error) {
	startTime := time.Now()

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	obj := g.bucket.Object(key)
	writer := obj.NewWriter(writeCtx)
	writer.ContentType = contentType
	writer.Metadata = metadata

	bytesWritten, err := io.Copy(writer, content)
	if err != nil {
		_ = writer.Close()
		log.Error().Err(err).Str("key", key).Msg("failed to write object")
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		if gerr, ok := err.(*googleapi.Error); ok {
			log.Error().Err(err).Str("key", key).Int("code", gerr.Code).Msg("failed to finalize object write")
		} else {
			log.Error().Err(err).Str("key", key).Msg("failed to finalize object write")
		}
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to set public ACL")
		return "", fmt.Errorf("failed to make object public: %w", err)
	}

	url := fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.name, key)
	log.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int64("bytes_written", bytesWritten).
		Dur("duration", time.Since(startTime)).
		Msg("object stored")
	return url, nil
}

// Delete removes the object at key
func (g *GCSStorage) Delete(ctx context.Context, key string) error {
	if err := g.bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	log.Info().Str("key", key).Msg("object deleted")
	return nil
}

// Exists checks whether an object is stored at key
func (g *GCSStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.bucket.Object(key).Attrs(ctx)
	if err == gcs.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}

// Close releases the underlying storage client
func (g *GCSStorage) Close() error {
	return g.client.Close()
}
