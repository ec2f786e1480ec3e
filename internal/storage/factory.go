package storage

import (
	"context"
	"fmt"

	"github.com/nosmoke-app/backend/pkg/config"
)

// NewFromConfig creates the blob storage backend named by the configuration
func NewFromConfig(ctx context.Context, cfg *config.StorageConfig, localBaseURL string) (BlobStorage, error) {
	switch cfg.Type {
	case "gcs":
		return NewGCSStorage(ctx, cfg.Bucket)
	case "local":
		return NewLocalStorage(cfg.LocalPath, localBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
