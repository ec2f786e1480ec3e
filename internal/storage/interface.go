package storage

import (
	"context"
	"io"
)

// BlobStorage defines the interface for uploaded image storage
type BlobStorage interface {
	// Store saves content under key with object metadata and returns the
	// publicly retrievable URL. Storing to an existing key overwrites it.
	Store(ctx context.Context, key string, content io.Reader, contentType string, metadata map[string]string) (string, error)

	// Delete removes the object at key
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object is stored at key
	Exists(ctx context.Context, key string) (bool, error)
}
