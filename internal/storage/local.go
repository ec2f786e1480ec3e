package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// LocalStorage implements BlobStorage on the local filesystem. It is used for
// development and tests; objects are served back under baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
	mutex    sync.RWMutex
}

// NewLocalStorage creates a local storage instance rooted at basePath
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Error().Err(err).Str("path", basePath).Msg("failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	log.Info().Str("path", basePath).Msg("local storage initialized")
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Store saves content atomically and writes object metadata to a sidecar file
func (ls *LocalStorage) Store(ctx context.Context, key string, content io.Reader, contentType string, metadata map[string]string) (string, error) {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	ls.mutex.Lock()
	defer ls.mutex.Unlock()

	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to create directory")
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := fullPath + ".tmp." + fmt.Sprintf("%d", time.Now().UnixNano())
	tempFile, err := os.Create(tempPath)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to create temporary file")
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		tempFile.Close()
		if _, err := os.Stat(tempPath); err == nil {
			os.Remove(tempPath)
		}
	}()

	hasher := sha256.New()
	bytesWritten, err := io.Copy(io.MultiWriter(tempFile, hasher), content)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to write content to temporary file")
		return "", fmt.Errorf("failed to write content: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync temporary file: %w", err)
	}
	tempFile.Close()

	if err := os.Rename(tempPath, fullPath); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to move temporary file to final location")
		return "", fmt.Errorf("failed to move file to final location: %w", err)
	}

	if len(metadata) > 0 {
		sidecar := map[string]interface{}{
			"contentType": contentType,
			"metadata":    metadata,
		}
		data, err := json.Marshal(sidecar)
		if err == nil {
			err = os.WriteFile(fullPath+".meta.json", data, 0644)
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to write metadata sidecar")
		}
	}

	log.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int64("bytes_written", bytesWritten).
		Str("checksum", hex.EncodeToString(hasher.Sum(nil))).
		Dur("duration", time.Since(startTime)).
		Msg("file stored")

	return ls.baseURL + "/" + key, nil
}

// Delete removes the object and any metadata sidecar at key
func (ls *LocalStorage) Delete(ctx context.Context, key string) error {
	ls.mutex.Lock()
	defer ls.mutex.Unlock()

	fullPath := filepath.Join(ls.basePath, filepath.FromSlash(key))
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", key)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	os.Remove(fullPath + ".meta.json")
	return nil
}

// Exists checks whether a file is stored at key
func (ls *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	ls.mutex.RLock()
	defer ls.mutex.RUnlock()

	_, err := os.Stat(filepath.Join(ls.basePath, filepath.FromSlash(key)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	return true, nil
}

// BasePath returns the storage root, used to serve files in development
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}
