package upload

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nosmoke-app/backend/internal/docstore"
	"github.com/nosmoke-app/backend/pkg/types"
)

func requireAppError(t *testing.T, err error) *types.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := types.AsAppError(err)
	require.True(t, ok, "expected a tagged AppError, got %v", err)
	return appErr
}

// opLog records the order of persistence operations across fakes
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) add(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// memoryBlobs is an in-memory BlobStorage recording stored objects
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
	log     *opLog
	failAll bool
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{
		objects: make(map[string][]byte),
		meta:    make(map[string]map[string]string),
	}
}

func (m *memoryBlobs) Store(ctx context.Context, key string, content io.Reader, contentType string, metadata map[string]string) (string, error) {
	if m.failAll {
		return "", errors.New("storage connectivity error")
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.meta[key] = metadata
	m.mu.Unlock()
	if m.log != nil {
		m.log.add("store_blob:" + key)
	}
	return "https://storage.example.com/test-bucket/" + key, nil
}

func (m *memoryBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.meta, key)
	return nil
}

func (m *memoryBlobs) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryBlobs) object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

func (m *memoryBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// recordingDocs wraps a document store and records write operations
type recordingDocs struct {
	docstore.DocumentStore
	log        *opLog
	failWrites bool
}

func (r *recordingDocs) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	if r.failWrites {
		return errors.New("docstore connectivity error")
	}
	if r.log != nil {
		r.log.add("set:" + collection + "/" + id)
	}
	return r.DocumentStore.Set(ctx, collection, id, fields, merge)
}

// trackingReader reports whether its body was ever read
type trackingReader struct {
	readCalled bool
}

func (r *trackingReader) Read(p []byte) (int, error) {
	r.readCalled = true
	return 0, io.EOF
}

func (r *trackingReader) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}
