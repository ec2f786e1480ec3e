package docstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory DocumentStore for tests and local development
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]interface{}
}

// NewMemoryStore creates an empty in-memory document store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]interface{})}
}

func key(collection, id string) string {
	return collection + "/" + id
}

// Set writes fields to collection/id
func (s *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(collection, id)
	existing, ok := s.docs[k]
	if !merge || !ok {
		existing = make(map[string]interface{}, len(fields))
		s.docs[k] = existing
	}
	for field, value := range fields {
		existing[field] = value
	}
	return nil
}

// Get reads the document at collection/id
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key(collection, id)]
	if !ok {
		return nil, false, nil
	}
	out := make(map[string]interface{}, len(doc))
	for field, value := range doc {
		out[field] = value
	}
	return out, true, nil
}
