package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements DocumentStore on Cloud Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Firestore-backed document store for the project
func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	log.Info().Str("project_id", projectID).Msg("firestore store initialized")
	return &FirestoreStore{client: client}, nil
}

// Set writes fields to collection/id, merging into any existing document when requested
func (s *FirestoreStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	ref := s.client.Collection(collection).Doc(id)

	var err error
	if merge {
		_, err = ref.Set(ctx, fields, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, fields)
	}
	if err != nil {
		return fmt.Errorf("failed to write document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get reads the document at collection/id
func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (map[string]interface{}, bool, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read document %s/%s: %w", collection, id, err)
	}
	return snap.Data(), true, nil
}

// Close releases the underlying Firestore client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
