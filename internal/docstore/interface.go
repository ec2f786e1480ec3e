package docstore

import "context"

// DocumentStore is the minimal document database surface the services need.
// Set with merge performs an upsert that leaves absent fields untouched.
type DocumentStore interface {
	// Set writes fields to collection/id, creating the document if needed
	Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error

	// Get reads the document at collection/id; found is false when it does not exist
	Get(ctx context.Context, collection, id string) (fields map[string]interface{}, found bool, err error)
}
