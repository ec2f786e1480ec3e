package upload

import "github.com/google/uuid"

// NewSessionID generates an opaque session identifier. No uniqueness check
// is made against existing records; the UUIDv4 space makes collisions
// effectively impossible.
func NewSessionID() string {
	return uuid.NewString()
}

// NewImageID generates an opaque image identifier
func NewImageID() string {
	return uuid.NewString()
}
