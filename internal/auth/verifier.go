package auth

import (
	"context"

	"github.com/nosmoke-app/backend/pkg/types"
)

// Verifier checks a bearer identity token and returns the caller's identity.
// Implementations must return an UNAUTHORIZED AppError for invalid or
// expired tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*types.Identity, error)
}
