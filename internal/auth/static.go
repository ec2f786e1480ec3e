package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/pkg/types"
)

// StaticVerifier validates HMAC-signed JWTs against a shared secret. It is
// the development-mode stand-in for Firebase so the API can be exercised
// without cloud credentials.
type StaticVerifier struct {
	secret []byte
}

// NewStaticVerifier creates a verifier for tokens signed with secret
func NewStaticVerifier(secret string) (*StaticVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("static auth requires a JWT secret")
	}
	return &StaticVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the token, mapping standard claims onto the
// identity
func (v *StaticVerifier) Verify(ctx context.Context, token string) (*types.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		log.Debug().Err(err).Msg("static token verification failed")
		return nil, types.NewUnauthorized()
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, types.NewUnauthorized()
	}

	identity := &types.Identity{UID: sub}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}
