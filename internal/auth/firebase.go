package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/nosmoke-app/backend/pkg/config"
	"github.com/nosmoke-app/backend/pkg/types"
)

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Firebase Admin SDK. With no credentials
// file configured, application default credentials are used.
func NewFirebaseVerifier(ctx context.Context, cfg *config.FirebaseConfig) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase auth client: %w", err)
	}

	log.Info().Str("project_id", cfg.ProjectID).Msg("firebase verifier initialized")
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks the ID token and returns the decoded identity
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*types.Identity, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		log.Debug().Err(err).Msg("token verification failed")
		return nil, types.NewUnauthorized()
	}

	identity := &types.Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := decoded.Claims["name"].(string); ok {
		identity.Name = name
	}
	if picture, ok := decoded.Claims["picture"].(string); ok {
		identity.Picture = picture
	}
	return identity, nil
}
