package auth

import (
	"context"
	"fmt"

	"github.com/shopsphere/shopsphere-backend/internal/config"
)

// Identity is what the external identity provider attests about a caller.
type Identity struct {
	UID   string
	Email string
}

// TokenVerifier validates a bearer token and returns the verified identity.
// Implementations wrap the external identity provider; the rest of the
// backend never inspects tokens itself.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// IdentityProvider manages accounts at the external provider. Used by the
// signup and profile flows only.
type IdentityProvider interface {
	// CreateAccount provisions credentials and returns the provider uid.
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
	// LookupUID returns the provider uid for an email, or "" when absent.
	LookupUID(ctx context.Context, email string) (string, error)
	// DeleteAccount removes the provider account for a uid.
	DeleteAccount(ctx context.Context, uid string) error
	// UpdateDisplayName renames the provider account.
	UpdateDisplayName(ctx context.Context, uid, displayName string) error
}

// New builds the verifier and provider pair for the configured auth mode.
func New(ctx context.Context, cfg config.AuthConfig) (TokenVerifier, IdentityProvider, error) {
	switch cfg.Mode {
	case "firebase":
		app, err := NewFirebaseApp(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase app: %w", err)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firebase auth client: %w", err)
		}
		fb := NewFirebase(client)
		return fb, fb, nil
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, nil, fmt.Errorf("auth mode jwt requires AUTH_JWT_SECRET")
		}
		return NewJWTVerifier(cfg), NewLocalProvider(), nil
	default:
		return nil, nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
