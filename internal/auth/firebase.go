package auth

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/shopsphere/shopsphere-backend/internal/config"
)

// NewFirebaseApp bootstraps the Firebase SDK from the configured service
// account file (falls back to application default credentials when unset).
func NewFirebaseApp(ctx context.Context, cfg config.AuthConfig) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	return firebase.NewApp(ctx, fbConfig, opts...)
}

// Firebase implements TokenVerifier and IdentityProvider against Firebase Auth.
type Firebase struct {
	client *fbauth.Client
}

var (
	_ TokenVerifier    = (*Firebase)(nil)
	_ IdentityProvider = (*Firebase)(nil)
)

func NewFirebase(client *fbauth.Client) *Firebase {
	return &Firebase{client: client}
}

func (f *Firebase) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	uid := strings.TrimSpace(decoded.UID)
	if uid == "" {
		return nil, fmt.Errorf("token has no uid")
	}

	email, _ := decoded.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token has no email claim")
	}

	return &Identity{UID: uid, Email: email}, nil
}

func (f *Firebase) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create firebase user: %w", err)
	}
	return record.UID, nil
}

func (f *Firebase) LookupUID(ctx context.Context, email string) (string, error) {
	record, err := f.client.GetUserByEmail(ctx, email)
	if err != nil {
		// The SDK reports absent users as an error; treat that as "no uid".
		if fbauth.IsUserNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("lookup firebase user: %w", err)
	}
	return record.UID, nil
}

func (f *Firebase) DeleteAccount(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("delete firebase user: %w", err)
	}
	return nil
}

func (f *Firebase) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	params := (&fbauth.UserToUpdate{}).DisplayName(displayName)
	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return fmt.Errorf("update firebase user: %w", err)
	}
	return nil
}
