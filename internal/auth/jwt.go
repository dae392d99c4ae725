package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopsphere/shopsphere-backend/internal/config"
)

// JWTVerifier validates locally signed HMAC tokens. Development and test use
// only; production deployments verify against the real identity provider.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

var _ TokenVerifier = (*JWTVerifier)(nil)

func NewJWTVerifier(cfg config.AuthConfig) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
	}
}

func (v *JWTVerifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("claims parsing error")
	}

	if claims["iss"] != v.issuer || claims["aud"] != v.audience {
		return nil, fmt.Errorf("iss/aud mismatch")
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, fmt.Errorf("missing sub or email claim")
	}

	return &Identity{UID: sub, Email: email}, nil
}

// SignToken issues an HMAC token accepted by JWTVerifier with the same config.
func SignToken(cfg config.AuthConfig, uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   cfg.Issuer,
		"aud":   cfg.Audience,
		"sub":   uid,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
}

// LocalProvider fabricates provider uids without an external call. Paired
// with JWTVerifier for development, where no real account backend exists.
type LocalProvider struct{}

var _ IdentityProvider = (*LocalProvider)(nil)

func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	return "local_" + uuid.NewString(), nil
}

func (p *LocalProvider) LookupUID(ctx context.Context, email string) (string, error) {
	return "", nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, uid string) error { return nil }

func (p *LocalProvider) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return nil
}
