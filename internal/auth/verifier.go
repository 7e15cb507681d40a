// File: internal/auth/verifier.go
package auth

import (
	"context"
	"fmt"

	"companyos_backend/internal/config"
	"companyos_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// DevClaims is the claim set accepted by the dev verifier.
type DevClaims struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// DevTokenVerifier accepts locally minted HS256 JWTs. It stands in for the
// external auth provider in development and tests; never enable it with a
// guessable secret in production.
type DevTokenVerifier struct {
	secret []byte
	logger *zap.Logger
}

var _ shared.TokenVerifier = (*DevTokenVerifier)(nil)

// NewDevTokenVerifier creates a verifier for the configured shared secret.
func NewDevTokenVerifier(cfg *config.Config, logger *zap.Logger) (*DevTokenVerifier, error) {
	if cfg.AuthDevJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_DEV_JWT_SECRET is not set")
	}
	return &DevTokenVerifier{secret: []byte(cfg.AuthDevJWTSecret), logger: logger}, nil
}

// VerifyToken parses and validates the token, mapping its subject to a
// provider identity.
func (v *DevTokenVerifier) VerifyToken(_ context.Context, tokenString string) (*shared.Identity, error) {
	claims := &DevClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		v.logger.Warn("Dev token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}

	return &shared.Identity{
		Provider:    "dev",
		ProviderUID: claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// MintDevToken signs a token the verifier will accept. Exposed for tests and
// local tooling.
func MintDevToken(secret, subject, email, displayName string) (string, error) {
	claims := DevClaims{
		Email:       email,
		DisplayName: displayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
