package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"companyos_backend/internal/config"
	"companyos_backend/internal/shared"
)

// Service verifies bearer tokens against Firebase Auth, the platform's
// identity provider. It implements shared.TokenVerifier.
type Service struct {
	authClient *auth.Client
	logger     *zap.Logger
}

var (
	_ shared.TokenVerifier  = (*Service)(nil)
	_ shared.SessionRevoker = (*Service)(nil)
)

// NewService initializes the Firebase Admin SDK from the configured service
// account key. Returns nil (no error) when Firebase is not configured, so the
// injector can fall back to the dev verifier.
func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Info("Firebase not configured, skipping Admin SDK initialization.")
		return nil, nil
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var app *firebase.App
	var err error
	if cfg.FirebaseProjectID != "" {
		app, err = firebase.NewApp(context.Background(), &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	} else {
		app, err = firebase.NewApp(context.Background(), nil, opt)
	}
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &Service{authClient: authClient, logger: logger}, nil
}

// VerifyToken verifies a Firebase ID token and maps its claims to a
// shared.Identity.
func (s *Service) VerifyToken(ctx context.Context, idToken string) (*shared.Identity, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	identity := &shared.Identity{
		Provider:    "firebase",
		ProviderUID: token.UID,
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = name
	}

	s.logger.Debug("Firebase ID token verified", zap.String("uid", token.UID))
	return identity, nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given provider UID.
// Backs the admin off-boarding endpoint.
func (s *Service) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	s.logger.Info("Revoked refresh tokens for user", zap.String("uid", uid))
	return nil
}
