// File: cmd/server/providers.go
package main

import (
	"log"

	"companyos_backend/internal/auth"
	"companyos_backend/internal/config"
	"companyos_backend/internal/firebase"
	"companyos_backend/internal/notification"
	"companyos_backend/internal/platform/database"
	"companyos_backend/internal/shared"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// provideFirebase initializes the Firebase adapter; nil when no service
// account is configured.
func provideFirebase(cfg *config.Config, logger *zap.Logger) (*firebase.Service, error) {
	return firebase.NewService(cfg, logger)
}

// provideTokenVerifier selects the identity provider: Firebase when
// available, otherwise the shared-secret dev verifier. Config validation
// guarantees at least one of the two is available.
func provideTokenVerifier(firebaseService *firebase.Service, cfg *config.Config, logger *zap.Logger) (shared.TokenVerifier, error) {
	if firebaseService != nil {
		logger.Info("Using Firebase token verification")
		return firebaseService, nil
	}

	logger.Warn("Firebase not configured, falling back to dev token verification. Do not use in production.")
	return auth.NewDevTokenVerifier(cfg, logger)
}

// provideSessionRevoker exposes Firebase's revocation support when present.
// The dev verifier mints stateless tokens, so there is nothing to revoke.
func provideSessionRevoker(firebaseService *firebase.Service) shared.SessionRevoker {
	if firebaseService == nil {
		return nil
	}
	return firebaseService
}

// provideFeed constructs the process-wide notification change feed.
func provideFeed(cfg *config.Config, logger *zap.Logger) *notification.Feed {
	return notification.NewFeed(cfg.FeedSubscriberBuffer, logger)
}

// provideCleanup bundles the teardown work that runs after the server exits.
func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
