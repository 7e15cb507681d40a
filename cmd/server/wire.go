// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"companyos_backend/internal/app"
	"companyos_backend/internal/auth"
	"companyos_backend/internal/config"
	"companyos_backend/internal/jobs"
	"companyos_backend/internal/notification"
	"companyos_backend/internal/platform/database"
	"companyos_backend/internal/platform/logger"
	"companyos_backend/internal/shared"
	"companyos_backend/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		provideCleanup,

		// Identity
		provideFirebase,
		provideTokenVerifier,
		provideSessionRevoker,

		// Core User Services
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),

		// Handlers
		auth.NewHandler,
		user.NewHandler,

		// Notification Module
		provideFeed,
		notification.NewGORMRepository,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,
		jobs.NewNotificationRetentionJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}
