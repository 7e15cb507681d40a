// File: internal/platform/database/migrate.go
package database

import (
	"fmt"

	"companyos_backend/internal/notification"
	"companyos_backend/internal/user"

	"gorm.io/gorm"
)

// AutoMigrate applies the schema for every persisted model. Safe to run on
// every startup; GORM only adds missing tables, columns and indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&user.User{},
		&notification.Notification{},
		&notification.NotificationPreference{},
	); err != nil {
		return fmt.Errorf("failed to run schema migration: %w", err)
	}
	return nil
}
