// File: internal/notification/repository.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"companyos_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for notification data operations. Every
// read and mutation is scoped by the owning user and by the soft-delete
// convention; no method can observe or affect another user's rows.
type Repository interface {
	Create(ctx context.Context, notification *Notification) error
	List(ctx context.Context, userID uuid.UUID, filters ListFilters, limit, offset int) ([]Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	SoftDelete(ctx context.Context, notificationID, userID uuid.UUID) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	ListPreferences(ctx context.Context, userID uuid.UUID) ([]NotificationPreference, error)
	FindPreference(ctx context.Context, userID uuid.UUID, t NotificationType) (*NotificationPreference, error)
	CreatePreference(ctx context.Context, pref *NotificationPreference) error
	SavePreference(ctx context.Context, pref *NotificationPreference) error
}

// GORMRepository implements the Repository interface using GORM.
type GORMRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM notification repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &GORMRepository{db: db}
}

// Create inserts a new notification into the database.
func (r *GORMRepository) Create(ctx context.Context, notification *Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *GORMRepository) scoped(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&Notification{}).
		Scopes(common.Active).
		Where("user_id = ?", userID)
}

func applyFilters(q *gorm.DB, filters ListFilters) *gorm.DB {
	if filters.Read != nil {
		q = q.Where("read = ?", *filters.Read)
	}
	if filters.Type != nil {
		q = q.Where("type = ?", *filters.Type)
	}
	if filters.EntityType != nil {
		q = q.Where("entity_type = ?", *filters.EntityType)
	}
	return q
}

// List retrieves a page of active notifications for a user, newest first,
// plus the total number of rows matching the filters.
func (r *GORMRepository) List(ctx context.Context, userID uuid.UUID, filters ListFilters, limit, offset int) ([]Notification, int64, error) {
	var total int64
	countQuery := applyFilters(r.scoped(ctx, userID), filters)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting notifications for user %s failed: %w", userID, err)
	}

	var notifications []Notification
	err := applyFilters(r.scoped(ctx, userID), filters).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, fmt.Errorf("fetching notifications for user %s failed: %w", userID, err)
	}
	return notifications, total, nil
}

// UnreadCount returns the number of active, unread notifications for a user.
func (r *GORMRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(ctx, userID).Where("read = ?", false).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications for user %s failed: %w", userID, err)
	}
	return count, nil
}

// MarkAsRead marks a notification as read. The ownership check is part of the
// single UPDATE predicate so a foreign ID is indistinguishable from a missing
// one. Re-marking an already-read notification is a no-op success.
func (r *GORMRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	result := r.scoped(ctx, userID).
		Where("id = ?", notificationID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", notificationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

// MarkAllAsRead marks all active unread notifications for a user as read and
// returns the number of rows updated. Zero is a success, not an error.
func (r *GORMRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.scoped(ctx, userID).
		Where("read = ?", false).
		Update("read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications as read for user %s: %w", userID, result.Error)
	}
	return result.RowsAffected, nil
}

// SoftDelete stamps deleted_at on an owned, active notification. Already
// deleted or foreign rows report NotFound.
func (r *GORMRepository) SoftDelete(ctx context.Context, notificationID, userID uuid.UUID) error {
	result := r.scoped(ctx, userID).
		Where("id = ?", notificationID).
		Update("deleted_at", time.Now())
	if result.Error != nil {
		return fmt.Errorf("failed to delete notification %s: %w", notificationID, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	return nil
}

// PurgeDeletedBefore hard-deletes rows that were soft-deleted before the
// cutoff. Only the retention job calls this; API flows never hard-delete.
func (r *GORMRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge deleted notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// --- Preferences ---

// ListPreferences returns all persisted preference rows for a user. Pairs
// without a row are intentionally absent; their behavior is defined by
// DefaultPreference.
func (r *GORMRepository) ListPreferences(ctx context.Context, userID uuid.UUID) ([]NotificationPreference, error) {
	var prefs []NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("notification_type ASC").
		Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("fetching preferences for user %s failed: %w", userID, err)
	}
	return prefs, nil
}

// FindPreference retrieves one preference row, or NotFound if it was never
// explicitly configured.
func (r *GORMRepository) FindPreference(ctx context.Context, userID uuid.UUID, t NotificationType) (*NotificationPreference, error) {
	var pref NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_type = ?", userID, t).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("No preference configured for this notification type.")
		}
		return nil, fmt.Errorf("failed to find preference for user %s type %s: %w", userID, t, err)
	}
	return &pref, nil
}

// CreatePreference inserts a preference row. A duplicate (user, type) pair
// reports Conflict so callers can fall back to the winning row.
func (r *GORMRepository) CreatePreference(ctx context.Context, pref *NotificationPreference) error {
	if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A preference for this notification type already exists.")
		}
		return fmt.Errorf("failed to create preference: %w", err)
	}
	return nil
}

// SavePreference persists changes to an existing preference row.
func (r *GORMRepository) SavePreference(ctx context.Context, pref *NotificationPreference) error {
	if err := r.db.WithContext(ctx).Save(pref).Error; err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}
