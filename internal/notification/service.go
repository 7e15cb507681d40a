// File: internal/notification/service.go
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companyos_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for notification business logic.
type Service interface {
	CreateNotification(ctx context.Context, req CreateNotificationRequest) (*Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, filters ListFilters, limit, offset int) ([]Notification, *common.Pagination, error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error
	GetPreferences(ctx context.Context, userID uuid.UUID) ([]NotificationPreference, error)
	UpdatePreference(ctx context.Context, userID uuid.UUID, req UpdatePreferenceRequest) (*NotificationPreference, error)
	IsTypeEnabled(ctx context.Context, userID uuid.UUID, notificationType NotificationType) (bool, error)
	Subscribe(userID uuid.UUID) (<-chan Event, func())
	PurgeSoftDeleted(ctx context.Context, olderThan time.Duration) (int64, error)
}

// ServiceImplementation provides notification operations backed by a Repository
// and a Feed for real-time change signals.
type ServiceImplementation struct {
	repo   Repository
	feed   *Feed
	logger *zap.Logger
}

// NewService creates a new notification service.
func NewService(repo Repository, feed *Feed, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		feed:   feed,
		logger: logger.Named("NotificationService"),
	}
}

var _ Service = (*ServiceImplementation)(nil)

// CreateNotification validates and persists a new notification, then signals
// the recipient's feed. Delivery is gated by the recipient's per-type
// preference: a disabled type drops the notification without error.
func (s *ServiceImplementation) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*Notification, error) {
	if !NotificationType(req.Type).Known() {
		return nil, common.NewValidationAPIError(map[string]string{"type": fmt.Sprintf("unknown notification type '%s'", req.Type)})
	}
	if req.EntityType != nil && !EntityType(*req.EntityType).Known() {
		return nil, common.NewValidationAPIError(map[string]string{"entity_type": fmt.Sprintf("unknown entity type '%s'", *req.EntityType)})
	}

	enabled, err := s.IsTypeEnabled(ctx, req.UserID, NotificationType(req.Type))
	if err != nil {
		return nil, err
	}
	if !enabled {
		s.logger.Debug("Notification suppressed by preference",
			zap.String("userID", req.UserID.String()),
			zap.String("type", req.Type))
		return nil, nil
	}

	n := &Notification{
		UserID:    req.UserID,
		Type:      NotificationType(req.Type),
		Title:     req.Title,
		Message:   req.Message,
		EntityID:  req.EntityID,
		ActionURL: req.ActionURL,
		Metadata:  req.Metadata,
	}
	if req.EntityType != nil {
		et := EntityType(*req.EntityType)
		n.EntityType = &et
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("Failed to create notification", zap.Error(err), zap.String("userID", req.UserID.String()))
		return nil, s.mapError(err, "Could not create notification.")
	}

	id := n.ID
	s.feed.Publish(Event{Kind: EventCreated, UserID: n.UserID, NotificationID: &id})
	return n, nil
}

// ListNotifications returns a page of the user's active notifications, newest
// first, along with pagination metadata.
func (s *ServiceImplementation) ListNotifications(ctx context.Context, userID uuid.UUID, filters ListFilters, limit, offset int) ([]Notification, *common.Pagination, error) {
	items, total, err := s.repo.List(ctx, userID, filters, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list notifications", zap.Error(err), zap.String("userID", userID.String()))
		return nil, nil, s.mapError(err, "Could not retrieve notifications.")
	}
	return items, common.NewPagination(total, limit, offset), nil
}

// GetUnreadCount returns the number of active unread notifications for the user.
func (s *ServiceImplementation) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count unread notifications", zap.Error(err), zap.String("userID", userID.String()))
		return 0, s.mapError(err, "Could not retrieve unread count.")
	}
	return count, nil
}

// MarkAsRead marks a single notification as read. The operation is idempotent:
// marking an already-read notification succeeds without effect.
func (s *ServiceImplementation) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Failed to mark notification read", zap.Error(err),
				zap.String("userID", userID.String()), zap.String("notificationID", notificationID.String()))
		}
		return s.mapError(err, "Could not mark notification as read.")
	}
	s.feed.Publish(Event{Kind: EventRead, UserID: userID, NotificationID: &notificationID})
	return nil
}

// MarkAllAsRead marks every unread notification for the user as read and
// returns how many rows changed.
func (s *ServiceImplementation) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to mark all notifications read", zap.Error(err), zap.String("userID", userID.String()))
		return 0, s.mapError(err, "Could not mark notifications as read.")
	}
	if updated > 0 {
		s.feed.Publish(Event{Kind: EventReadAll, UserID: userID})
	}
	return updated, nil
}

// DeleteNotification soft-deletes a notification owned by the user.
func (s *ServiceImplementation) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, notificationID, userID); err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Failed to delete notification", zap.Error(err),
				zap.String("userID", userID.String()), zap.String("notificationID", notificationID.String()))
		}
		return s.mapError(err, "Could not delete notification.")
	}
	s.feed.Publish(Event{Kind: EventDeleted, UserID: userID, NotificationID: &notificationID})
	return nil
}

// GetPreferences returns the user's stored preference rows. Types with no
// stored row are omitted; their absence means enabled (see DefaultPreference).
func (s *ServiceImplementation) GetPreferences(ctx context.Context, userID uuid.UUID) ([]NotificationPreference, error) {
	stored, err := s.repo.ListPreferences(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list preferences", zap.Error(err), zap.String("userID", userID.String()))
		return nil, s.mapError(err, "Could not retrieve notification preferences.")
	}
	if stored == nil {
		stored = []NotificationPreference{}
	}
	return stored, nil
}

// UpdatePreference upserts the user's preference row for one notification
// type. Nil fields in the request leave the corresponding setting unchanged.
func (s *ServiceImplementation) UpdatePreference(ctx context.Context, userID uuid.UUID, req UpdatePreferenceRequest) (*NotificationPreference, error) {
	t := NotificationType(req.NotificationType)
	if !t.Known() {
		return nil, common.NewValidationAPIError(map[string]string{"notification_type": fmt.Sprintf("unknown notification type '%s'", req.NotificationType)})
	}

	pref, err := s.repo.FindPreference(ctx, userID, t)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("Failed to find preference", zap.Error(err), zap.String("userID", userID.String()))
			return nil, s.mapError(err, "Could not update notification preference.")
		}
		fresh := DefaultPreference(userID, t)
		pref = &fresh
		applyPreferenceUpdate(pref, req)
		if err := s.repo.CreatePreference(ctx, pref); err != nil {
			if errors.Is(err, common.ErrConflict) {
				// Lost a race with a concurrent upsert; retry against the stored row.
				return s.UpdatePreference(ctx, userID, req)
			}
			s.logger.Error("Failed to create preference", zap.Error(err), zap.String("userID", userID.String()))
			return nil, s.mapError(err, "Could not update notification preference.")
		}
		return pref, nil
	}

	applyPreferenceUpdate(pref, req)
	if err := s.repo.SavePreference(ctx, pref); err != nil {
		s.logger.Error("Failed to save preference", zap.Error(err), zap.String("userID", userID.String()))
		return nil, s.mapError(err, "Could not update notification preference.")
	}
	return pref, nil
}

// IsTypeEnabled reports whether in-app delivery of the given type is enabled
// for the user. Missing preference rows and lookup failures both resolve to
// enabled so that delivery fails open.
func (s *ServiceImplementation) IsTypeEnabled(ctx context.Context, userID uuid.UUID, notificationType NotificationType) (bool, error) {
	pref, err := s.repo.FindPreference(ctx, userID, notificationType)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return true, nil
		}
		s.logger.Warn("Preference lookup failed, defaulting to enabled",
			zap.Error(err), zap.String("userID", userID.String()), zap.String("type", string(notificationType)))
		return true, nil
	}
	return pref.Enabled, nil
}

// Subscribe registers a live change-event subscription for the user.
func (s *ServiceImplementation) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	return s.feed.Subscribe(userID)
}

// PurgeSoftDeleted permanently removes notifications soft-deleted longer than
// olderThan ago. Used by the retention job.
func (s *ServiceImplementation) PurgeSoftDeleted(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	purged, err := s.repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to purge soft-deleted notifications", zap.Error(err))
		return 0, s.mapError(err, "Could not purge notifications.")
	}
	return purged, nil
}

func applyPreferenceUpdate(pref *NotificationPreference, req UpdatePreferenceRequest) {
	if req.Enabled != nil {
		pref.Enabled = *req.Enabled
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.WhatsappEnabled != nil {
		pref.WhatsappEnabled = *req.WhatsappEnabled
	}
}

func (s *ServiceImplementation) mapError(err error, publicMessage string) error {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return common.ErrInternalServer.WithDetails(publicMessage)
}
