// File: internal/notification/model.go
package notification

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"companyos_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the category of a notification. It drives
// preference gating, so producers and the preference API share this enum.
type NotificationType string

const (
	TypeTaskAssigned          NotificationType = "task_assigned"
	TypeTicketUpdated         NotificationType = "ticket_updated"
	TypeCandidateStageChanged NotificationType = "candidate_stage_changed"
	TypeLeaveRequestDecided   NotificationType = "leave_request_decided"
	TypeMessageReceived       NotificationType = "message_received"
	TypeMention               NotificationType = "mention"
	TypeSystemAnnouncement    NotificationType = "system_announcement"
)

// KnownNotificationTypes lists every recognized type in a stable order.
var KnownNotificationTypes = []NotificationType{
	TypeTaskAssigned,
	TypeTicketUpdated,
	TypeCandidateStageChanged,
	TypeLeaveRequestDecided,
	TypeMessageReceived,
	TypeMention,
	TypeSystemAnnouncement,
}

var knownTypes = func() map[NotificationType]struct{} {
	m := make(map[NotificationType]struct{}, len(KnownNotificationTypes))
	for _, t := range KnownNotificationTypes {
		m[t] = struct{}{}
	}
	return m
}()

// Known reports whether t is a recognized notification type.
func (t NotificationType) Known() bool {
	_, ok := knownTypes[t]
	return ok
}

// EntityType identifies what kind of entity a notification points at. The
// reference is polymorphic; no referential integrity is enforced here.
type EntityType string

const (
	EntityTicket       EntityType = "ticket"
	EntityTask         EntityType = "task"
	EntityCandidate    EntityType = "candidate"
	EntityLeaveRequest EntityType = "leave_request"
	EntityConversation EntityType = "conversation"
	EntityVaultItem    EntityType = "vault_item"
)

var knownEntityTypes = map[EntityType]struct{}{
	EntityTicket:       {},
	EntityTask:         {},
	EntityCandidate:    {},
	EntityLeaveRequest: {},
	EntityConversation: {},
	EntityVaultItem:    {},
}

// Known reports whether e is a recognized entity type.
func (e EntityType) Known() bool {
	_, ok := knownEntityTypes[e]
	return ok
}

// Metadata is an open key/value payload, opaque to this subsystem. Stored as
// a JSON column so producers can attach whatever the client needs.
type Metadata map[string]interface{}

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", value)
	}
	return json.Unmarshal(raw, m)
}

// Notification represents a per-user notification record. Rows are immutable
// apart from the read flag and the soft-delete marker, so there is no
// UpdatedAt column. The (user_id, read) composite index together with the
// deleted_at index backs the unread-count query.
type Notification struct {
	ID         uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_read" json:"user_id"`
	Type       NotificationType `gorm:"type:varchar(100);not null" json:"type"`
	Title      string           `gorm:"type:varchar(255);not null" json:"title"`
	Message    string           `gorm:"type:text;not null" json:"message"`
	EntityType *EntityType      `gorm:"type:varchar(100)" json:"entity_type,omitempty"`
	EntityID   *uuid.UUID       `gorm:"type:uuid" json:"entity_id,omitempty"`
	ActionURL  *string          `gorm:"type:text" json:"action_url,omitempty"`
	Metadata   Metadata         `gorm:"type:json" json:"metadata,omitempty"`
	Read       bool             `gorm:"not null;default:false;index:idx_notifications_user_read" json:"read"`
	CreatedAt  time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	common.SoftDelete
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// BeforeCreate assigns the ID and creation timestamp application-side so the
// model also works against backends without server-side defaults.
func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return nil
}

// NotificationPreference is the per-user, per-type delivery configuration.
// Rows are created lazily on first explicit update; absence of a row means
// the type is enabled on every channel (fail-open).
type NotificationPreference struct {
	common.BaseModel
	UserID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_preferences_user_type" json:"user_id"`
	NotificationType NotificationType `gorm:"type:varchar(100);not null;uniqueIndex:idx_preferences_user_type" json:"notification_type"`
	Enabled          bool             `gorm:"not null;default:true" json:"enabled"`
	EmailEnabled     bool             `gorm:"not null;default:true" json:"email_enabled"`
	WhatsappEnabled  bool             `gorm:"not null;default:true" json:"whatsapp_enabled"`
}

// TableName specifies the table name for GORM.
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreference is the single source of the fail-open default: a (user,
// type) pair without a persisted row behaves exactly like this.
func DefaultPreference(userID uuid.UUID, t NotificationType) NotificationPreference {
	return NotificationPreference{
		UserID:           userID,
		NotificationType: t,
		Enabled:          true,
		EmailEnabled:     true,
		WhatsappEnabled:  true,
	}
}

// ListFilters narrows a notification listing. Nil fields match everything.
// Handlers only populate Type/EntityType with known enum values; unknown
// caller input is dropped before it gets here.
type ListFilters struct {
	Read       *bool
	Type       *NotificationType
	EntityType *EntityType
}

// --- DTOs ---

// CreateNotificationRequest is the producer-facing create payload.
type CreateNotificationRequest struct {
	UserID     uuid.UUID              `json:"user_id" binding:"required"`
	Type       string                 `json:"type" binding:"required,max=100"`
	Title      string                 `json:"title" binding:"required,max=255"`
	Message    string                 `json:"message" binding:"required"`
	EntityType *string                `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID             `json:"entity_id,omitempty"`
	ActionURL  *string                `json:"action_url,omitempty" binding:"omitempty,url"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// UpdatePreferenceRequest upserts one preference row. Nil fields are left
// unchanged on update and default to true on insert.
type UpdatePreferenceRequest struct {
	NotificationType string `json:"notification_type" binding:"required,max=100"`
	Enabled          *bool  `json:"enabled,omitempty"`
	EmailEnabled     *bool  `json:"email_enabled,omitempty"`
	WhatsappEnabled  *bool  `json:"whatsapp_enabled,omitempty"`
}
