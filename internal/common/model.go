// File: internal/common/model.go
package common

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel defines common fields for GORM models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:current_timestamp" json:"updated_at"`
}

// BeforeCreate assigns an application-side UUID so the model works against
// backends without a uuid_generate_v4() default (e.g. sqlite in tests).
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// SoftDelete marks rows inactive instead of removing them. A plain nullable
// timestamp is used rather than gorm.DeletedAt so that soft-delete filtering
// stays an explicit, uniform convention (the Active scope below) instead of
// ORM magic that individual queries could accidentally Unscoped away.
type SoftDelete struct {
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the row has been soft-deleted.
func (s SoftDelete) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Active is the single soft-delete query modifier: a row takes part in reads,
// counts and bulk updates if and only if deleted_at IS NULL. Repositories
// apply it with db.Scopes(common.Active).
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}
