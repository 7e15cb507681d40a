// File: internal/user/model.go
package user

import (
	"time"

	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"
)

// User represents the user model in the database. Rows exist only to anchor
// provider identities and per-user data; credentials live with the auth
// provider.
type User struct {
	common.BaseModel
	Email       *string `gorm:"type:varchar(255);uniqueIndex"`
	DisplayName *string `gorm:"type:varchar(255)"`
	Provider    string  `gorm:"type:varchar(50);not null;default:'firebase';uniqueIndex:idx_provider_uid"`
	ProviderUID string  `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_uid"`
	Role        string  `gorm:"type:varchar(50);not null;default:'user'"`
	LastSeenAt  *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// ToShared converts a User model to the cross-module representation.
func ToShared(u *User) *shared.User {
	return &shared.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		Provider:    u.Provider,
		ProviderUID: u.ProviderUID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastSeenAt:  u.LastSeenAt,
	}
}
