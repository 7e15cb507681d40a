// File: internal/shared/core.go
package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Identity is the verified caller identity handed back by a TokenVerifier.
// It carries only what the auth provider asserts; the local user record is
// resolved separately by the user service.
type Identity struct {
	Provider    string
	ProviderUID string
	Email       string
	DisplayName string
}

// User represents a user as seen by other modules.
type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       *string    `json:"email,omitempty"`
	DisplayName *string    `json:"display_name,omitempty"`
	Role        string     `json:"role"`
	Provider    string     `json:"auth_provider"`
	ProviderUID string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
}

// TokenVerifier validates a bearer token with the external auth provider and
// returns the identity it asserts. Implemented by the Firebase adapter in
// production and by the dev JWT verifier in development and tests.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// SessionRevoker invalidates a user's sessions at the auth provider. Only the
// Firebase adapter implements it; the dev verifier issues stateless tokens
// that cannot be revoked, so the injector leaves it nil in that mode.
type SessionRevoker interface {
	RevokeRefreshTokens(ctx context.Context, providerUID string) error
}

// Service defines the user operations other modules depend on.
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetOrCreateFromIdentity resolves a verified provider identity to the
	// local user row, creating it on first contact.
	GetOrCreateFromIdentity(ctx context.Context, identity *Identity) (usr *User, wasCreated bool, err error)
}
