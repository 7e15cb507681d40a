// File: internal/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceImplementation implements the shared.Service interface.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ shared.Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger,
	}
}

// GetUserByID returns a user by their local ID.
func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToShared(dbUser), nil
}

// GetOrCreateFromIdentity resolves a verified provider identity to the local
// user row, creating it on the first authenticated request. Existing rows get
// their last-seen timestamp refreshed; a failed refresh is logged, not
// surfaced, since the request can proceed without it.
func (s *ServiceImplementation) GetOrCreateFromIdentity(ctx context.Context, identity *shared.Identity) (*shared.User, bool, error) {
	dbUser, err := s.repo.FindByProviderUID(ctx, identity.Provider, identity.ProviderUID)
	if err == nil {
		now := time.Now()
		dbUser.LastSeenAt = &now
		if updateErr := s.repo.Update(ctx, dbUser); updateErr != nil {
			s.logger.Warn("Failed to update last seen timestamp",
				zap.Error(updateErr), zap.String("userID", dbUser.ID.String()))
		}
		return ToShared(dbUser), false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Failed to look up user by provider identity",
			zap.Error(err), zap.String("provider", identity.Provider), zap.String("providerUID", identity.ProviderUID))
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	now := time.Now()
	newUser := &User{
		Provider:    identity.Provider,
		ProviderUID: identity.ProviderUID,
		Role:        common.RoleUser,
		LastSeenAt:  &now,
	}
	if identity.Email != "" {
		email := identity.Email
		newUser.Email = &email
	}
	if identity.DisplayName != "" {
		name := identity.DisplayName
		newUser.DisplayName = &name
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		// A concurrent first request may have created the row already.
		if apiErr, ok := common.IsAPIError(err); ok && apiErr.Code == common.ErrConflict.Code {
			existing, findErr := s.repo.FindByProviderUID(ctx, identity.Provider, identity.ProviderUID)
			if findErr == nil {
				return ToShared(existing), false, nil
			}
		}
		s.logger.Error("Failed to create user from provider identity",
			zap.Error(err), zap.String("providerUID", identity.ProviderUID))
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created from provider identity",
		zap.String("userID", newUser.ID.String()), zap.String("provider", identity.Provider))
	return ToShared(newUser), true, nil
}
