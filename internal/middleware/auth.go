// File: internal/middleware/auth.go
package middleware

import (
	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware creates a Gin middleware that verifies the bearer token with
// the auth provider and resolves the caller's local user row. Requests
// without a valid identity are rejected before any handler runs.
func AuthMiddleware(verifier shared.TokenVerifier, users shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.GetTokenFromContext(c)
		if token == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header must be 'Bearer <token>'."))
			return
		}

		identity, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Token verification failed."))
			return
		}

		usr, _, err := users.GetOrCreateFromIdentity(c.Request.Context(), identity)
		if err != nil {
			logger.Error("Failed to resolve user from verified identity",
				zap.Error(err), zap.String("providerUID", identity.ProviderUID))
			common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not resolve user identity."))
			return
		}

		c.Set(common.UserIDKey, usr.ID)
		c.Set(common.UserRoleKey, usr.Role)
		c.Set(common.ProviderUIDKey, identity.ProviderUID)
		if usr.Email != nil {
			c.Set(common.UserEmailKey, *usr.Email)
		}

		logger.Debug("User authenticated",
			zap.String("userID", usr.ID.String()),
			zap.String("role", usr.Role),
		)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware to check if the authenticated user
// has one of the required roles. Must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}

		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}
