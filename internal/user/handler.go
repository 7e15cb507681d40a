// File: internal/user/handler.go
package user

import (
	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service shared.Service
	revoker shared.SessionRevoker
	logger  *zap.Logger
}

// NewHandler creates a new user handler. revoker may be nil when the auth
// provider does not support session revocation.
func NewHandler(service shared.Service, revoker shared.SessionRevoker, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		revoker: revoker,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for user operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	userGroup := router.Group("/users", authMW)
	{
		userGroup.GET("/me", h.getMe)
		userGroup.GET("/:id", h.getUserByID)
		userGroup.POST("/:id/revoke-sessions", h.revokeSessions)
	}
}

func (h *Handler) getMe(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		h.logger.Error("User ID not found in context for /me", zap.String("path", c.Request.URL.Path))
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User profile retrieved successfully.", usr)
}

func (h *Handler) getUserByID(c *gin.Context) {
	paramID := c.Param("id")
	userIDToFetch, err := uuid.Parse(paramID)
	if err != nil {
		h.logger.Warn("Invalid user ID format in URL parameter", zap.String("paramID", paramID), zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}
	requestingUserID := common.GetUserIDFromContext(c)
	requestingUserRole := common.GetUserRoleFromContext(c)
	if requestingUserRole != common.RoleAdmin && requestingUserID != userIDToFetch {
		h.logger.Warn("User attempting to fetch another user's profile without admin rights",
			zap.String("requestingUserID", requestingUserID.String()),
			zap.String("targetUserID", userIDToFetch.String()))
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You are not authorized to view this profile."))
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), userIDToFetch)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "User retrieved successfully.", usr)
}

// revokeSessions invalidates all of the target user's sessions at the auth
// provider. Admin-only off-boarding operation; the local row is untouched.
func (h *Handler) revokeSessions(c *gin.Context) {
	if common.GetUserRoleFromContext(c) != common.RoleAdmin {
		common.RespondWithError(c, common.ErrForbidden.WithDetails("Only administrators can revoke sessions."))
		return
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid user ID format."))
		return
	}
	if h.revoker == nil {
		common.RespondWithError(c, common.ErrServiceUnavailable.WithDetails("Session revocation is not supported by the active auth provider."))
		return
	}
	usr, err := h.service.GetUserByID(c.Request.Context(), targetID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.revoker.RevokeRefreshTokens(c.Request.Context(), usr.ProviderUID); err != nil {
		h.logger.Error("Session revocation failed",
			zap.Error(err), zap.String("targetUserID", targetID.String()))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Failed to revoke the user's sessions."))
		return
	}
	common.RespondOK(c, "User sessions revoked successfully.", nil)
}
