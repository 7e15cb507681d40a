// File: internal/auth/handler.go
package auth

import (
	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler exposes the authenticated-caller surface. Token issuance lives with
// the external auth provider; this handler only reflects the resolved
// identity back.
type Handler struct {
	userService shared.Service
	logger      *zap.Logger
}

func NewHandler(userService shared.Service, logger *zap.Logger) *Handler {
	return &Handler{userService: userService, logger: logger}
}

// RegisterRoutes sets up the auth routes. The group passed in must already
// carry the auth middleware.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	usr, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Authenticated user retrieved successfully.", usr)
}
