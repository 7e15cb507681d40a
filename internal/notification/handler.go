// File: internal/notification/handler.go
package notification

import (
	"errors"
	"io"
	"time"

	"companyos_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const streamKeepaliveInterval = 25 * time.Second

// Handler struct holds dependencies for notification handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations. The group
// passed in must already carry the auth middleware; creation additionally
// requires the admin role since ordinary users never mint notifications for
// each other.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, adminMW gin.HandlerFunc) {
	notificationGroup := router.Group("/notifications")
	{
		notificationGroup.GET("", h.listNotifications)
		notificationGroup.POST("", adminMW, h.createNotification)
		notificationGroup.GET("/count", h.getUnreadCount)
		notificationGroup.GET("/stream", h.streamChanges)
		notificationGroup.POST("/read-all", h.markAllAsRead)
		notificationGroup.PATCH("/:id", h.markAsRead)
		// Alias kept for clients that call the verb-suffixed form.
		notificationGroup.PATCH("/:id/read", h.markAsRead)
		notificationGroup.DELETE("/:id", h.deleteNotification)
		notificationGroup.GET("/preferences", h.getPreferences)
		notificationGroup.PATCH("/preferences", h.updatePreference)
	}
}

// unreadCountResponse is the payload for GET /notifications/count.
type unreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// markAllReadResponse reports how many notifications a read-all touched.
type markAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func (h *Handler) listNotifications(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	filters := parseListFilters(c)
	limit, offset := common.GetLimitOffsetParams(c)

	items, pagination, err := h.service.ListNotifications(c.Request.Context(), userID, filters, limit, offset)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", items, pagination)
}

// parseListFilters reads the optional read/type/entity_type query parameters.
// Unrecognized values are dropped rather than rejected so that clients built
// against a newer enum degrade to an unfiltered listing.
func parseListFilters(c *gin.Context) ListFilters {
	var filters ListFilters
	switch c.Query("read") {
	case "true":
		v := true
		filters.Read = &v
	case "false":
		v := false
		filters.Read = &v
	}
	if raw := c.Query("type"); raw != "" {
		if t := NotificationType(raw); t.Known() {
			filters.Type = &t
		}
	}
	if raw := c.Query("entity_type"); raw != "" {
		if e := EntityType(raw); e.Known() {
			filters.EntityType = &e
		}
	}
	return filters
}

func (h *Handler) createNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	created, err := h.service.CreateNotification(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if created == nil {
		common.RespondOK(c, "Notification suppressed by recipient preferences.", nil)
		return
	}
	common.RespondCreated(c, "Notification created successfully.", created)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	count, err := h.service.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", unreadCountResponse{UnreadCount: count})
}

// streamChanges serves the live change feed over Server-Sent Events. Each
// event names what changed but carries no row data; clients re-fetch the
// listing or count they care about.
func (h *Handler) streamChanges(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	events, cancel := h.service.Subscribe(userID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	h.logger.Debug("SSE stream opened", zap.String("userID", userID.String()))

	keepalive := time.NewTicker(streamKeepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE stream closed by client", zap.String("userID", userID.String()))
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("change", event)
			c.Writer.Flush()
		case <-keepalive.C:
			if _, err := io.WriteString(c.Writer, ": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func (h *Handler) markAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllAsRead(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	updated, err := h.service.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", markAllReadResponse{Updated: updated})
}

func (h *Handler) deleteNotification(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}

	if err := h.service.DeleteNotification(c.Request.Context(), userID, notificationID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) getPreferences(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	prefs, err := h.service.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification preferences retrieved successfully.", prefs)
}

func (h *Handler) updatePreference(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return
	}

	pref, err := h.service.UpdatePreference(c.Request.Context(), userID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification preference updated successfully.", pref)
}
