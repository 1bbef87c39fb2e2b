package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"care-portal-server/internal/middleware"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// NotificationHandler serves the in-app notification feed.
type NotificationHandler struct {
	Notifications *store.NotificationStore
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{Notifications: store.NewNotificationStore(db)}
}

// List returns the caller's notifications, newest first. ?unread=true limits
// the result to unread entries.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	notifications, err := h.Notifications.ListForUser(userID, c.Query("unread") == "true")
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Notifications fetched", notifications)
}

// MarkRead stamps one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Notifications.MarkRead(c.Param("id"), userID); err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "Notification marked as read", nil)
}

// MarkAllRead stamps every unread notification as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	if err := h.Notifications.MarkAllRead(userID); err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "All notifications marked as read", nil)
}
