package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"carexpert-server/internal/middleware"
	"carexpert-server/internal/notify"
	"carexpert-server/internal/utils"
)

// NotificationHandler handles notification requests. It is mounted under both
// the patient and doctor route groups; the dispatcher is recipient-generic.
type NotificationHandler struct {
	Dispatcher *notify.Dispatcher
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(dispatcher *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{Dispatcher: dispatcher}
}

// List returns the caller's notifications newest-first. Pass ?unread=true to
// only see unread ones.
func (h *NotificationHandler) List(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.Dispatcher.ListForRecipient(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Notifications fetched successfully", notifications)
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID := c.Param("id")
	if _, err := uuid.Parse(notificationID); err != nil {
		utils.BadRequest(c, "Invalid Notification ID format")
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	notification, err := h.Dispatcher.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Notification marked as read", notification)
}

// MarkAllRead marks all of the caller's notifications as read and reports how
// many were updated.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.Dispatcher.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.DomainError(c, err)
		return
	}

	utils.Success(c, "Notifications marked as read", gin.H{"updated": count})
}
