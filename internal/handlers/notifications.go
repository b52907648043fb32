package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stackit-qa/stackit/backend/internal/models"
	"github.com/stackit-qa/stackit/backend/internal/response"
	"github.com/stackit-qa/stackit/backend/internal/service"
)

type NotificationHandler struct {
	notifications *service.NotificationService
	logger        logrus.FieldLogger
}

func NewNotificationHandler(notifications *service.NotificationService, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

type notificationList struct {
	Notifications []models.NotificationView `json:"notifications"`
	UnreadCount   int64                     `json:"unreadCount"`
}

func (h *NotificationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := caller(c).UserID

	list, err := h.notifications.List(ctx, userID)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	unread, err := h.notifications.UnreadCount(ctx, userID)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}

	response.OK(c, "Notifications fetched successfully", notificationList{
		Notifications: list,
		UnreadCount:   unread,
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), caller(c).UserID, c.Param("id")); err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), caller(c).UserID)
	if err != nil {
		response.Error(c, err, h.logger)
		return
	}
	response.OK(c, "All notifications marked as read", gin.H{"updated": n})
}
