// internal/interfaces/http/handlers/notification.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gooddrive/autoparts-backend/internal/domain/notification"
)

// NotificationHandler handles notification requests
type NotificationHandler struct {
	service *notification.Service
	log     *logrus.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service *notification.Service, log *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		log:     log,
	}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	var req notification.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	notifications, total, err := h.service.List(&req)
	if err != nil {
		h.log.WithError(err).Error("failed to list notifications")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": total})
}

// MarkRead handles POST /notifications/:id/mark_read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := h.service.MarkRead(id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		h.log.WithError(err).WithField("notification_id", id).Error("failed to mark notification read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles POST /notifications/mark_all_read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	count, err := h.service.MarkAllRead()
	if err != nil {
		h.log.WithError(err).Error("failed to mark notifications read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "count": count})
}

// RunChecks handles POST /notifications/check
func (h *NotificationHandler) RunChecks(c *gin.Context) {
	result, err := h.service.RunChecks()
	if err != nil {
		h.log.WithError(err).Error("notification checks failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run notification checks"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checks finished", "data": result})
}
