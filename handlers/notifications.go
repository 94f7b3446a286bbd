package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListNotifications(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	notifications, err := h.Notifications.ListForRecipient(ctx, clerkID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handlers) DeleteNotification(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Notifications.Delete(ctx, clerkID(c), c.Param("notificationId")); err != nil {
		respondError(c, err)
		return
	}

	h.notifyStale(c, "notifications")
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted successfully"})
}
