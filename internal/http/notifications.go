package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type markReadRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	notifications, err := h.notifications.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *Handler) unreadNotifications(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	count, err := h.notifications.UnreadCount(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) markNotificationsRead(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
			return
		}
		ids = append(ids, id)
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), principal, ids)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}
