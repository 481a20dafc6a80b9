package handler

import (
	"net/http"
	"studylife-go/internal/service"

	"github.com/gin-gonic/gin"
)

// NotificationHandler 处理通知列表与已读标记。
type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	items, err := h.notificationService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list notifications", err)
		return
	}
	respondOK(c, items)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), userID, id); err != nil {
		if service.IsNotFound(err) {
			respondError(c, http.StatusNotFound, err.Error(), nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update notification", err)
		return
	}
	respondOK(c, gin.H{"id": id, "read": true})
}
