package handler

import (
	"strconv"

	"art-market/internal/service"
	"art-market/pkg/jwt"
	"art-market/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	service *service.NotificationService
}

func NewNotificationHandler(s *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: s}
}

// List GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID := jwt.GetUserID(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	notifications, err := h.service.ListByUser(userID, limit)
	if err != nil {
		response.InternalError(c, "internal error")
		return
	}
	response.OK(c, gin.H{"notifications": notifications})
}

// MarkRead PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := jwt.GetUserID(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid notification id")
		return
	}

	if err := h.service.MarkRead(uint(id), userID); err != nil {
		response.InternalError(c, "internal error")
		return
	}
	response.OK(c, gin.H{})
}
