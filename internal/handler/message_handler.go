package handler

import (
	"errors"
	"strconv"

	"art-market/internal/service"
	"art-market/pkg/jwt"
	"art-market/pkg/response"

	"github.com/gin-gonic/gin"
)

// MessageHandler exposes the messaging subsystem over REST. All routes
// require a verified identity; the websocket gateway shares the same
// service so both transports behave identically.
type MessageHandler struct {
	service *service.MessageService
}

func NewMessageHandler(s *service.MessageService) *MessageHandler {
	return &MessageHandler{service: s}
}

// GetConversations GET /api/messages/conversations
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID := jwt.GetUserID(c)

	conversations, err := h.service.ListConversations(userID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, gin.H{"conversations": conversations})
}

// GetThread GET /api/messages/:other_user_id
// Fetching a thread marks every message addressed to the caller as read.
func (h *MessageHandler) GetThread(c *gin.Context) {
	userID := jwt.GetUserID(c)
	otherUserID, ok := paramUserID(c)
	if !ok {
		return
	}

	messages, err := h.service.GetThread(userID, otherUserID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, gin.H{"messages": messages})
}

// Send POST /api/messages
func (h *MessageHandler) Send(c *gin.Context) {
	userID := jwt.GetUserID(c)

	type req struct {
		ReceiverID uint   `json:"receiver_id" binding:"required"`
		Content    string `json:"content" binding:"required"`
		OrderRef   *uint  `json:"order_ref"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Send(userID, r.ReceiverID, r.Content, r.OrderRef)
	if err != nil {
		failWith(c, err)
		return
	}

	payload := gin.H{
		"message":       result.Message,
		"was_sanitized": result.WasSanitized,
	}
	if result.Warning != "" {
		payload["warning"] = result.Warning
	}
	response.Created(c, payload)
}

// MarkRead PUT /api/messages/:other_user_id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := jwt.GetUserID(c)
	otherUserID, ok := paramUserID(c)
	if !ok {
		return
	}

	if err := h.service.MarkRead(userID, otherUserID); err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, gin.H{})
}

// GetStatus GET /api/messages/:other_user_id/status
func (h *MessageHandler) GetStatus(c *gin.Context) {
	userID := jwt.GetUserID(c)
	otherUserID, ok := paramUserID(c)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(userID, otherUserID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, gin.H{"status": status})
}

// GetPresence GET /api/messages/:other_user_id/presence
func (h *MessageHandler) GetPresence(c *gin.Context) {
	otherUserID, ok := paramUserID(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"presence": h.service.Presence(otherUserID)})
}

// Finalize POST /api/messages/:other_user_id/finalize
func (h *MessageHandler) Finalize(c *gin.Context) {
	userID := jwt.GetUserID(c)
	otherUserID, ok := paramUserID(c)
	if !ok {
		return
	}

	status, err := h.service.Finalize(userID, otherUserID)
	if err != nil {
		failWith(c, err)
		return
	}
	response.OK(c, gin.H{"status": status})
}

// paramUserID parses the :other_user_id route parameter; writes the 400
// itself when invalid.
func paramUserID(c *gin.Context) (uint, bool) {
	raw := c.Param("other_user_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return uint(id), true
}

// failWith maps service sentinels onto the HTTP error taxonomy.
func failWith(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSelfMessage),
		errors.Is(err, service.ErrEmptyContent):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrReceiverNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotParticipant),
		errors.Is(err, service.ErrConversationFinalized):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, "internal error")
	}
}
