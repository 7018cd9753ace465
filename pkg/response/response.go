package response

import (
	"net/http"
	"time"

	"art-market/internal/model"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with a {"success": ...} JSON envelope. Success
// payload fields are merged into the envelope; failures carry a message and
// a meaningful HTTP status.

// OK writes a 200 envelope with the payload fields merged in.
func OK(c *gin.Context, payload gin.H) {
	write(c, http.StatusOK, payload)
}

// Created writes a 201 envelope with the payload fields merged in.
func Created(c *gin.Context, payload gin.H) {
	write(c, http.StatusCreated, payload)
}

func write(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Fail writes a failure envelope with the given HTTP status.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message)
}

// UserView is the public identity of a user: the display name is the artist
// display name when the user has an artist profile, the account name
// otherwise. Storage models always carry plain ids; this view is assembled
// separately and never mixed into them.
type UserView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// NewUserView builds the enriched identity for a user and their optional
// artist profile.
func NewUserView(user *model.User, artist *model.Artist) *UserView {
	if user == nil {
		return nil
	}
	view := &UserView{
		ID:          user.ID,
		Name:        user.Name,
		Avatar:      user.Avatar,
		DisplayName: user.Name,
		Role:        user.Role,
	}
	if artist != nil {
		view.DisplayName = artist.DisplayName
		if artist.ProfileImage != "" {
			view.Avatar = artist.ProfileImage
		}
	}
	return view
}

// ConversationView is one entry of the conversation list: the latest
// message exchanged with one counterpart, enriched with their identity.
type ConversationView struct {
	MessageID      uint      `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	OtherUser      *UserView `json:"other_user"`
	LastMessage    string    `json:"last_message"`
	CreatedAt      time.Time `json:"created_at"`
	Read           bool      `json:"read"`
	IsSender       bool      `json:"is_sender"`
	UnreadCount    int64     `json:"unread_count"`
}

// PresenceView reports whether a user is currently reachable.
type PresenceView struct {
	UserID   uint       `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

// StatusView reports the finalization state of a conversation.
type StatusView struct {
	IsFinalized bool       `json:"is_finalized"`
	FinalizedBy *uint      `json:"finalized_by,omitempty"`
	FinalizedAt *time.Time `json:"finalized_at,omitempty"`
}
