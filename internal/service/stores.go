package service

import (
	"time"

	"art-market/internal/model"
)

// Persistence boundaries consumed by the services, satisfied by the
// repositories in internal/repository. Kept as interfaces so the
// orchestration logic can be tested against in-memory fakes.

// MessageStore is the durable append-only message log.
type MessageStore interface {
	Create(message *model.Message) error
	ListByConversation(conversationID string) ([]*model.Message, error)
	MarkConversationRead(conversationID string, receiverID uint) error
	LatestPerConversation(userID uint, limit int) ([]*model.Message, error)
	UnreadCountByConversation(userID uint) (map[string]int64, error)
}

// ConversationStore holds one finalization record per conversation.
type ConversationStore interface {
	GetByConversationID(conversationID string) (*model.Conversation, error)
	UpsertFinalize(conversationID string, byUserID uint, at time.Time) error
}

// UserLookup resolves accounts.
type UserLookup interface {
	GetByID(id uint) (*model.User, error)
	GetByIDs(ids []uint) ([]*model.User, error)
}

// ArtistLookup resolves artist profiles by owning user.
type ArtistLookup interface {
	GetByUserID(userID uint) (*model.Artist, error)
	GetByUserIDs(userIDs []uint) (map[uint]*model.Artist, error)
}

// NotificationStore persists notification feed entries.
type NotificationStore interface {
	Create(notification *model.Notification) error
	ListByUser(userID uint, limit int) ([]*model.Notification, error)
	MarkRead(id, userID uint) error
}

// Pusher delivers realtime payloads to a user's connected sessions.
// Delivery is best-effort: an offline user simply receives nothing.
type Pusher interface {
	SendToUser(userID uint, payload []byte)
	IsOnline(userID uint) bool
}

// Notifier accepts fire-and-forget notification entries. Enqueue must
// never block or fail the caller.
type Notifier interface {
	Enqueue(notification *model.Notification)
}
