package repository

import (
	"time"

	"art-market/internal/model"

	"gorm.io/gorm"
)

// MessageRepository is the durable append-only message log.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a MessageRepository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create appends one message. This is the only write path that creates
// message rows; content must already be sanitized by the caller.
func (r *MessageRepository) Create(message *model.Message) error {
	return r.db.Create(message).Error
}

// ListByConversation returns the full history of one conversation in
// creation order.
func (r *MessageRepository) ListByConversation(conversationID string) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead marks every unread message addressed to receiverID
// in the conversation as read. Idempotent: already-read rows are untouched
// and keep their original read_at.
func (r *MessageRepository) MarkConversationRead(conversationID string, receiverID uint) error {
	return r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND `read` = ?", conversationID, receiverID, false).
		Updates(map[string]interface{}{"read": true, "read_at": time.Now()}).Error
}

// LatestPerConversation returns the most recent message of each
// conversation the user participates in, newest activity first. The latest
// row per conversation is picked by MAX(id), which also breaks ties between
// identical timestamps deterministically.
func (r *MessageRepository) LatestPerConversation(userID uint, limit int) ([]*model.Message, error) {
	sub := r.db.Model(&model.Message{}).
		Select("MAX(id)").
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("conversation_id")

	var messages []*model.Message
	err := r.db.Where("id IN (?)", sub).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// UnreadCountByConversation returns, per conversation id, how many unread
// messages are addressed to the user. Used to rebuild cache counters.
func (r *MessageRepository) UnreadCountByConversation(userID uint) (map[string]int64, error) {
	type row struct {
		ConversationID string
		Count          int64
	}
	var rows []row
	err := r.db.Model(&model.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("receiver_id = ? AND `read` = ?", userID, false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.ConversationID] = r.Count
	}
	return counts, nil
}
