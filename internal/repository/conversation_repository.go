package repository

import (
	"errors"
	"time"

	"art-market/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository stores one finalization record per conversation id.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a ConversationRepository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetByConversationID returns the finalization record, or (nil, nil) when
// no finalize call has happened yet.
func (r *ConversationRepository) GetByConversationID(conversationID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.Where("conversation_id = ?", conversationID).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// UpsertFinalize creates the record on first finalize and overwrites
// finalized_by/finalized_at on repeat calls. The record is never cleared.
func (r *ConversationRepository) UpsertFinalize(conversationID string, byUserID uint, at time.Time) error {
	conversation := &model.Conversation{
		ConversationID: conversationID,
		FinalizedBy:    &byUserID,
		FinalizedAt:    &at,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "conversation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"finalized_by", "finalized_at"}),
	}).Create(conversation).Error
}
