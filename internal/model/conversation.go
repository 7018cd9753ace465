package model

import "time"

// Conversation is the finalization record for one derived conversation id,
// created lazily on the first finalize call. FinalizedAt set means the
// conversation is concluded; this subsystem never clears it. Repeat
// finalize calls overwrite FinalizedBy/FinalizedAt (last writer wins).
type Conversation struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"conversation_id"`
	FinalizedBy    *uint      `json:"finalized_by,omitempty"`
	FinalizedAt    *time.Time `json:"finalized_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (Conversation) TableName() string { return "conversation" }
