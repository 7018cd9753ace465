package model

import "time"

// Message is one unit of the append-only conversation log. Content always
// holds the sanitizer output; raw text never reaches this table. Rows are
// never updated after creation except the Read/ReadAt pair, and never
// deleted.
type Message struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID string     `gorm:"type:varchar(64);not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	ReceiverID     uint       `gorm:"not null;index" json:"receiver_id"`
	OrderRef       *uint      `gorm:"index" json:"order_ref,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Read           bool       `gorm:"default:false" json:"read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (Message) TableName() string { return "message" }
