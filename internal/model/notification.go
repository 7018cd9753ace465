package model

import "time"

// Notification types.
const (
	NotificationNewMessage   = "new_message"
	NotificationNewRequest   = "new_request"
	NotificationNewReview    = "new_review"
	NotificationOrderUpdated = "order_updated"
)

// Notification is a user-facing feed entry. Creation is best-effort: a
// failed insert is logged and never blocks the operation that produced it.
type Notification struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	Type      string     `gorm:"type:varchar(32);not null" json:"type"`
	Title     string     `gorm:"type:varchar(128);not null" json:"title"`
	Body      string     `gorm:"type:varchar(255)" json:"body"`
	Link      string     `gorm:"type:varchar(255)" json:"link"`
	Read      bool       `gorm:"default:false" json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
