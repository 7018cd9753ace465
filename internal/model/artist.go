package model

import (
	"time"

	"gorm.io/gorm"
)

// Artist profile, one per user with the artist role. DisplayName takes
// precedence over the user's name wherever conversations are enriched.
type Artist struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	DisplayName  string         `gorm:"type:varchar(128);not null" json:"display_name"`
	Bio          string         `gorm:"type:text" json:"bio"`
	City         string         `gorm:"type:varchar(128);index" json:"city"`
	ProfileImage string         `gorm:"type:varchar(255)" json:"profile_image"`
	Rating       float64        `gorm:"default:0" json:"rating"`
	ReviewCount  int            `gorm:"default:0" json:"review_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Artist) TableName() string { return "artist" }
