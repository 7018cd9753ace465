package model

import (
	"time"

	"gorm.io/gorm"
)

// User account. Role: user/artist/admin. Passwords are stored as bcrypt
// hashes only. Banned accounts are refused at authentication time.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(128);not null" json:"name"`
	Email        string         `gorm:"type:varchar(128);not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Role         string         `gorm:"type:varchar(32);default:'user'" json:"role"`
	Avatar       string         `gorm:"type:varchar(255)" json:"avatar"`
	City         string         `gorm:"type:varchar(128)" json:"city"`
	IsBanned     bool           `gorm:"default:false" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"-"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }
