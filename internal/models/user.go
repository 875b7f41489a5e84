package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is both the identity record and the public profile. Display fields
// (Name, AvatarURL) are refreshed on every sign-in.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"size:255" json:"name"`
	AvatarURL    *string        `gorm:"size:2048" json:"avatar_url"`
	AuthProvider string         `gorm:"size:50;default:'email'" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
