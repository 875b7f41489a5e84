package models

import (
	"time"

	"github.com/google/uuid"
)

// Template is a reusable report body. Names are unique per user, which also
// makes default-template provisioning race-safe: the losing concurrent insert
// fails with a duplicate-key error and is treated as success.
type Template struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_templates_user_name" json:"user_id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_templates_user_name" json:"name"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
