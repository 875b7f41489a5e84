package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationKindComment  = "comment"
	NotificationKindReaction = "reaction"
)

// Notification is created when a comment or reaction targets another user's
// content, and consumed by the realtime stream. Mutated only via mark-read.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind      string     `gorm:"size:20;not null" json:"kind"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Message   string     `gorm:"size:1000;not null" json:"message"`
	ReportID  *uuid.UUID `gorm:"type:uuid" json:"report_id,omitempty"`
	CommentID *uuid.UUID `gorm:"type:uuid" json:"comment_id,omitempty"`
	IsRead    bool       `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}
