package models

import (
	"time"

	"github.com/google/uuid"
)

// ReactionEmojis is the fixed stamp palette. Toggle requests outside this set
// are rejected before any persistence call.
var ReactionEmojis = []string{"👍", "❤️", "😊", "🎉", "👏", "🔥", "💯", "✨"}

// ValidReactionEmoji reports whether emoji belongs to the palette.
func ValidReactionEmoji(emoji string) bool {
	for _, e := range ReactionEmojis {
		if e == emoji {
			return true
		}
	}
	return false
}

// ReportReaction is one user's emoji stamp on a report. The composite unique
// index makes toggling idempotent under concurrent double-invocation: the
// losing insert fails with a duplicate-key error instead of creating a
// second row.
type ReportReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_reaction_target_user_emoji" json:"report_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_reaction_target_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"size:16;not null;uniqueIndex:idx_report_reaction_target_user_emoji" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	Report    Report    `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

// CommentReaction mirrors ReportReaction for comment targets.
type CommentReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CommentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_reaction_target_user_emoji" json:"comment_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_comment_reaction_target_user_emoji" json:"user_id"`
	Emoji     string    `gorm:"size:16;not null;uniqueIndex:idx_comment_reaction_target_user_emoji" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
	Comment   Comment   `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}
