package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is a dated Markdown daily report. ReportDate is the calendar day the
// report covers, independent of CreatedAt. Content is stored pre-normalized
// (hard line breaks applied at save time, never on render). Title may be
// empty, in which case the display title is derived from ReportDate.
type Report struct {
	ID         uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title      string                      `gorm:"size:255" json:"title"`
	Content    string                      `gorm:"type:text;not null" json:"content"`
	IsPublic   bool                        `gorm:"not null;default:false;index" json:"is_public"`
	ReportDate time.Time                   `gorm:"type:date;not null;index" json:"report_date"`
	Images     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"images"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	DeletedAt  gorm.DeletedAt              `gorm:"index" json:"-"`
	User       User                        `gorm:"foreignKey:UserID" json:"-"`
}
