package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	IsPublic   bool     `json:"is_public"`
	ReportDate string   `json:"report_date"` // YYYY-MM-DD, defaults to today
	Images     []string `json:"images"`
}

type UpdateReportRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	IsPublic   *bool     `json:"is_public"`
	ReportDate *string   `json:"report_date"`
	Images     *[]string `json:"images"`
}

type SetVisibilityRequest struct {
	IsPublic bool `json:"is_public"`
}

type ReportResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPublic   bool      `json:"is_public"`
	ReportDate string    `json:"report_date"`
	Images     []string  `json:"images"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StampUser is one member of a stamp group.
type StampUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// StampGroup is the per-emoji aggregate rendered on reports and comments.
type StampGroup struct {
	Emoji          string      `json:"emoji"`
	Count          int         `json:"count"`
	Users          []StampUser `json:"users"`
	HasCurrentUser bool        `json:"has_current_user"`
}

// CommentResponse is a comment decorated with its author name and stamps.
type CommentResponse struct {
	ID         uuid.UUID    `json:"id"`
	ReportID   uuid.UUID    `json:"report_id"`
	UserID     uuid.UUID    `json:"user_id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"created_at"`
	AuthorName string       `json:"author_name"`
	Stamps     []StampGroup `json:"stamps"`
}

// ReportDetailResponse is the detail page payload: the report plus its
// aggregated stamps and decorated comments.
type ReportDetailResponse struct {
	ReportResponse
	AuthorName string            `json:"author_name"`
	Stamps     []StampGroup      `json:"stamps"`
	Comments   []CommentResponse `json:"comments"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

type ToggleReactionRequest struct {
	Emoji string `json:"emoji"`
}

type ToggleReactionResponse struct {
	Active bool `json:"active"`
}

type CreateTemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type ShareEmailRequest struct {
	RecipientEmail string `json:"recipient_email"`
}
