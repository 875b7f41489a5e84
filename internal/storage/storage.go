// Package storage defines the persistence contract consumed by the services
// layer, with a PostgreSQL implementation and an in-memory implementation
// used as a test substitute.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
)

var (
	ErrNotFound    = errors.New("storage: record not found")
	ErrDuplicate   = errors.New("storage: duplicate key")
	ErrForeignKey  = errors.New("storage: foreign key violation")
	ErrUnavailable = errors.New("storage: backend unavailable")
)

// ReactionKind selects which of the two parallel reaction relations an
// operation targets.
type ReactionKind string

const (
	ReactionKindReport  ReactionKind = "report"
	ReactionKindComment ReactionKind = "comment"
)

// ReportScope is the row filter a visibility decision compiles down to.
// The zero value is unrestricted and is reserved for owner-side mutations
// that perform their own ownership check.
type ReportScope struct {
	// PublicOnly restricts to is_public = true.
	PublicOnly bool
	// ViewerID, when set, restricts to rows owned by the viewer OR public.
	ViewerID *uuid.UUID
}

// ReactionRow is a raw reaction record, shape-identical for both relations.
type ReactionRow struct {
	ID        uuid.UUID
	TargetID  uuid.UUID
	UserID    uuid.UUID
	Emoji     string
	CreatedAt time.Time
}

// Store is the persistence contract. All reads that take a ReportScope apply
// it as a query predicate; a scoped miss and a true miss are both ErrNotFound.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id uuid.UUID) error
	RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error

	// Reports
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID, scope ReportScope) (*models.Report, error)
	ListReportsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Report, error)
	ListPublicReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error)
	UpdateReport(ctx context.Context, report *models.Report) error
	DeleteReport(ctx context.Context, id uuid.UUID) error

	// Comments
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListComments(ctx context.Context, reportID uuid.UUID) ([]models.Comment, error)

	// Reactions. ListReactions returns rows for the whole batch in one round
	// trip, ordered created_at ascending. DeleteReaction reports whether a
	// row was actually removed; deleting a missing row is not an error.
	ListReactions(ctx context.Context, kind ReactionKind, targetIDs []uuid.UUID) ([]ReactionRow, error)
	CreateReaction(ctx context.Context, kind ReactionKind, targetID, userID uuid.UUID, emoji string) error
	DeleteReaction(ctx context.Context, kind ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error)
	HasReaction(ctx context.Context, kind ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error)

	// Templates
	CountTemplates(ctx context.Context, userID uuid.UUID) (int64, error)
	CreateTemplate(ctx context.Context, template *models.Template) error
	ListTemplates(ctx context.Context, userID uuid.UUID) ([]models.Template, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	// Notifications
	CreateNotification(ctx context.Context, notification *models.Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error
}
