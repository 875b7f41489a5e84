// Package postgres implements the storage contract on PostgreSQL via GORM.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translate maps GORM's translated driver errors onto the storage sentinels.
// Requires TranslateError: true on the gorm.Config. Timeouts and connection
// failures become ErrUnavailable so callers can tell a flaky backend apart
// from a permanent denial.
func translate(err error) error {
	var netErr net.Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return storage.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return storage.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return storage.ErrForeignKey
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	case errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	default:
		return err
	}
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, translate(err)
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Save(user).Error)
}

// --- Refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return translate(s.db.WithContext(ctx).Create(token).Error)
}

func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND revoked = false", tokenHash).
		First(&token).Error
	if err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	return translate(s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ?", id).
		Update("revoked", true).Error)
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	return translate(s.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error)
}

// --- Reports ---

// scoped applies a ReportScope as a query predicate, mirroring the visibility
// rule set. The zero scope is unrestricted.
func scoped(scope storage.ReportScope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case scope.PublicOnly:
			return db.Where("is_public = true")
		case scope.ViewerID != nil:
			return db.Where("user_id = ? OR is_public = true", *scope.ViewerID)
		default:
			return db
		}
	}
}

func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	return translate(s.db.WithContext(ctx).Create(report).Error)
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID, scope storage.ReportScope) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Scopes(scoped(scope)).
		First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (s *Store) ListReportsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("report_date DESC, created_at DESC").
		Find(&reports).Error
	return reports, translate(err)
}

func (s *Store) ListPublicReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	q := s.db.WithContext(ctx).Model(&models.Report{}).Where("is_public = true")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	err := q.Order("report_date DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, total, translate(err)
}

func (s *Store) UpdateReport(ctx context.Context, report *models.Report) error {
	return translate(s.db.WithContext(ctx).Save(report).Error)
}

func (s *Store) DeleteReport(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Report{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- Comments ---

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(comment).Error)
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *Store) ListComments(ctx context.Context, reportID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, translate(err)
}

// --- Reactions ---

func (s *Store) ListReactions(ctx context.Context, kind storage.ReactionKind, targetIDs []uuid.UUID) ([]storage.ReactionRow, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	rows := make([]storage.ReactionRow, 0)

	switch kind {
	case storage.ReactionKindReport:
		var reactions []models.ReportReaction
		err := s.db.WithContext(ctx).
			Where("report_id IN ?", targetIDs).
			Order("created_at ASC").
			Find(&reactions).Error
		if err != nil {
			return nil, translate(err)
		}
		for _, r := range reactions {
			rows = append(rows, storage.ReactionRow{
				ID: r.ID, TargetID: r.ReportID, UserID: r.UserID,
				Emoji: r.Emoji, CreatedAt: r.CreatedAt,
			})
		}
	case storage.ReactionKindComment:
		var reactions []models.CommentReaction
		err := s.db.WithContext(ctx).
			Where("comment_id IN ?", targetIDs).
			Order("created_at ASC").
			Find(&reactions).Error
		if err != nil {
			return nil, translate(err)
		}
		for _, r := range reactions {
			rows = append(rows, storage.ReactionRow{
				ID: r.ID, TargetID: r.CommentID, UserID: r.UserID,
				Emoji: r.Emoji, CreatedAt: r.CreatedAt,
			})
		}
	}
	return rows, nil
}

func (s *Store) CreateReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) error {
	var err error
	switch kind {
	case storage.ReactionKindReport:
		err = s.db.WithContext(ctx).Create(&models.ReportReaction{
			ReportID: targetID, UserID: userID, Emoji: emoji,
		}).Error
	case storage.ReactionKindComment:
		err = s.db.WithContext(ctx).Create(&models.CommentReaction{
			CommentID: targetID, UserID: userID, Emoji: emoji,
		}).Error
	}
	return translate(err)
}

func (s *Store) DeleteReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error) {
	var res *gorm.DB
	switch kind {
	case storage.ReactionKindReport:
		res = s.db.WithContext(ctx).
			Where("report_id = ? AND user_id = ? AND emoji = ?", targetID, userID, emoji).
			Delete(&models.ReportReaction{})
	case storage.ReactionKindComment:
		res = s.db.WithContext(ctx).
			Where("comment_id = ? AND user_id = ? AND emoji = ?", targetID, userID, emoji).
			Delete(&models.CommentReaction{})
	default:
		return false, nil
	}
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) HasReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error) {
	var count int64
	var err error
	switch kind {
	case storage.ReactionKindReport:
		err = s.db.WithContext(ctx).Model(&models.ReportReaction{}).
			Where("report_id = ? AND user_id = ? AND emoji = ?", targetID, userID, emoji).
			Count(&count).Error
	case storage.ReactionKindComment:
		err = s.db.WithContext(ctx).Model(&models.CommentReaction{}).
			Where("comment_id = ? AND user_id = ? AND emoji = ?", targetID, userID, emoji).
			Count(&count).Error
	}
	return count > 0, translate(err)
}

// --- Templates ---

func (s *Store) CountTemplates(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Template{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, translate(err)
}

func (s *Store) CreateTemplate(ctx context.Context, template *models.Template) error {
	return translate(s.db.WithContext(ctx).Create(template).Error)
}

func (s *Store) ListTemplates(ctx context.Context, userID uuid.UUID) ([]models.Template, error) {
	var templates []models.Template
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, translate(err)
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	var template models.Template
	if err := s.db.WithContext(ctx).First(&template, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Template{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- Notifications ---

func (s *Store) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return translate(s.db.WithContext(ctx).Create(notification).Error)
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, translate(err)
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	return translate(s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true).Error)
}
