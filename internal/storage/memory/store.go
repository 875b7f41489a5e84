// Package memory implements the storage contract in memory. It backs the
// service tests and mirrors the constraints the PostgreSQL schema enforces:
// the (target, user, emoji) uniqueness on reactions, the (user, name)
// uniqueness on templates, and user foreign keys on dependent rows.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

type reactionKey struct {
	kind     storage.ReactionKind
	targetID uuid.UUID
	userID   uuid.UUID
	emoji    string
}

type Store struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*models.User
	usersByEmail  map[string]uuid.UUID
	refreshTokens map[string]*models.RefreshToken
	reports       map[uuid.UUID]*models.Report
	comments      map[uuid.UUID]*models.Comment
	reactions     map[reactionKey]*storage.ReactionRow
	templates     map[uuid.UUID]*models.Template
	notifications map[uuid.UUID]*models.Notification
	seq           int64
}

func New() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*models.User),
		usersByEmail:  make(map[string]uuid.UUID),
		refreshTokens: make(map[string]*models.RefreshToken),
		reports:       make(map[uuid.UUID]*models.Report),
		comments:      make(map[uuid.UUID]*models.Comment),
		reactions:     make(map[reactionKey]*storage.ReactionRow),
		templates:     make(map[uuid.UUID]*models.Template),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

// ctxErr mirrors the real driver, which refuses work once the context is
// done. An expired deadline reads as backend unavailability.
func ctxErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return nil
}

// tick returns a strictly increasing timestamp so created_at ordering is
// deterministic even when rows are inserted within the same nanosecond.
func (s *Store) tick() time.Time {
	s.seq++
	return time.Unix(0, s.seq).UTC()
}

// --- Users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByEmail[strings.ToLower(user.Email)]; ok {
		return storage.ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = s.tick()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	s.usersByEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.usersByEmail, strings.ToLower(existing.Email))
	user.UpdatedAt = s.tick()
	cp := *user
	s.users[user.ID] = &cp
	s.usersByEmail[strings.ToLower(user.Email)] = user.ID
	return nil
}

// --- Refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[token.UserID]; !ok {
		return storage.ErrForeignKey
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = s.tick()
	cp := *token
	s.refreshTokens[token.TokenHash] = &cp
	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.refreshTokens[tokenHash]
	if !ok || token.Revoked {
		return nil, storage.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, id uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, token := range s.refreshTokens {
		if token.ID == id {
			token.Revoked = true
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.refreshTokens[tokenHash]; ok {
		token.Revoked = true
	}
	return nil
}

// --- Reports ---

func reportVisible(report *models.Report, scope storage.ReportScope) bool {
	switch {
	case scope.PublicOnly:
		return report.IsPublic
	case scope.ViewerID != nil:
		return report.UserID == *scope.ViewerID || report.IsPublic
	default:
		return true
	}
}

func (s *Store) CreateReport(ctx context.Context, report *models.Report) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[report.UserID]; !ok {
		return storage.ErrForeignKey
	}
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	report.CreatedAt = s.tick()
	report.UpdatedAt = report.CreatedAt
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *Store) GetReport(ctx context.Context, id uuid.UUID, scope storage.ReportScope) (*models.Report, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	report, ok := s.reports[id]
	if !ok || !reportVisible(report, scope) {
		return nil, storage.ErrNotFound
	}
	cp := *report
	return &cp, nil
}

func (s *Store) ListReportsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Report, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []models.Report
	for _, report := range s.reports {
		if report.UserID == ownerID {
			reports = append(reports, *report)
		}
	}
	sortReportsDesc(reports)
	return reports, nil
}

func (s *Store) ListPublicReports(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []models.Report
	for _, report := range s.reports {
		if report.IsPublic {
			reports = append(reports, *report)
		}
	}
	sortReportsDesc(reports)
	total := int64(len(reports))
	if offset >= len(reports) {
		return nil, total, nil
	}
	reports = reports[offset:]
	if limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	return reports, total, nil
}

func sortReportsDesc(reports []models.Report) {
	sort.Slice(reports, func(i, j int) bool {
		if !reports[i].ReportDate.Equal(reports[j].ReportDate) {
			return reports[i].ReportDate.After(reports[j].ReportDate)
		}
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})
}

func (s *Store) UpdateReport(ctx context.Context, report *models.Report) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[report.ID]; !ok {
		return storage.ErrNotFound
	}
	report.UpdatedAt = s.tick()
	cp := *report
	s.reports[report.ID] = &cp
	return nil
}

func (s *Store) DeleteReport(ctx context.Context, id uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.reports, id)
	for cid, comment := range s.comments {
		if comment.ReportID == id {
			delete(s.comments, cid)
		}
	}
	for key := range s.reactions {
		if key.kind == storage.ReactionKindReport && key.targetID == id {
			delete(s.reactions, key)
		}
	}
	return nil
}

// --- Comments ---

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[comment.ReportID]; !ok {
		return storage.ErrForeignKey
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = s.tick()
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *Store) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *comment
	return &cp, nil
}

func (s *Store) ListComments(ctx context.Context, reportID uuid.UUID) ([]models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var comments []models.Comment
	for _, comment := range s.comments {
		if comment.ReportID == reportID {
			comments = append(comments, *comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// --- Reactions ---

func (s *Store) ListReactions(ctx context.Context, kind storage.ReactionKind, targetIDs []uuid.UUID) ([]storage.ReactionRow, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make(map[uuid.UUID]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		targets[id] = struct{}{}
	}

	var rows []storage.ReactionRow
	for key, row := range s.reactions {
		if key.kind != kind {
			continue
		}
		if _, ok := targets[key.targetID]; ok {
			rows = append(rows, *row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

func (s *Store) CreateReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reactionKey{kind: kind, targetID: targetID, userID: userID, emoji: emoji}
	if _, ok := s.reactions[key]; ok {
		return storage.ErrDuplicate
	}
	s.reactions[key] = &storage.ReactionRow{
		ID:        uuid.New(),
		TargetID:  targetID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: s.tick(),
	}
	return nil
}

func (s *Store) DeleteReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := reactionKey{kind: kind, targetID: targetID, userID: userID, emoji: emoji}
	if _, ok := s.reactions[key]; !ok {
		return false, nil
	}
	delete(s.reactions, key)
	return true, nil
}

func (s *Store) HasReaction(ctx context.Context, kind storage.ReactionKind, targetID, userID uuid.UUID, emoji string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.reactions[reactionKey{kind: kind, targetID: targetID, userID: userID, emoji: emoji}]
	return ok, nil
}

// --- Templates ---

func (s *Store) CountTemplates(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, template := range s.templates {
		if template.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateTemplate(ctx context.Context, template *models.Template) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[template.UserID]; !ok {
		return storage.ErrForeignKey
	}
	for _, existing := range s.templates {
		if existing.UserID == template.UserID && existing.Name == template.Name {
			return storage.ErrDuplicate
		}
	}
	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}
	template.CreatedAt = s.tick()
	cp := *template
	s.templates[template.ID] = &cp
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, userID uuid.UUID) ([]models.Template, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var templates []models.Template
	for _, template := range s.templates {
		if template.UserID == userID {
			templates = append(templates, *template)
		}
	}
	sort.Slice(templates, func(i, j int) bool {
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	template, ok := s.templates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *template
	return &cp, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

// --- Notifications ---

func (s *Store) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[notification.UserID]; !ok {
		return storage.ErrForeignKey
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = s.tick()
	cp := *notification
	s.notifications[notification.ID] = &cp
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, *n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	if limit > 0 && limit < len(notifications) {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return storage.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}
