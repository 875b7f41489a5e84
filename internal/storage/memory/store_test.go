package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

func seedUser(t *testing.T, s *Store, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedReport(t *testing.T, s *Store, ownerID uuid.UUID, public bool) *models.Report {
	t.Helper()
	report := &models.Report{
		UserID:     ownerID,
		Content:    "content",
		IsPublic:   public,
		ReportDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.CreateReport(context.Background(), report))
	return report
}

func TestCreateUser_EmailUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()
	seedUser(t, s, "taro@example.com")

	err := s.CreateUser(ctx, &models.User{Email: "TARO@example.com"})
	assert.ErrorIs(t, err, storage.ErrDuplicate, "email uniqueness is case-insensitive")
}

func TestCreateReport_RequiresUser(t *testing.T) {
	s := New()
	err := s.CreateReport(context.Background(), &models.Report{UserID: uuid.New(), Content: "x"})
	assert.ErrorIs(t, err, storage.ErrForeignKey)
}

func TestGetReport_ScopeFiltering(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	private := seedReport(t, s, owner.ID, false)

	_, err := s.GetReport(ctx, private.ID, storage.ReportScope{})
	assert.NoError(t, err, "unrestricted scope sees everything")

	_, err = s.GetReport(ctx, private.ID, storage.ReportScope{PublicOnly: true})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	ownerID := owner.ID
	_, err = s.GetReport(ctx, private.ID, storage.ReportScope{ViewerID: &ownerID})
	assert.NoError(t, err)

	strangerID := uuid.New()
	_, err = s.GetReport(ctx, private.ID, storage.ReportScope{ViewerID: &strangerID})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPublicReports_OrderAndTotal(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")

	older := &models.Report{UserID: owner.ID, Content: "x", IsPublic: true, ReportDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateReport(ctx, older))
	newer := &models.Report{UserID: owner.ID, Content: "x", IsPublic: true, ReportDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateReport(ctx, newer))
	seedReport(t, s, owner.ID, false)

	reports, total, err := s.ListPublicReports(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, reports, 2)
	assert.Equal(t, newer.ID, reports[0].ID, "newest report date first")

	// Offset beyond the result set still reports the true total.
	reports, total, err = s.ListPublicReports(ctx, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, reports)
}

func TestDeleteReport_Cascades(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	report := seedReport(t, s, owner.ID, true)

	comment := &models.Comment{ReportID: report.ID, UserID: owner.ID, Content: "c"}
	require.NoError(t, s.CreateComment(ctx, comment))
	require.NoError(t, s.CreateReaction(ctx, storage.ReactionKindReport, report.ID, owner.ID, "👍"))

	require.NoError(t, s.DeleteReport(ctx, report.ID))

	_, err := s.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	rows, err := s.ListReactions(ctx, storage.ReactionKindReport, []uuid.UUID{report.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateReaction_UniquePerTargetUserEmoji(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	report := seedReport(t, s, owner.ID, true)

	require.NoError(t, s.CreateReaction(ctx, storage.ReactionKindReport, report.ID, owner.ID, "👍"))
	err := s.CreateReaction(ctx, storage.ReactionKindReport, report.ID, owner.ID, "👍")
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// Same emoji on a different relation is a separate row.
	assert.NoError(t, s.CreateReaction(ctx, storage.ReactionKindComment, report.ID, owner.ID, "👍"))
}

func TestDeleteReaction_MissingRowIsNotAnError(t *testing.T) {
	s := New()
	removed, err := s.DeleteReaction(context.Background(), storage.ReactionKindReport, uuid.New(), uuid.New(), "👍")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListReactions_CreatedAtAscending(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := seedUser(t, s, "owner@example.com")
	other := seedUser(t, s, "other@example.com")
	report := seedReport(t, s, owner.ID, true)

	require.NoError(t, s.CreateReaction(ctx, storage.ReactionKindReport, report.ID, owner.ID, "🎉"))
	require.NoError(t, s.CreateReaction(ctx, storage.ReactionKindReport, report.ID, other.ID, "👍"))

	rows, err := s.ListReactions(ctx, storage.ReactionKindReport, []uuid.UUID{report.ID})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].CreatedAt.Before(rows[1].CreatedAt))
	assert.Equal(t, "🎉", rows[0].Emoji)
}

func TestCreateTemplate_UniqueNamePerUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := seedUser(t, s, "user@example.com")
	other := seedUser(t, s, "other@example.com")

	require.NoError(t, s.CreateTemplate(ctx, &models.Template{UserID: user.ID, Name: "週次"}))
	err := s.CreateTemplate(ctx, &models.Template{UserID: user.ID, Name: "週次"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	assert.NoError(t, s.CreateTemplate(ctx, &models.Template{UserID: other.ID, Name: "週次"}))
}

func TestCreateTemplate_RequiresUser(t *testing.T) {
	s := New()
	err := s.CreateTemplate(context.Background(), &models.Template{UserID: uuid.New(), Name: "x"})
	assert.ErrorIs(t, err, storage.ErrForeignKey)
}

func TestMarkNotificationRead_ScopedToRecipient(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := seedUser(t, s, "user@example.com")
	other := seedUser(t, s, "other@example.com")

	n := &models.Notification{UserID: user.ID, Kind: models.NotificationKindComment, Title: "t", Message: "m"}
	require.NoError(t, s.CreateNotification(ctx, n))

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, n.ID, other.ID), storage.ErrNotFound)
	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, user.ID))

	list, err := s.ListNotifications(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}

func TestListNotifications_NewestFirstWithLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := seedUser(t, s, "user@example.com")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{
			UserID: user.ID, Kind: models.NotificationKindReaction, Title: "t", Message: "m",
		}))
	}

	list, err := s.ListNotifications(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

func TestRefreshTokens_RevocationHidesRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	user := seedUser(t, s, "user@example.com")

	token := &models.RefreshToken{UserID: user.ID, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateRefreshToken(ctx, token))

	got, err := s.GetRefreshToken(ctx, "h")
	require.NoError(t, err)

	require.NoError(t, s.RevokeRefreshToken(ctx, got.ID))
	_, err = s.GetRefreshToken(ctx, "h")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDoneContext_ReadsUnavailable(t *testing.T) {
	s := New()
	user := seedUser(t, s, "user@example.com")
	report := seedReport(t, s, user.ID, true)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := s.GetReport(ctx, report.ID, storage.ReportScope{})
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	_, _, err = s.ListPublicReports(ctx, 10, 0)
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	err = s.CreateReport(ctx, &models.Report{UserID: user.ID, Content: "x"})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}
