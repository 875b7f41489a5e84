package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locm1/nippo/internal/storage"
)

func TestDeriveTitle(t *testing.T) {
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025/06/02の日報", DeriveTitle(date))

	date = time.Date(999, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "0999/12/31の日報", DeriveTitle(date))
}

func TestDisplayTitle_FallsBackToDerived(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, false)

	assert.Equal(t, "2025/06/02の日報", DisplayTitle(report))

	report.Title = "  リリース準備  "
	assert.Equal(t, "リリース準備", DisplayTitle(report))

	report.Title = "   "
	assert.Equal(t, "2025/06/02の日報", DisplayTitle(report))
}

func TestNormalizeContent(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"appends break marker", "line one\nline two", "line one  \nline two  "},
		{"blank lines untouched", "para one\n\npara two", "para one  \n\npara two  "},
		{"whitespace-only lines untouched", "a\n   \nb", "a  \n   \nb  "},
		{"already marked lines untouched", "done  \nnot done", "done  \nnot done  "},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeContent(tc.in)
			assert.Equal(t, tc.want, got)
			// Applying it again must not change anything.
			assert.Equal(t, got, NormalizeContent(got))
		})
	}
}

func TestReportCreate_RequiresContent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner")

	_, err := env.reports.Create(context.Background(), owner.ID, CreateReportInput{Content: "   \n  "})
	assert.ErrorIs(t, err, ErrContentRequired)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReportCreate_DefaultsDateToToday(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner")

	fixed := time.Date(2025, 7, 15, 13, 45, 0, 0, time.UTC)
	env.reports.now = func() time.Time { return fixed }

	report, err := env.reports.Create(context.Background(), owner.ID, CreateReportInput{Content: "本日の作業"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC), report.ReportDate)
	assert.Equal(t, "本日の作業  ", report.Content)
}

func TestReportCreate_RejectsBadDate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner")

	_, err := env.reports.Create(context.Background(), owner.ID, CreateReportInput{
		Content:    "x",
		ReportDate: "2025/06/02",
	})
	assert.ErrorIs(t, err, ErrBadReportDate)
}

func TestReportUpdate_PatchSemantics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")

	report, err := env.reports.Create(ctx, owner.ID, CreateReportInput{
		Title:      "初版",
		Content:    "最初の内容",
		ReportDate: "2025-06-02",
	})
	require.NoError(t, err)

	newContent := "書き直した内容"
	updated, err := env.reports.Update(ctx, report.ID, owner.ID, UpdateReportInput{Content: &newContent})
	require.NoError(t, err)

	// Only the patched field moves.
	assert.Equal(t, "書き直した内容  ", updated.Content)
	assert.Equal(t, "初版", updated.Title)
	assert.Equal(t, report.ReportDate, updated.ReportDate)
	assert.Equal(t, owner.ID, updated.UserID)

	empty := " "
	_, err = env.reports.Update(ctx, report.ID, owner.ID, UpdateReportInput{Content: &empty})
	assert.ErrorIs(t, err, ErrContentRequired)
}

func TestReportUpdate_ForeignReportForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	other := env.seedUser(t, "other@example.com", "Other")
	report := env.seedReport(t, owner.ID, true)

	title := "乗っ取り"
	_, err := env.reports.Update(ctx, report.ID, other.ID, UpdateReportInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.reports.Delete(ctx, report.ID, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetPublic_SameValueIsNoop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, true)

	before, err := env.store.GetReport(ctx, report.ID, storage.ReportScope{})
	require.NoError(t, err)

	_, err = env.reports.SetPublic(ctx, report.ID, owner.ID, true)
	require.NoError(t, err)

	after, err := env.store.GetReport(ctx, report.ID, storage.ReportScope{})
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "no-op toggle must not touch the row")
}

func TestReportDelete_RemovesDependents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	other := env.seedUser(t, "other@example.com", "Other")
	report := env.seedReport(t, owner.ID, true)

	comment, err := env.comments.Create(ctx, AuthenticatedViewer(other.ID), report.ID, "おつかれさま")
	require.NoError(t, err)
	_, err = env.reactions.ToggleOnReport(ctx, AuthenticatedViewer(other.ID), report.ID, "👍")
	require.NoError(t, err)

	require.NoError(t, env.reports.Delete(ctx, report.ID, owner.ID))

	_, err = env.store.GetReport(ctx, report.ID, storage.ReportScope{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = env.store.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	rows, err := env.store.ListReactions(ctx, storage.ReactionKindReport, []uuid.UUID{report.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestListPublic_Pagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")

	for i := 0; i < 5; i++ {
		env.seedReport(t, owner.ID, true)
	}
	env.seedReport(t, owner.ID, false)

	page, total, err := env.reports.ListPublic(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	rest, _, err := env.reports.ListPublic(ctx, 10, 4)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
