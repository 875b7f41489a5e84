package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeFor(t *testing.T) {
	viewerID := uuid.New()

	t.Run("shared link is public-only for everyone", func(t *testing.T) {
		scope := ScopeFor(AuthenticatedViewer(viewerID), SharedLinkView)
		assert.True(t, scope.PublicOnly)
		assert.Nil(t, scope.ViewerID)

		scope = ScopeFor(AnonymousViewer(), SharedLinkView)
		assert.True(t, scope.PublicOnly)
	})

	t.Run("authenticated owner view scopes to own-or-public", func(t *testing.T) {
		scope := ScopeFor(AuthenticatedViewer(viewerID), OwnerView)
		assert.False(t, scope.PublicOnly)
		require.NotNil(t, scope.ViewerID)
		assert.Equal(t, viewerID, *scope.ViewerID)
	})

	t.Run("anonymous owner view is public-only", func(t *testing.T) {
		scope := ScopeFor(AnonymousViewer(), OwnerView)
		assert.True(t, scope.PublicOnly)
		assert.Nil(t, scope.ViewerID)
	})
}

func TestResolveReport_OwnerSeesOwnPrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, false)

	got, err := env.visibility.ResolveReport(ctx, AuthenticatedViewer(owner.ID), OwnerView, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, got.ID)
}

func TestResolveReport_ForeignPrivateIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	other := env.seedUser(t, "other@example.com", "Other")
	report := env.seedReport(t, owner.ID, false)

	// A private report of someone else and a nonexistent report look the same.
	_, err := env.visibility.ResolveReport(ctx, AuthenticatedViewer(other.ID), OwnerView, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.visibility.ResolveReport(ctx, AuthenticatedViewer(other.ID), OwnerView, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveReport_AnonymousReadsPublicOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	private := env.seedReport(t, owner.ID, false)
	public := env.seedReport(t, owner.ID, true)

	_, err := env.visibility.ResolveReport(ctx, AnonymousViewer(), OwnerView, private.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := env.visibility.ResolveReport(ctx, AnonymousViewer(), OwnerView, public.ID)
	require.NoError(t, err)
	assert.Equal(t, public.ID, got.ID)
}

func TestResolveReport_SharedLinkHidesPrivateFromOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, false)

	// The share surface only serves public reports, even to the author.
	_, err := env.visibility.ResolveReport(ctx, AuthenticatedViewer(owner.ID), SharedLinkView, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveReport_VisibilityFlipAppliesImmediately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, true)

	_, err := env.visibility.ResolveReport(ctx, AnonymousViewer(), SharedLinkView, report.ID)
	require.NoError(t, err)

	_, err = env.reports.SetPublic(ctx, report.ID, owner.ID, false)
	require.NoError(t, err)

	_, err = env.visibility.ResolveReport(ctx, AnonymousViewer(), SharedLinkView, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveComment_GatedByParentReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner@example.com", "Owner")
	other := env.seedUser(t, "other@example.com", "Other")
	report := env.seedReport(t, owner.ID, true)

	comment, err := env.comments.Create(ctx, AuthenticatedViewer(other.ID), report.ID, "読みました")
	require.NoError(t, err)

	got, err := env.visibility.ResolveComment(ctx, AnonymousViewer(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.ID, got.ID)

	// Making the report private takes its comments with it.
	_, err = env.reports.SetPublic(ctx, report.ID, owner.ID, false)
	require.NoError(t, err)

	_, err = env.visibility.ResolveComment(ctx, AnonymousViewer(), comment.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.visibility.ResolveComment(ctx, AuthenticatedViewer(owner.ID), comment.ID)
	require.NoError(t, err)
}

func TestResolveReport_ExpiredContextIsTransient(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner")
	report := env.seedReport(t, owner.ID, true)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := env.visibility.ResolveReport(ctx, AuthenticatedViewer(owner.ID), OwnerView, report.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransient)
	assert.NotErrorIs(t, err, ErrNotFound)
}
