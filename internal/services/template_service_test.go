package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/retry"
	"github.com/locm1/nippo/internal/storage/memory"
)

func TestEnsureDefaultTemplate_ProvisionsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "user@example.com", "User")

	env.templates.EnsureDefaultTemplate(ctx, user.ID)
	env.templates.EnsureDefaultTemplate(ctx, user.ID)

	templates, err := env.templates.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, DefaultTemplateName, templates[0].Name)
	assert.Contains(t, templates[0].Content, "## 機能/タスク名")

	// Markdown hard breaks: every non-blank line carries the trailing
	// two-space marker so the template renders line by line.
	for _, line := range strings.Split(templates[0].Content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		assert.True(t, strings.HasSuffix(line, "  "), "line %q lacks a hard-break marker", line)
	}
}

func TestEnsureDefaultTemplate_SkipsUsersWithTemplates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "user@example.com", "User")

	_, err := env.templates.Create(ctx, user.ID, "自作テンプレート", "内容")
	require.NoError(t, err)

	// Any existing template counts as provisioned.
	env.templates.EnsureDefaultTemplate(ctx, user.ID)

	templates, err := env.templates.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "自作テンプレート", templates[0].Name)
}

func TestEnsureDefaultTemplate_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "user@example.com", "User")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.templates.EnsureDefaultTemplate(ctx, user.ID)
		}()
	}
	wg.Wait()

	templates, err := env.templates.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestEnsureDefaultTemplate_RetriesUntilUserVisible(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	userID := uuid.New()

	var sleeps []time.Duration
	policy := retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			// The user row lands while we wait, as a sign-up commit would.
			return store.CreateUser(ctx, &models.User{ID: userID, Email: "late@example.com"})
		},
	}
	templates := NewTemplateServiceWithPolicy(store, policy)

	templates.EnsureDefaultTemplate(ctx, userID)

	assert.Equal(t, []time.Duration{time.Second}, sleeps)
	got, err := store.ListTemplates(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEnsureDefaultTemplate_GivesUpAfterSchedule(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	var sleeps []time.Duration
	policy := fastPolicy(&sleeps)
	templates := NewTemplateServiceWithPolicy(store, policy)

	// The user never materializes. Exhaustion is swallowed, not raised.
	missing := uuid.New()
	templates.EnsureDefaultTemplate(ctx, missing)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
	got, err := store.ListTemplates(ctx, missing)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEnsureDefaultTemplate_NilUserIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.templates.EnsureDefaultTemplate(context.Background(), uuid.Nil)

	templates, err := env.templates.List(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, templates)
}

func TestTemplateCreate_DuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "user@example.com", "User")
	other := env.seedUser(t, "other@example.com", "Other")

	_, err := env.templates.Create(ctx, user.ID, "週次", "内容")
	require.NoError(t, err)

	_, err = env.templates.Create(ctx, user.ID, "週次", "別の内容")
	assert.ErrorIs(t, err, ErrValidation)

	// Names are only unique per user.
	_, err = env.templates.Create(ctx, other.ID, "週次", "内容")
	assert.NoError(t, err)
}

func TestTemplateCreate_RequiresName(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "user@example.com", "User")

	_, err := env.templates.Create(context.Background(), user.ID, "   ", "内容")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTemplateDelete_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "user@example.com", "User")
	other := env.seedUser(t, "other@example.com", "Other")

	template, err := env.templates.Create(ctx, user.ID, "週次", "内容")
	require.NoError(t, err)

	assert.ErrorIs(t, env.templates.Delete(ctx, template.ID, other.ID), ErrForbidden)
	assert.ErrorIs(t, env.templates.Delete(ctx, uuid.New(), user.ID), ErrNotFound)
	assert.NoError(t, env.templates.Delete(ctx, template.ID, user.ID))
}
