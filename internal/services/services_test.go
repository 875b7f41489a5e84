package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/locm1/nippo/internal/config"
	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/notify"
	"github.com/locm1/nippo/internal/retry"
	"github.com/locm1/nippo/internal/storage/memory"
)

// testEnv wires the full service graph onto the in-memory store.
type testEnv struct {
	store         *memory.Store
	hub           *notify.Hub
	visibility    *VisibilityService
	reports       *ReportService
	reactions     *ReactionService
	comments      *CommentService
	templates     *TemplateService
	notifications *NotificationService
	auth          *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	hub := notify.NewHub()
	notifications := NewNotificationService(store, hub)
	visibility := NewVisibilityService(store)
	reactions := NewReactionService(store, visibility, notifications)
	comments := NewCommentService(store, visibility, reactions, notifications)
	templates := NewTemplateServiceWithPolicy(store, fastPolicy(nil))

	cfg := &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}

	return &testEnv{
		store:         store,
		hub:           hub,
		visibility:    visibility,
		reports:       NewReportService(store),
		reactions:     reactions,
		comments:      comments,
		templates:     templates,
		notifications: notifications,
		auth:          NewAuthService(store, cfg, templates),
	}
}

// fastPolicy keeps the provisioning schedule but replaces the real sleep. A
// non-nil sleeps slice pointer records each requested delay.
func fastPolicy(sleeps *[]time.Duration) retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep: func(_ context.Context, d time.Duration) error {
			if sleeps != nil {
				*sleeps = append(*sleeps, d)
			}
			return nil
		},
	}
}

func (e *testEnv) seedUser(t *testing.T, email, name string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: name, Password: "x", AuthProvider: "email"}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) seedReport(t *testing.T, ownerID uuid.UUID, public bool) *models.Report {
	t.Helper()
	report := &models.Report{
		UserID:     ownerID,
		Content:    "やったこと  ",
		IsPublic:   public,
		ReportDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.store.CreateReport(context.Background(), report))
	return report
}
