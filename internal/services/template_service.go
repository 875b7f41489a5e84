package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/retry"
	"github.com/locm1/nippo/internal/storage"
)

const DefaultTemplateName = "デフォルト日報テンプレート"

const defaultTemplateContent = `## 機能/タスク名  

### 概要  

何を、なぜ、どう行ったかを1〜2行で  

### 実施時間  

09:30 – 11:00  

### コミット履歴、もしくは成果物  

http://  

## 機能/タスク名  

### 概要  

何を、なぜ、どう行ったかを1〜2行で  

### 実施時間  

09:30 – 11:00  

### コミット履歴、もしくは成果物  

http://  

## 機能/タスク名  

### 概要  

何を、なぜ、どう行ったかを1〜2行で  

### 実施時間  

09:30 – 11:00  

### コミット履歴、もしくは成果物  

http://  `

// TemplateService manages report templates and the one-time default template
// provisioned for each new user.
type TemplateService struct {
	store  storage.Store
	policy retry.Policy
}

func NewTemplateService(store storage.Store) *TemplateService {
	return &TemplateService{store: store, policy: retry.DefaultPolicy()}
}

// NewTemplateServiceWithPolicy injects the retry schedule; tests pass a
// policy with a fake sleep.
func NewTemplateServiceWithPolicy(store storage.Store, policy retry.Policy) *TemplateService {
	return &TemplateService{store: store, policy: policy}
}

// EnsureDefaultTemplate provisions the default template for a user who has
// none. Idempotent under retry and safe under races: a concurrent duplicate
// insert loses against the (user, name) unique constraint, the re-check sees
// the winner's row and the call succeeds. The user row may not be visible yet
// when this runs from a sign-in callback, so foreign-key failures retry with
// bounded backoff. Provisioning is best-effort: exhaustion is logged and
// swallowed, never raised to the sign-in path.
func (s *TemplateService) EnsureDefaultTemplate(ctx context.Context, userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}

	err := s.policy.Do(ctx, func(attempt int) error {
		count, err := s.store.CountTemplates(ctx, userID)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		err = s.store.CreateTemplate(ctx, &models.Template{
			UserID:  userID,
			Name:    DefaultTemplateName,
			Content: defaultTemplateContent,
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, storage.ErrDuplicate):
			// Lost the race; the template exists.
			return nil
		case errors.Is(err, storage.ErrForeignKey):
			// User row not committed yet, worth retrying.
			return err
		case errors.Is(err, storage.ErrUnavailable):
			// Backend hiccup, worth retrying.
			return err
		default:
			return retry.Stop(err)
		}
	})
	if err != nil {
		slog.Error("default template provisioning failed", "user_id", userID, "error", err)
	}
}

func (s *TemplateService) List(ctx context.Context, userID uuid.UUID) ([]models.Template, error) {
	templates, err := s.store.ListTemplates(ctx, userID)
	if err != nil {
		return nil, storeErr("list templates", err)
	}
	return templates, nil
}

func (s *TemplateService) Create(ctx context.Context, userID uuid.UUID, name, content string) (*models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrValidation)
	}

	template := &models.Template{UserID: userID, Name: name, Content: content}
	if err := s.store.CreateTemplate(ctx, template); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a template named %q already exists", ErrValidation, name)
		}
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, storeErr("create template", err)
		}
		return nil, fmt.Errorf("%w: create template: %v", ErrOperationFailed, err)
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, id, userID uuid.UUID) error {
	template, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return storeErr("load template", err)
	}
	if template.UserID != userID {
		return ErrForbidden
	}
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return storeErr("delete template", err)
	}
	return nil
}
