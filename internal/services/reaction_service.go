package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

var ErrUnknownEmoji = fmt.Errorf("%w: emoji is not in the stamp palette", ErrValidation)

// ReactionUser is one member of a reaction group.
type ReactionUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ReactionGroup is the derived per-emoji aggregate for one target. Never
// persisted; recomputed on every read.
type ReactionGroup struct {
	Emoji          string         `json:"emoji"`
	Count          int            `json:"count"`
	Users          []ReactionUser `json:"users"`
	HasCurrentUser bool           `json:"has_current_user"`
}

// GroupReactions collapses raw rows into per-target groups. Rows must be in
// created_at ascending order; groups appear in first-occurrence order of
// their emoji within each target, so the output is reproducible from the
// same input.
func GroupReactions(rows []storage.ReactionRow, users map[uuid.UUID]*models.User, viewer Viewer) map[uuid.UUID][]ReactionGroup {
	grouped := make(map[uuid.UUID][]ReactionGroup)
	index := make(map[uuid.UUID]map[string]int)

	for _, row := range rows {
		byEmoji, ok := index[row.TargetID]
		if !ok {
			byEmoji = make(map[string]int)
			index[row.TargetID] = byEmoji
		}

		pos, ok := byEmoji[row.Emoji]
		if !ok {
			pos = len(grouped[row.TargetID])
			byEmoji[row.Emoji] = pos
			grouped[row.TargetID] = append(grouped[row.TargetID], ReactionGroup{Emoji: row.Emoji})
		}

		group := &grouped[row.TargetID][pos]
		group.Count++
		group.Users = append(group.Users, ReactionUser{
			ID:    row.UserID,
			Name:  DisplayName(users[row.UserID]),
			Email: emailOf(users[row.UserID]),
		})
		if viewer.Authenticated && row.UserID == viewer.ID {
			group.HasCurrentUser = true
		}
	}
	return grouped
}

func emailOf(user *models.User) string {
	if user == nil {
		return ""
	}
	return user.Email
}

// ReactionService aggregates and toggles emoji stamps on reports and
// comments. Both relations share one code path, parameterized by kind.
type ReactionService struct {
	store         storage.Store
	visibility    *VisibilityService
	notifications *NotificationService
}

func NewReactionService(store storage.Store, visibility *VisibilityService, notifications *NotificationService) *ReactionService {
	return &ReactionService{store: store, visibility: visibility, notifications: notifications}
}

// Aggregate fetches all reaction rows for the batch in one round trip, the
// distinct reacting-user profiles in a second, and groups in memory. Targets
// with no reactions are absent from the result.
func (s *ReactionService) Aggregate(ctx context.Context, kind storage.ReactionKind, targetIDs []uuid.UUID, viewer Viewer) (map[uuid.UUID][]ReactionGroup, error) {
	rows, err := s.store.ListReactions(ctx, kind, targetIDs)
	if err != nil {
		return nil, storeErr("list reactions", err)
	}
	if len(rows) == 0 {
		return map[uuid.UUID][]ReactionGroup{}, nil
	}

	seen := make(map[uuid.UUID]struct{})
	var userIDs []uuid.UUID
	for _, row := range rows {
		if _, ok := seen[row.UserID]; !ok {
			seen[row.UserID] = struct{}{}
			userIDs = append(userIDs, row.UserID)
		}
	}

	profiles, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, storeErr("load reacting users", err)
	}
	users := make(map[uuid.UUID]*models.User, len(profiles))
	for i := range profiles {
		users[profiles[i].ID] = &profiles[i]
	}

	return GroupReactions(rows, users, viewer), nil
}

// ToggleOnReport toggles the viewer's stamp on a report the viewer can read.
// Returns true when the toggle resulted in the stamp being present.
func (s *ReactionService) ToggleOnReport(ctx context.Context, viewer Viewer, reportID uuid.UUID, emoji string) (bool, error) {
	report, err := s.visibility.ResolveReport(ctx, viewer, OwnerView, reportID)
	if err != nil {
		return false, err
	}
	present, err := s.toggle(ctx, storage.ReactionKindReport, reportID, viewer, emoji)
	if err != nil {
		return false, err
	}
	if present {
		actor, aerr := s.store.GetUserByID(ctx, viewer.ID)
		if aerr == nil {
			s.notifications.NotifyReaction(ctx, report, nil, report.UserID, actor, emoji)
		}
	}
	return present, nil
}

// ToggleOnComment toggles the viewer's stamp on a comment, gated by the
// parent report's visibility.
func (s *ReactionService) ToggleOnComment(ctx context.Context, viewer Viewer, commentID uuid.UUID, emoji string) (bool, error) {
	comment, err := s.visibility.ResolveComment(ctx, viewer, commentID)
	if err != nil {
		return false, err
	}
	present, err := s.toggle(ctx, storage.ReactionKindComment, commentID, viewer, emoji)
	if err != nil {
		return false, err
	}
	if present {
		report, rerr := s.store.GetReport(ctx, comment.ReportID, storage.ReportScope{})
		actor, aerr := s.store.GetUserByID(ctx, viewer.ID)
		if rerr == nil && aerr == nil {
			s.notifications.NotifyReaction(ctx, report, &comment.ID, comment.UserID, actor, emoji)
		}
	}
	return present, nil
}

// toggle removes the (target, viewer, emoji) row when present, inserts it
// otherwise. The store's unique constraint is authoritative under concurrent
// double-invocation: losing an insert race means the row exists, which is the
// intended end state, so a duplicate-key error is success. Losing a delete
// race (nothing to delete) is likewise not an error.
func (s *ReactionService) toggle(ctx context.Context, kind storage.ReactionKind, targetID uuid.UUID, viewer Viewer, emoji string) (bool, error) {
	if !viewer.Authenticated {
		return false, ErrForbidden
	}
	if !models.ValidReactionEmoji(emoji) {
		return false, ErrUnknownEmoji
	}

	has, err := s.store.HasReaction(ctx, kind, targetID, viewer.ID, emoji)
	if err != nil {
		return false, storeErr("check reaction", err)
	}

	if has {
		if _, err := s.store.DeleteReaction(ctx, kind, targetID, viewer.ID, emoji); err != nil {
			if errors.Is(err, storage.ErrUnavailable) {
				return false, storeErr("remove reaction", err)
			}
			return false, fmt.Errorf("%w: remove reaction: %v", ErrOperationFailed, err)
		}
		return false, nil
	}

	if err := s.store.CreateReaction(ctx, kind, targetID, viewer.ID, emoji); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return true, nil
		}
		if errors.Is(err, storage.ErrUnavailable) {
			return false, storeErr("add reaction", err)
		}
		return false, fmt.Errorf("%w: add reaction: %v", ErrOperationFailed, err)
	}
	return true, nil
}
