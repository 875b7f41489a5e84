package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

var ErrCommentRequired = fmt.Errorf("%w: comment content is required", ErrValidation)

const maxCommentLength = 2000

// CommentView is a comment decorated with its author's display identity and
// reaction groups, ready for the detail page.
type CommentView struct {
	ID         uuid.UUID       `json:"id"`
	ReportID   uuid.UUID       `json:"report_id"`
	UserID     uuid.UUID       `json:"user_id"`
	Content    string          `json:"content"`
	CreatedAt  time.Time       `json:"created_at"`
	AuthorName string          `json:"author_name"`
	Stamps     []ReactionGroup `json:"stamps"`
}

// CommentService creates and lists comments. Every path is gated by the
// parent report's visibility for the acting viewer, the same check and the
// same NotFound merging the report itself gets.
type CommentService struct {
	store         storage.Store
	visibility    *VisibilityService
	reactions     *ReactionService
	notifications *NotificationService
}

func NewCommentService(store storage.Store, visibility *VisibilityService, reactions *ReactionService, notifications *NotificationService) *CommentService {
	return &CommentService{store: store, visibility: visibility, reactions: reactions, notifications: notifications}
}

// Create posts a comment on a report the viewer can read. Writing requires
// authentication; readability is the only other requirement, so commenting on
// any public report is allowed.
func (s *CommentService) Create(ctx context.Context, viewer Viewer, reportID uuid.UUID, content string) (*models.Comment, error) {
	if !viewer.Authenticated {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrCommentRequired
	}
	if len(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: comment exceeds %d characters", ErrValidation, maxCommentLength)
	}

	report, err := s.visibility.ResolveReport(ctx, viewer, OwnerView, reportID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReportID: reportID,
		UserID:   viewer.ID,
		Content:  content,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			return nil, storeErr("create comment", err)
		}
		return nil, fmt.Errorf("%w: create comment: %v", ErrOperationFailed, err)
	}

	if actor, aerr := s.store.GetUserByID(ctx, viewer.ID); aerr == nil {
		s.notifications.NotifyComment(ctx, report, comment, actor)
	}
	return comment, nil
}

// ListForReport returns the report's comments in creation order, decorated
// with author names and reaction groups. The author profiles and the comment
// reactions are each fetched in a single batch.
func (s *CommentService) ListForReport(ctx context.Context, viewer Viewer, vc ViewContext, reportID uuid.UUID) ([]CommentView, error) {
	if _, err := s.visibility.ResolveReport(ctx, viewer, vc, reportID); err != nil {
		return nil, err
	}

	comments, err := s.store.ListComments(ctx, reportID)
	if err != nil {
		return nil, storeErr("list comments", err)
	}
	if len(comments) == 0 {
		return []CommentView{}, nil
	}

	authorIDs := make([]uuid.UUID, 0, len(comments))
	commentIDs := make([]uuid.UUID, 0, len(comments))
	seen := make(map[uuid.UUID]struct{})
	for _, c := range comments {
		commentIDs = append(commentIDs, c.ID)
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			authorIDs = append(authorIDs, c.UserID)
		}
	}

	authors, err := s.store.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storeErr("load comment authors", err)
	}
	authorMap := make(map[uuid.UUID]*models.User, len(authors))
	for i := range authors {
		authorMap[authors[i].ID] = &authors[i]
	}

	stamps, err := s.reactions.Aggregate(ctx, storage.ReactionKindComment, commentIDs, viewer)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		groups := stamps[c.ID]
		if groups == nil {
			groups = []ReactionGroup{}
		}
		views = append(views, CommentView{
			ID:         c.ID,
			ReportID:   c.ReportID,
			UserID:     c.UserID,
			Content:    c.Content,
			CreatedAt:  c.CreatedAt,
			AuthorName: DisplayName(authorMap[c.UserID]),
			Stamps:     groups,
		})
	}
	return views, nil
}
