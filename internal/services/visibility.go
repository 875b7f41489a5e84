package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

// Viewer identifies who is looking at a report. The zero value is anonymous.
type Viewer struct {
	ID            uuid.UUID
	Authenticated bool
}

func AnonymousViewer() Viewer {
	return Viewer{}
}

func AuthenticatedViewer(id uuid.UUID) Viewer {
	return Viewer{ID: id, Authenticated: true}
}

// ViewContext is the access surface a read arrives through.
type ViewContext int

const (
	// OwnerView is the normal application surface: owners see everything of
	// theirs, everyone else sees public reports only.
	OwnerView ViewContext = iota
	// SharedLinkView is the unauthenticated share surface, gated solely by
	// the public flag regardless of who the viewer is.
	SharedLinkView
)

// ScopeFor compiles the visibility rule set into a row filter. Rules are
// evaluated in order, first match wins:
//  1. shared-link view: public reports only, for any viewer
//  2. owner view, authenticated: own reports or public reports
//  3. owner view, anonymous: public reports only
//
// Pure function; re-evaluated on every read so flipping is_public revokes or
// grants access immediately.
func ScopeFor(viewer Viewer, vc ViewContext) storage.ReportScope {
	if vc == SharedLinkView {
		return storage.ReportScope{PublicOnly: true}
	}
	if viewer.Authenticated {
		id := viewer.ID
		return storage.ReportScope{ViewerID: &id}
	}
	return storage.ReportScope{PublicOnly: true}
}

// VisibilityService resolves (viewer, report) pairs into readable reports.
type VisibilityService struct {
	store storage.Store
}

func NewVisibilityService(store storage.Store) *VisibilityService {
	return &VisibilityService{store: store}
}

// ResolveReport fetches the report if the viewer may read it. A report that
// exists but fails the visibility check is indistinguishable from a
// nonexistent one: both come back as ErrNotFound.
func (s *VisibilityService) ResolveReport(ctx context.Context, viewer Viewer, vc ViewContext, reportID uuid.UUID) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, reportID, ScopeFor(viewer, vc))
	if err != nil {
		return nil, storeErr("resolve report", err)
	}
	return report, nil
}

// ResolveComment gates a comment read behind the same report visibility check
// as the report itself: a comment on an unreadable report is ErrNotFound.
func (s *VisibilityService) ResolveComment(ctx context.Context, viewer Viewer, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.store.GetComment(ctx, commentID)
	if err != nil {
		return nil, storeErr("resolve comment", err)
	}
	if _, err := s.ResolveReport(ctx, viewer, OwnerView, comment.ReportID); err != nil {
		return nil, err
	}
	return comment, nil
}
