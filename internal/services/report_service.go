package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/storage"
)

const reportDateLayout = "2006-01-02"

var (
	ErrContentRequired = fmt.Errorf("%w: content is required", ErrValidation)
	ErrBadReportDate   = fmt.Errorf("%w: report_date must be YYYY-MM-DD", ErrValidation)
)

// DeriveTitle produces the canonical date-based report label. Pure function
// of the calendar date; used wherever a report without an explicit title is
// displayed.
func DeriveTitle(reportDate time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02dの日報", reportDate.Year(), reportDate.Month(), reportDate.Day())
}

// DisplayTitle returns the explicit title when present, else the derived one.
func DisplayTitle(report *models.Report) string {
	if title := strings.TrimSpace(report.Title); title != "" {
		return title
	}
	return DeriveTitle(report.ReportDate)
}

// NormalizeContent appends the two-space Markdown hard-break marker to every
// non-blank line that does not already end with it. Blank lines pass through
// unchanged. Idempotent; applied once at save time so stored content never
// needs per-render processing.
func NormalizeContent(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasSuffix(line, "  ") {
			continue
		}
		lines[i] = line + "  "
	}
	return strings.Join(lines, "\n")
}

type CreateReportInput struct {
	Title      string
	Content    string
	IsPublic   bool
	ReportDate string // YYYY-MM-DD, defaults to today
	Images     []string
}

type UpdateReportInput struct {
	Title      *string
	Content    *string
	IsPublic   *bool
	ReportDate *string
	Images     *[]string
}

// ReportService owns report state transitions. Ownership is checked here,
// before any mutating call reaches the store.
type ReportService struct {
	store storage.Store
	now   func() time.Time
}

func NewReportService(store storage.Store) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

func parseReportDate(value string) (time.Time, error) {
	date, err := time.Parse(reportDateLayout, value)
	if err != nil {
		return time.Time{}, ErrBadReportDate
	}
	return date, nil
}

func (s *ReportService) Create(ctx context.Context, ownerID uuid.UUID, in CreateReportInput) (*models.Report, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrContentRequired
	}

	reportDate := s.now().UTC().Truncate(24 * time.Hour)
	if in.ReportDate != "" {
		var err error
		if reportDate, err = parseReportDate(in.ReportDate); err != nil {
			return nil, err
		}
	}

	report := &models.Report{
		UserID:     ownerID,
		Title:      strings.TrimSpace(in.Title),
		Content:    NormalizeContent(in.Content),
		IsPublic:   in.IsPublic,
		ReportDate: reportDate,
		Images:     datatypes.NewJSONSlice(in.Images),
	}
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, storeErr("create report", err)
	}
	return report, nil
}

// getOwned loads a report without a visibility scope and enforces ownership:
// absent is ErrNotFound, present-but-foreign is ErrForbidden.
func (s *ReportService) getOwned(ctx context.Context, reportID, ownerID uuid.UUID) (*models.Report, error) {
	report, err := s.store.GetReport(ctx, reportID, storage.ReportScope{})
	if err != nil {
		return nil, storeErr("load report", err)
	}
	if report.UserID != ownerID {
		return nil, ErrForbidden
	}
	return report, nil
}

func (s *ReportService) Update(ctx context.Context, reportID, ownerID uuid.UUID, patch UpdateReportInput) (*models.Report, error) {
	report, err := s.getOwned(ctx, reportID, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		report.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return nil, ErrContentRequired
		}
		report.Content = NormalizeContent(*patch.Content)
	}
	if patch.IsPublic != nil {
		report.IsPublic = *patch.IsPublic
	}
	if patch.ReportDate != nil {
		date, err := parseReportDate(*patch.ReportDate)
		if err != nil {
			return nil, err
		}
		report.ReportDate = date
	}
	if patch.Images != nil {
		report.Images = datatypes.NewJSONSlice(*patch.Images)
	}

	if err := s.store.UpdateReport(ctx, report); err != nil {
		return nil, storeErr("update report", err)
	}
	return report, nil
}

// SetPublic toggles the publication flag. Setting the current value is a
// no-op success; the write is skipped entirely.
func (s *ReportService) SetPublic(ctx context.Context, reportID, ownerID uuid.UUID, value bool) (*models.Report, error) {
	report, err := s.getOwned(ctx, reportID, ownerID)
	if err != nil {
		return nil, err
	}
	if report.IsPublic == value {
		return report, nil
	}
	report.IsPublic = value
	if err := s.store.UpdateReport(ctx, report); err != nil {
		return nil, storeErr("set report visibility", err)
	}
	return report, nil
}

func (s *ReportService) Delete(ctx context.Context, reportID, ownerID uuid.UUID) error {
	if _, err := s.getOwned(ctx, reportID, ownerID); err != nil {
		return err
	}
	if err := s.store.DeleteReport(ctx, reportID); err != nil {
		return storeErr("delete report", err)
	}
	return nil
}

func (s *ReportService) ListOwn(ctx context.Context, ownerID uuid.UUID) ([]models.Report, error) {
	reports, err := s.store.ListReportsByOwner(ctx, ownerID)
	if err != nil {
		return nil, storeErr("list own reports", err)
	}
	return reports, nil
}

func (s *ReportService) ListPublic(ctx context.Context, limit, offset int) ([]models.Report, int64, error) {
	reports, total, err := s.store.ListPublicReports(ctx, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list public reports", err)
	}
	return reports, total, nil
}
