package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/locm1/nippo/internal/dto"
	"github.com/locm1/nippo/internal/middleware"
	"github.com/locm1/nippo/internal/models"
	"github.com/locm1/nippo/internal/services"
	"github.com/locm1/nippo/internal/storage"
)

type ReportHandler struct {
	reports    *services.ReportService
	visibility *services.VisibilityService
	comments   *services.CommentService
	reactions  *services.ReactionService
	auth       *services.AuthService
}

func NewReportHandler(
	reports *services.ReportService,
	visibility *services.VisibilityService,
	comments *services.CommentService,
	reactions *services.ReactionService,
	auth *services.AuthService,
) *ReportHandler {
	return &ReportHandler{
		reports:    reports,
		visibility: visibility,
		comments:   comments,
		reactions:  reactions,
		auth:       auth,
	}
}

func toReportResponse(r *models.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      services.DisplayTitle(r),
		Content:    r.Content,
		IsPublic:   r.IsPublic,
		ReportDate: r.ReportDate.Format("2006-01-02"),
		Images:     []string(r.Images),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

func toStampGroups(groups []services.ReactionGroup) []dto.StampGroup {
	out := make([]dto.StampGroup, 0, len(groups))
	for _, g := range groups {
		users := make([]dto.StampUser, 0, len(g.Users))
		for _, u := range g.Users {
			users = append(users, dto.StampUser{ID: u.ID, Name: u.Name, Email: u.Email})
		}
		out = append(out, dto.StampGroup{
			Emoji:          g.Emoji,
			Count:          g.Count,
			Users:          users,
			HasCurrentUser: g.HasCurrentUser,
		})
	}
	return out
}

func toCommentResponses(views []services.CommentView) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.CommentResponse{
			ID:         v.ID,
			ReportID:   v.ReportID,
			UserID:     v.UserID,
			Content:    v.Content,
			CreatedAt:  v.CreatedAt,
			AuthorName: v.AuthorName,
			Stamps:     toStampGroups(v.Stamps),
		})
	}
	return out
}

// List returns the caller's own reports, newest report date first.
func (h *ReportHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	reports, err := h.reports.ListOwn(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toReportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"reports": out})
}

// ListPublic is the shared feed of public reports. Works for anonymous
// callers too.
func (h *ReportHandler) ListPublic(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	reports, total, err := h.reports.ListPublic(c.Context(), limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		out = append(out, toReportResponse(&reports[i]))
	}
	return c.JSON(fiber.Map{"reports": out, "total": total, "limit": limit, "offset": offset})
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}

	report, err := h.reports.Create(c.Context(), userID, services.CreateReportInput{
		Title:      req.Title,
		Content:    req.Content,
		IsPublic:   req.IsPublic,
		ReportDate: req.ReportDate,
		Images:     req.Images,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toReportResponse(report))
}

// Get returns a single report with its stamps and comments. Visibility is
// resolved for the caller, so a private report of someone else is a 404.
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	viewer := middleware.Viewer(c)
	report, err := h.visibility.ResolveReport(c.Context(), viewer, services.OwnerView, reportID)
	if err != nil {
		return respondError(c, err)
	}

	detail, err := h.buildDetail(c.Context(), viewer, services.OwnerView, report)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *ReportHandler) buildDetail(ctx context.Context, viewer services.Viewer, vc services.ViewContext, report *models.Report) (*dto.ReportDetailResponse, error) {
	author, err := h.auth.GetUser(ctx, report.UserID)
	if err != nil && !errors.Is(err, services.ErrUserNotFound) {
		return nil, err
	}

	stamps, err := h.reactions.Aggregate(ctx, storage.ReactionKindReport, []uuid.UUID{report.ID}, viewer)
	if err != nil {
		return nil, err
	}

	comments, err := h.comments.ListForReport(ctx, viewer, vc, report.ID)
	if err != nil {
		return nil, err
	}

	return &dto.ReportDetailResponse{
		ReportResponse: toReportResponse(report),
		AuthorName:     services.DisplayName(author),
		Stamps:         toStampGroups(stamps[report.ID]),
		Comments:       toCommentResponses(comments),
	}, nil
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}

	report, err := h.reports.Update(c.Context(), reportID, userID, services.UpdateReportInput{
		Title:      req.Title,
		Content:    req.Content,
		IsPublic:   req.IsPublic,
		ReportDate: req.ReportDate,
		Images:     req.Images,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toReportResponse(report))
}

func (h *ReportHandler) SetVisibility(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	var req dto.SetVisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}

	report, err := h.reports.SetPublic(c.Context(), reportID, userID, req.IsPublic)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toReportResponse(report))
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	if err := h.reports.Delete(c.Context(), reportID, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Report deleted"})
}
