package handlers

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/locm1/nippo/internal/dto"
	"github.com/locm1/nippo/internal/email"
	"github.com/locm1/nippo/internal/middleware"
	"github.com/locm1/nippo/internal/services"
)

// ShareHandler serves the public share surface. Reads here ignore who the
// viewer is: only public reports resolve, even for the owner.
type ShareHandler struct {
	visibility *services.VisibilityService
	builder    *ReportHandler
	sender     email.Sender
	baseURL    string
}

func NewShareHandler(visibility *services.VisibilityService, builder *ReportHandler, sender email.Sender, baseURL string) *ShareHandler {
	return &ShareHandler{
		visibility: visibility,
		builder:    builder,
		sender:     sender,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Get resolves a report through the shared-link rules and returns the same
// detail payload as the owner surface. Anonymous access is expected here.
func (h *ShareHandler) Get(c *fiber.Ctx) error {
	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	viewer := middleware.Viewer(c)
	report, err := h.visibility.ResolveReport(c.Context(), viewer, services.SharedLinkView, reportID)
	if err != nil {
		return respondError(c, err)
	}

	detail, err := h.builder.buildDetail(c.Context(), viewer, services.SharedLinkView, report)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// SendEmail mails a share link for a report the caller can read through the
// shared-link rules. Private reports cannot be shared, owner or not.
func (h *ShareHandler) SendEmail(c *fiber.Ctx) error {
	if _, err := middleware.UserID(c); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	var req dto.ShareEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}
	if !strings.Contains(req.RecipientEmail, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid recipient email"})
	}

	viewer := middleware.Viewer(c)
	report, err := h.visibility.ResolveReport(c.Context(), viewer, services.SharedLinkView, reportID)
	if err != nil {
		return respondError(c, err)
	}

	shareURL := fmt.Sprintf("%s/share/%s", h.baseURL, report.ID)
	if err := h.sender.SendShareMail(req.RecipientEmail, services.DisplayTitle(report), shareURL); err != nil {
		slog.Error("share mail failed", "report_id", report.ID, "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": true, "message": "Could not send email"})
	}

	return c.JSON(fiber.Map{"message": "Share email sent"})
}
