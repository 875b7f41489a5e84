package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/locm1/nippo/internal/dto"
	"github.com/locm1/nippo/internal/middleware"
	"github.com/locm1/nippo/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// List returns the comments of a report the caller can read, oldest first,
// each decorated with its author name and aggregated stamps.
func (h *CommentHandler) List(c *fiber.Ctx) error {
	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	viewer := middleware.Viewer(c)
	comments, err := h.comments.ListForReport(c.Context(), viewer, services.OwnerView, reportID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"comments": toCommentResponses(comments)})
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}

	viewer := middleware.Viewer(c)
	comment, err := h.comments.Create(c.Context(), viewer, reportID, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}
