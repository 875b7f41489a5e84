package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/locm1/nippo/internal/dto"
	"github.com/locm1/nippo/internal/middleware"
	"github.com/locm1/nippo/internal/services"
)

type ReactionHandler struct {
	reactions *services.ReactionService
}

func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

// ToggleOnReport flips the caller's stamp on a report. The response says
// whether the stamp is active after the call, not what changed.
func (h *ReactionHandler) ToggleOnReport(c *fiber.Ctx) error {
	reportID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid report ID"})
	}
	return h.toggle(c, func(viewer services.Viewer, emoji string) (bool, error) {
		return h.reactions.ToggleOnReport(c.Context(), viewer, reportID, emoji)
	})
}

func (h *ReactionHandler) ToggleOnComment(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid comment ID"})
	}
	return h.toggle(c, func(viewer services.Viewer, emoji string) (bool, error) {
		return h.reactions.ToggleOnComment(c.Context(), viewer, commentID, emoji)
	})
}

func (h *ReactionHandler) toggle(c *fiber.Ctx, fn func(services.Viewer, string) (bool, error)) error {
	var req dto.ToggleReactionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid request body"})
	}

	active, err := fn(middleware.Viewer(c), req.Emoji)
	if err != nil {
		if errors.Is(err, services.ErrUnknownEmoji) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Unknown emoji"})
		}
		return respondError(c, err)
	}

	return c.JSON(dto.ToggleReactionResponse{Active: active})
}
