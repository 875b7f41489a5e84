package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/locm1/nippo/internal/services"
)

// respondError maps the service error taxonomy onto HTTP. NotFound covers
// both absence and visibility denial; the message never distinguishes them.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": true, "message": "Not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": true, "message": "Forbidden"})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": err.Error()})
	case errors.Is(err, services.ErrTransient):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": true, "message": "Temporarily unavailable, please retry"})
	default:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": true, "message": "Internal server error"})
	}
}
