package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/locm1/nippo/internal/middleware"
	"github.com/locm1/nippo/internal/notify"
	"github.com/locm1/nippo/internal/services"
)

const streamKeepAlive = 30 * time.Second

type NotificationHandler struct {
	notifications *services.NotificationService
	hub           *notify.Hub
}

func NewNotificationHandler(notifications *services.NotificationService, hub *notify.Hub) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, hub: hub}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	notifications, err := h.notifications.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": true, "message": "Invalid notification ID"})
	}

	if err := h.notifications.MarkRead(c.Context(), id, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	if err := h.notifications.MarkAllRead(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read"})
}

// Stream pushes the caller's notifications over server-sent events. The
// subscription lives as long as the client keeps the connection open;
// periodic comment lines keep intermediaries from timing out the stream.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": true, "message": "Unauthorized"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(userID)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)

		keepalive := time.NewTicker(streamKeepAlive)
		defer keepalive.Stop()

		for {
			select {
			case n, ok := <-sub.Events():
				if !ok {
					return
				}
				payload, err := json.Marshal(n)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: notification\ndata: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
