package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/locm1/nippo/internal/config"
	"github.com/locm1/nippo/internal/handlers"
	"github.com/locm1/nippo/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	reportHandler *handlers.ReportHandler,
	commentHandler *handlers.CommentHandler,
	reactionHandler *handlers.ReactionHandler,
	notificationHandler *handlers.NotificationHandler,
	templateHandler *handlers.TemplateHandler,
	shareHandler *handlers.ShareHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth is public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	// Profile (JWT required)
	api.Get("/profile", middleware.JWTProtected(cfg), authHandler.GetProfile)
	api.Put("/profile", middleware.JWTProtected(cfg), authHandler.UpdateProfile)

	// Reports. Reads accept anonymous callers; visibility is resolved per
	// request, so JWT is optional there and required on every mutation.
	api.Get("/reports", middleware.JWTProtected(cfg), reportHandler.List)
	api.Post("/reports", middleware.JWTProtected(cfg), reportHandler.Create)
	api.Get("/reports/public", middleware.JWTOptional(cfg), reportHandler.ListPublic)
	api.Get("/reports/:id", middleware.JWTOptional(cfg), reportHandler.Get)
	api.Put("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Update)
	api.Put("/reports/:id/visibility", middleware.JWTProtected(cfg), reportHandler.SetVisibility)
	api.Delete("/reports/:id", middleware.JWTProtected(cfg), reportHandler.Delete)

	// Comments and stamps, gated by the parent report's visibility
	api.Get("/reports/:id/comments", middleware.JWTOptional(cfg), commentHandler.List)
	api.Post("/reports/:id/comments", middleware.JWTProtected(cfg), commentHandler.Create)
	api.Post("/reports/:id/reactions", middleware.JWTProtected(cfg), reactionHandler.ToggleOnReport)
	api.Post("/comments/:id/reactions", middleware.JWTProtected(cfg), reactionHandler.ToggleOnComment)

	// Shared-link surface: public reports only, anonymous welcome
	api.Get("/share/:id", middleware.JWTOptional(cfg), shareHandler.Get)
	api.Post("/share/:id/email", middleware.JWTProtected(cfg), shareHandler.SendEmail)

	// Notifications (JWT required)
	notifications := api.Group("/notifications", middleware.JWTProtected(cfg))
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/stream", notificationHandler.Stream)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)

	// Templates (JWT required)
	templates := api.Group("/templates", middleware.JWTProtected(cfg))
	templates.Get("/", templateHandler.List)
	templates.Post("/", templateHandler.Create)
	templates.Delete("/:id", templateHandler.Delete)
}
