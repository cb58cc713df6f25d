package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/apps"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/config"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	healthHandler *handlers.HealthHandler,
	plugins []apps.Plugin,
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

	// Staff panel: JWT or admin token, then moderator access
	admin := api.Group("/admin", middleware.StaffAuth(cfg), middleware.ModeratorRequired(middleware.DBRoles(db), cfg))

	// Authenticated customer routes
	protected := api.Group("/p", middleware.JWTProtected(cfg))
	for _, p := range plugins {
		p.RegisterRoutes(protected, db, cfg)
		if ap, ok := p.(apps.AdminPlugin); ok {
			ap.RegisterAdminRoutes(admin, db, cfg)
		}
	}
}
