package apps

import (
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every feature module must implement.
type Plugin interface {
	// ID returns the unique module identifier used in logs.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts user-facing routes on the given Fiber group.
	// The group is already prefixed with /api/p and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}

// AdminPlugin extends Plugin with staff route registration.
type AdminPlugin interface {
	Plugin

	// RegisterAdminRoutes mounts staff-only routes on the given Fiber group.
	// The group is prefixed with /api/admin and has moderator access applied,
	// so handlers can read the acting moderator from the request.
	RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config)
}
