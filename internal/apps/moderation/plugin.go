package moderation

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin implements the apps.AdminPlugin interface for review moderation.
type Plugin struct {
	scorer SentimentScorer
	logger *slog.Logger
}

// New creates the moderation Plugin. scorer may be nil, in which case
// review details carry no sentiment.
func New(scorer SentimentScorer) *Plugin {
	return &Plugin{scorer: scorer, logger: slog.Default().With("plugin", "moderation")}
}

func (p *Plugin) ID() string { return "moderation" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&AuditEntry{},
	}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	mountUserRoutes(router, p.handler(db, cfg))
}

func (p *Plugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	mountAdminRoutes(router, p.handler(db, cfg))
}

func mountUserRoutes(router fiber.Router, handler *Handler) {
	router.Get("/reviews/mine", handler.MyReviews)
	router.Get("/messages", handler.Messages)
}

func mountAdminRoutes(router fiber.Router, handler *Handler) {
	mod := router.Group("/moderation")
	mod.Get("/stats", handler.Stats)
	mod.Get("/reviews", handler.ListReviews)
	mod.Get("/reviews/pending", handler.ListPending)
	mod.Get("/reviews/:id", handler.GetReview)
	mod.Get("/reviews/:id/audit", handler.GetAuditTrail)

	mod.Post("/reviews/:id/approve", handler.Approve)
	mod.Post("/reviews/:id/reject", handler.Reject)
	mod.Post("/reviews/:id/flag", handler.Flag)
	mod.Post("/reviews/:id/clarify", handler.RequestClarification)
	mod.Post("/reviews/:id/escalate", handler.Escalate)
}

func (p *Plugin) handler(db *gorm.DB, cfg *config.Config) *Handler {
	reviews := NewReviewRepository(db)
	audit := NewAuditRepository(db)
	messages := NewMessageRepository(db)

	service := NewService(reviews, audit, messages,
		WithAuditRetry(cfg.AuditRetries, cfg.AuditRetryDelay),
		WithLogger(p.logger),
	)

	opts := []QueueOption{
		WithAgingThreshold(cfg.AgingThreshold),
		WithRecentActivity(cfg.RecentActivityLimit),
	}
	if p.scorer != nil {
		opts = append(opts, WithSentiment(p.scorer))
	}
	queue := NewQueue(reviews, audit, opts...)

	return NewHandler(service, queue, messages, p.logger)
}
