package moderation

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/dto"
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/middleware"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

const auditWarning = "Decision applied, but the audit entry could not be recorded"

// Handler serves the moderation panel and the author-facing review routes.
type Handler struct {
	service *Service
	queue   *Queue
	inbox   Inbox
	logger  *slog.Logger
}

func NewHandler(service *Service, queue *Queue, inbox Inbox, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, queue: queue, inbox: inbox, logger: logger}
}

// ListReviews handles GET /api/admin/moderation/reviews
func (h *Handler) ListReviews(c *fiber.Ctx) error {
	filter, err := parseQueueFilter(c)
	if err != nil {
		return h.fail(c, "query_reviews", err)
	}
	return h.listPage(c, filter)
}

// ListPending handles GET /api/admin/moderation/reviews/pending
func (h *Handler) ListPending(c *fiber.Ctx) error {
	reviews, err := h.queue.PendingReviews(c.UserContext())
	if err != nil {
		return h.fail(c, "query_reviews", err)
	}
	return c.JSON(fiber.Map{
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// Stats handles GET /api/admin/moderation/stats
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.queue.Statistics(c.UserContext())
	if err != nil {
		return h.fail(c, "review_statistics", err)
	}
	return c.JSON(stats)
}

// GetReview handles GET /api/admin/moderation/reviews/:id
func (h *Handler) GetReview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid review ID")
	}

	detail, err := h.queue.ReviewForModeration(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "get_review_for_moderation", err)
	}
	return c.JSON(detail)
}

// GetAuditTrail handles GET /api/admin/moderation/reviews/:id/audit
func (h *Handler) GetAuditTrail(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid review ID")
	}

	trail, err := h.queue.AuditTrail(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "get_review_audit", err)
	}
	return c.JSON(fiber.Map{"entries": trail})
}

// Approve handles POST /api/admin/moderation/reviews/:id/approve
func (h *Handler) Approve(c *fiber.Ctx) error {
	var req dto.ApproveReviewRequest
	return h.act(c, ActionApprove, &req, func() Payload {
		return Payload{Message: req.Message}
	})
}

// Reject handles POST /api/admin/moderation/reviews/:id/reject
func (h *Handler) Reject(c *fiber.Ctx) error {
	var req dto.RejectReviewRequest
	return h.act(c, ActionReject, &req, func() Payload {
		return Payload{Reason: req.Reason, Message: req.Message}
	})
}

// Flag handles POST /api/admin/moderation/reviews/:id/flag
func (h *Handler) Flag(c *fiber.Ctx) error {
	var req dto.FlagReviewRequest
	return h.act(c, ActionFlag, &req, func() Payload {
		return Payload{Severity: Severity(req.Severity), Reason: req.Reason}
	})
}

// RequestClarification handles POST /api/admin/moderation/reviews/:id/clarify
func (h *Handler) RequestClarification(c *fiber.Ctx) error {
	var req dto.ClarificationRequest
	return h.act(c, ActionRequestClarification, &req, func() Payload {
		return Payload{Message: req.Message}
	})
}

// Escalate handles POST /api/admin/moderation/reviews/:id/escalate
func (h *Handler) Escalate(c *fiber.Ctx) error {
	var req dto.EscalateReviewRequest
	return h.act(c, ActionEscalate, &req, func() Payload {
		return Payload{Reason: req.Reason}
	})
}

// MyReviews handles GET /api/p/reviews/mine
func (h *Handler) MyReviews(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := parseQueueFilter(c)
	if err != nil {
		return h.fail(c, "query_reviews", err)
	}
	filter.AuthorID = &userID
	filter.VenueID = nil
	return h.listPage(c, filter)
}

// Messages handles GET /api/p/messages
func (h *Handler) Messages(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	limit, offset := parsePage(c)
	messages, total, err := h.inbox.Inbox(c.UserContext(), userID, limit, offset)
	if err != nil {
		return h.fail(c, "list_messages", err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) listPage(c *fiber.Ctx, filter QueueFilter) error {
	res, err := h.queue.Query(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, "query_reviews", err)
	}

	limit, offset := parsePage(c)
	total := len(res.Reviews)
	start := min(offset, total)
	end := min(start+limit, total)

	return c.JSON(fiber.Map{
		"reviews":        res.Reviews[start:end],
		"metrics":        res.Metrics,
		"total_filtered": total,
		"limit":          limit,
		"offset":         offset,
	})
}

// act runs one moderation action for the review in the path. payload is
// called after the body has been parsed into req.
func (h *Handler) act(c *fiber.Ctx, action Action, req interface{}, payload func() Payload) error {
	op := action.operation()

	actorID, err := middleware.GetActorID(c)
	if err != nil {
		return unauthorized(c)
	}
	reviewID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid review ID")
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	res, err := h.service.Apply(c.UserContext(), reviewID, action, actorID, payload())
	if err != nil {
		return h.fail(c, op, err)
	}

	body := fiber.Map{
		"review":         res.Review,
		"resolution":     res.Resolution,
		"audit_recorded": res.AuditRecorded,
	}
	if res.Message != nil {
		body["message"] = res.Message
	}
	if !res.AuditRecorded {
		body["warning"] = auditWarning
	}
	return c.JSON(body)
}

// fail maps a service error to a response. Only unexpected failures are
// logged and reported to Sentry.
func (h *Handler) fail(c *fiber.Ctx, op string, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: verr.Error(), Field: verr.Field,
		})
	case errors.Is(err, ErrReviewNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Review not found",
		})
	}

	h.logger.ErrorContext(c.UserContext(), "moderation request failed",
		"action", op,
		"path", c.Path(),
		"error", err.Error(),
	)
	if hub := sentryfiber.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Moderation operation failed",
	})
}

func parseQueueFilter(c *fiber.Ctx) (QueueFilter, error) {
	f := QueueFilter{
		Status:   Status(c.Query("status")),
		Type:     ReviewType(c.Query("type")),
		Severity: Severity(c.Query("severity")),
		Date:     DateBucket(c.Query("date")),
		Search:   c.Query("search"),
		Sort:     SortOrder(c.Query("sort")),
	}

	rating, err := ParseRatingRange(c.Query("rating"))
	if err != nil {
		return f, err
	}
	f.Rating = rating

	if f.VenueID, err = parseUUIDQuery(c, "venue_id"); err != nil {
		return f, err
	}
	if f.AuthorID, err = parseUUIDQuery(c, "author_id"); err != nil {
		return f, err
	}
	return f, nil
}

func parseUUIDQuery(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalid(key, "must be a UUID")
	}
	return &id, nil
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit", strconv.Itoa(defaultPageSize)))
	offset, _ = strconv.Atoi(c.Query("offset", "0"))

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: msg,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Unauthorized",
	})
}
