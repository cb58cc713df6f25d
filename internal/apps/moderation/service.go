package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/google/uuid"
)

// Payload carries the operator input of a moderation action. Which
// fields are required depends on the action.
type Payload struct {
	Message  string
	Reason   string
	Severity Severity
}

// Result is the outcome of an applied action. AuditRecorded is false when
// the decision took effect but the audit entry could not be written.
type Result struct {
	Review        *models.Review  `json:"review"`
	Message       *models.Message `json:"message,omitempty"`
	Resolution    Resolution      `json:"resolution"`
	AuditRecorded bool            `json:"audit_recorded"`
}

// Service applies moderation actions. Any action is accepted from any
// state; there is no locking, so concurrent operators race and the last
// write wins.
type Service struct {
	reviews   ReviewStore
	audit     AuditLog
	messenger Messenger
	logger    *slog.Logger
	now       func() time.Time

	auditAttempts int
	auditDelay    time.Duration
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAuditRetry sets how many times an audit write is attempted before
// the failure is logged and given up on.
func WithAuditRetry(attempts int, delay time.Duration) Option {
	return func(s *Service) {
		if attempts < 1 {
			attempts = 1
		}
		s.auditAttempts = attempts
		s.auditDelay = delay
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(reviews ReviewStore, audit AuditLog, messenger Messenger, opts ...Option) *Service {
	s := &Service{
		reviews:       reviews,
		audit:         audit,
		messenger:     messenger,
		logger:        slog.Default(),
		now:           time.Now,
		auditAttempts: 3,
		auditDelay:    200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Approve(ctx context.Context, reviewID, actorID uuid.UUID, message string) (*Result, error) {
	return s.Apply(ctx, reviewID, ActionApprove, actorID, Payload{Message: message})
}

func (s *Service) Reject(ctx context.Context, reviewID, actorID uuid.UUID, reason, message string) (*Result, error) {
	return s.Apply(ctx, reviewID, ActionReject, actorID, Payload{Reason: reason, Message: message})
}

func (s *Service) Flag(ctx context.Context, reviewID, actorID uuid.UUID, severity Severity, reason string) (*Result, error) {
	return s.Apply(ctx, reviewID, ActionFlag, actorID, Payload{Severity: severity, Reason: reason})
}

func (s *Service) RequestClarification(ctx context.Context, reviewID, actorID uuid.UUID, message string) (*Result, error) {
	return s.Apply(ctx, reviewID, ActionRequestClarification, actorID, Payload{Message: message})
}

func (s *Service) Escalate(ctx context.Context, reviewID, actorID uuid.UUID, reason string) (*Result, error) {
	return s.Apply(ctx, reviewID, ActionEscalate, actorID, Payload{Reason: reason})
}

// Apply validates and performs one moderation action, then audits it.
// Validation errors are returned before anything is written.
// A storage or messaging failure is returned as *OperationError and
// nothing is audited.
func (s *Service) Apply(ctx context.Context, reviewID uuid.UUID, action Action, actorID uuid.UUID, p Payload) (*Result, error) {
	if actorID == uuid.Nil {
		return nil, invalid("actor_id", "is required")
	}
	if reviewID == uuid.Nil {
		return nil, invalid("review_id", "is required")
	}
	if !action.Valid() {
		return nil, invalid("action", "is not a moderation action")
	}

	p.Message = strings.TrimSpace(p.Message)
	p.Reason = strings.TrimSpace(p.Reason)
	p.Severity = Severity(strings.ToLower(strings.TrimSpace(string(p.Severity))))
	if err := checkPayload(action, p); err != nil {
		return nil, err
	}

	op := action.operation()
	review, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}
	if action == ActionReject && !AllowedRejectReason(ReviewType(review.ReviewType), p.Reason) {
		return nil, invalid("reason", fmt.Sprintf("is not an allowed rejection reason for %s", reviewTypeOrDefault(review.ReviewType)))
	}

	res := &Result{Review: review}
	now := s.now()

	if action == ActionRequestClarification {
		msg := &models.Message{
			ID:          uuid.New(),
			SenderID:    actorID,
			RecipientID: review.AuthorID,
			ReviewID:    &review.ID,
			Subject:     clarificationSubject(review),
			Body:        p.Message,
			CreatedAt:   now,
		}
		if err := s.messenger.Send(ctx, msg); err != nil {
			return nil, &OperationError{Op: op, Err: err}
		}
		res.Message = msg
	} else {
		applyTransition(review, action, actorID, p, now)
		if err := s.reviews.Save(ctx, review); err != nil {
			return nil, &OperationError{Op: op, Err: err}
		}
	}

	res.AuditRecorded = s.recordAudit(ctx, &AuditEntry{
		ID:        uuid.New(),
		ReviewID:  review.ID,
		ActorID:   actorID,
		Action:    action,
		Detail:    auditDetail(action, p),
		Timestamp: now,
	})

	last := Action("")
	if res.AuditRecorded {
		last = action
	}
	res.Resolution = ResolveWithHistory(review, last)
	return res, nil
}

func checkPayload(action Action, p Payload) error {
	switch action {
	case ActionApprove:
		return validatePayload(approvePayload{Message: p.Message})
	case ActionReject:
		return validatePayload(rejectPayload{Reason: p.Reason, Message: p.Message})
	case ActionFlag:
		return validatePayload(flagPayload{Severity: string(p.Severity), Reason: p.Reason})
	case ActionRequestClarification:
		return validatePayload(clarificationPayload{Message: p.Message})
	case ActionEscalate:
		return validatePayload(escalatePayload{Reason: p.Reason})
	}
	return nil
}

// applyTransition rewrites the review for action. The reviewer's text is
// captured into OriginalComment the first time and never touched again.
func applyTransition(r *models.Review, action Action, actorID uuid.UUID, p Payload, now time.Time) {
	if r.OriginalComment == nil {
		original := r.Comment
		r.OriginalComment = &original
	}

	r.FlagSeverity = ""
	switch action {
	case ActionApprove:
		r.Comment = ApprovedComment(r.Comment, p.Message)
		r.ModerationStatus = string(StatusApproved)
		r.StatusReason = p.Message
	case ActionReject:
		r.Comment = RejectedComment(p.Reason, p.Message)
		r.ModerationStatus = string(StatusRejected)
		r.StatusReason = p.Reason
	case ActionFlag:
		r.Comment = FlaggedComment(r.Comment, p.Severity, p.Reason)
		r.ModerationStatus = string(StatusFlagged)
		r.StatusReason = p.Reason
		r.FlagSeverity = string(p.Severity)
	case ActionEscalate:
		r.Comment = EscalatedComment(r.Comment, p.Reason)
		r.ModerationStatus = string(StatusEscalated)
		r.StatusReason = p.Reason
	}

	actor := actorID
	at := now
	r.ModeratedBy = &actor
	r.ModeratedAt = &at
	r.UpdatedAt = now
}

// recordAudit appends entry, retrying a bounded number of times. A final
// failure is logged and reported as false; the moderation decision stands.
func (s *Service) recordAudit(ctx context.Context, entry *AuditEntry) bool {
	var err error
	attempts := 0
	for attempts < s.auditAttempts {
		attempts++
		if err = s.audit.Append(ctx, entry); err == nil {
			return true
		}
		if attempts < s.auditAttempts && !sleepCtx(ctx, s.auditDelay) {
			break
		}
	}

	s.logger.ErrorContext(ctx, "moderation audit write failed",
		"action", string(entry.Action),
		"review_id", entry.ReviewID.String(),
		"actor_id", entry.ActorID.String(),
		"detail", entry.Detail,
		"attempts", attempts,
		"error", err.Error(),
	)
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func auditDetail(action Action, p Payload) string {
	switch action {
	case ActionApprove:
		if p.Message == "" {
			return "approved"
		}
		return "approved: " + p.Message
	case ActionReject:
		return fmt.Sprintf("reason=%s; message=%s", p.Reason, p.Message)
	case ActionFlag:
		return fmt.Sprintf("severity=%s; reason=%s", p.Severity, p.Reason)
	case ActionRequestClarification:
		return "message=" + p.Message
	case ActionEscalate:
		return "reason=" + p.Reason
	}
	return ""
}

// maxSubjectLen matches the size of models.Message.Subject.
const maxSubjectLen = 255

func clarificationSubject(r *models.Review) string {
	if r.Venue.Name == "" {
		return "Clarification requested for your review"
	}
	subject := []rune("Clarification requested for your review of " + r.Venue.Name)
	if len(subject) > maxSubjectLen {
		subject = subject[:maxSubjectLen]
	}
	return string(subject)
}

func reviewTypeOrDefault(t string) string {
	if ReviewType(t).Valid() {
		return t
	}
	return string(TypeVenueReview)
}

// IsValidation reports whether err was raised before any write.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
