package moderation

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// Statistics is the dashboard summary of the whole review collection.
type Statistics struct {
	Total          int            `json:"total"`
	Pending        int            `json:"pending"`
	Flagged        int            `json:"flagged"`
	Aging          int            `json:"aging"`
	ByStatus       map[Status]int `json:"by_status"`
	AverageRating  float64        `json:"average_rating"`
	RecentActivity []AuditEntry   `json:"recent_activity"`
}

// ReviewDetail is a single review with the context a moderator needs to
// decide on it.
type ReviewDetail struct {
	Review              ReviewView   `json:"review"`
	OriginalComment     string       `json:"original_comment"`
	DaysSinceSubmission int          `json:"days_since_submission"`
	CustomerReviewCount int64        `json:"customer_review_count"`
	FlaggedTerms        []Term       `json:"flagged_terms"`
	Sentiment           Sentiment    `json:"sentiment,omitempty"`
	AuditTrail          []AuditEntry `json:"audit_trail"`
}

func (q *Queue) Statistics(ctx context.Context) (*Statistics, error) {
	candidates, states, err := q.load(ctx, ReviewFilter{})
	if err != nil {
		return nil, err
	}

	m := q.metrics(candidates, states, q.now())
	stats := &Statistics{
		Total:          m.Total,
		Pending:        m.Pending,
		Flagged:        m.Flagged,
		Aging:          m.Aging,
		ByStatus:       m.ByStatus,
		RecentActivity: make([]AuditEntry, 0),
	}

	if len(candidates) > 0 {
		sum := 0
		for i := range candidates {
			sum += candidates[i].Rating
		}
		avg := float64(sum) / float64(len(candidates))
		stats.AverageRating = math.Round(avg*10) / 10
	}

	if q.recentLimit > 0 {
		recent, err := q.audit.Recent(ctx, q.recentLimit)
		if err != nil {
			return nil, &OperationError{Op: "review_statistics", Err: err}
		}
		stats.RecentActivity = append(stats.RecentActivity, recent...)
	}
	return stats, nil
}

func (q *Queue) ReviewForModeration(ctx context.Context, id uuid.UUID) (*ReviewDetail, error) {
	const op = "get_review_for_moderation"

	r, err := q.reviews.Get(ctx, id)
	if err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}
	trail, err := q.audit.ForReview(ctx, id)
	if err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}
	count, err := q.reviews.CountByAuthor(ctx, r.AuthorID)
	if err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}

	var last Action
	if len(trail) > 0 {
		last = trail[len(trail)-1].Action
	}
	state := ResolveWithHistory(r, last)
	now := q.now()

	original := r.SubmittedText()
	if r.OriginalComment == nil {
		original = StripMarkers(original)
	}

	d := &ReviewDetail{
		Review:              q.view(r, state, now),
		OriginalComment:     original,
		DaysSinceSubmission: int(now.Sub(r.CreatedAt) / (24 * time.Hour)),
		CustomerReviewCount: count,
		FlaggedTerms:        defaultScanner.Scan(original),
		AuditTrail:          trail,
	}
	if d.FlaggedTerms == nil {
		d.FlaggedTerms = []Term{}
	}
	if d.AuditTrail == nil {
		d.AuditTrail = []AuditEntry{}
	}
	if q.sentiment != nil {
		d.Sentiment = q.sentiment.Score(original)
	}
	return d, nil
}

// AuditTrail returns the decisions recorded for a review, oldest first.
func (q *Queue) AuditTrail(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	const op = "get_review_audit"

	if _, err := q.reviews.Get(ctx, id); err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}
	trail, err := q.audit.ForReview(ctx, id)
	if err != nil {
		return nil, &OperationError{Op: op, Err: err}
	}
	if trail == nil {
		trail = []AuditEntry{}
	}
	return trail, nil
}
