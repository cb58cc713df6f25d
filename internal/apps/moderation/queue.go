package moderation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/google/uuid"
)

const DefaultAgingThreshold = 48 * time.Hour

type DateBucket string

const (
	DateAny   DateBucket = ""
	DateToday DateBucket = "today"
	DateWeek  DateBucket = "week"
	DateMonth DateBucket = "month"
)

func (d DateBucket) Valid() bool {
	switch d {
	case DateAny, DateToday, DateWeek, DateMonth:
		return true
	}
	return false
}

// Since returns the earliest creation time inside the bucket, or the zero
// time for an unbounded bucket. "today" starts at midnight in now's zone.
func (d DateBucket) Since(now time.Time) time.Time {
	switch d {
	case DateToday:
		y, m, day := now.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	case DateWeek:
		return now.AddDate(0, 0, -7)
	case DateMonth:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// RatingRange is an inclusive band of star ratings.
type RatingRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r RatingRange) Contains(rating int) bool {
	return rating >= r.Min && rating <= r.Max
}

// ParseRatingRange accepts "3" or "1-2". An empty string means no filter.
func ParseRatingRange(s string) (*RatingRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	lo, hi, found := strings.Cut(s, "-")
	if !found {
		hi = lo
	}
	low, err1 := strconv.Atoi(strings.TrimSpace(lo))
	high, err2 := strconv.Atoi(strings.TrimSpace(hi))
	if err1 != nil || err2 != nil {
		return nil, invalid("rating", fmt.Sprintf("%q is not a rating or rating range", s))
	}
	if low < 1 || high > 5 || low > high {
		return nil, invalid("rating", "range must lie within 1-5 with min <= max")
	}
	return &RatingRange{Min: low, Max: high}, nil
}

type Priority string

const (
	PriorityUrgent    Priority = "urgent"
	PriorityElevated  Priority = "elevated"
	PriorityAttention Priority = "attention"
	PriorityNormal    Priority = "normal"
)

// PriorityOf picks the display indicator of a queue item. It never
// affects ordering.
func PriorityOf(age, threshold time.Duration, status Status, rating int) Priority {
	switch {
	case age > threshold:
		return PriorityUrgent
	case status == StatusFlagged:
		return PriorityElevated
	case rating <= 2:
		return PriorityAttention
	}
	return PriorityNormal
}

type QueueFilter struct {
	Status   Status
	Type     ReviewType
	Rating   *RatingRange
	Severity Severity
	Date     DateBucket
	Search   string
	VenueID  *uuid.UUID
	AuthorID *uuid.UUID
	Sort     SortOrder
}

func (f QueueFilter) validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return invalid("status", "is not a moderation status")
	}
	if f.Type != "" && !f.Type.Valid() {
		return invalid("type", "must be one of: venue_review, service_feedback, dispute_comment")
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return invalid("severity", "must be one of: low, medium, high, critical")
	}
	if !f.Date.Valid() {
		return invalid("date", "must be one of: today, week, month")
	}
	if f.Sort != "" && f.Sort != SortNewest && f.Sort != SortOldest {
		return invalid("sort", "must be newest or oldest")
	}
	return nil
}

// ReviewView is one queue row.
type ReviewView struct {
	ID         uuid.UUID     `json:"id"`
	Rating     int           `json:"rating"`
	Comment    string        `json:"comment"`
	ReviewType string        `json:"review_type"`
	AuthorID   uuid.UUID     `json:"author_id"`
	AuthorName string        `json:"author_name"`
	VenueID    uuid.UUID     `json:"venue_id"`
	VenueName  string        `json:"venue_name"`
	BookingID  *uuid.UUID    `json:"booking_id,omitempty"`
	Status     Status        `json:"status"`
	Reason     string        `json:"reason,omitempty"`
	Flag       *FlagMetadata `json:"flag,omitempty"`
	Priority   Priority      `json:"priority"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// QueueMetrics describe the whole candidate set, not the filtered view.
// ByStatus sums to Total.
type QueueMetrics struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	Flagged  int            `json:"flagged"`
	Aging    int            `json:"aging"`
	ByStatus map[Status]int `json:"by_status"`
}

type QueueResult struct {
	Reviews []ReviewView `json:"reviews"`
	Metrics QueueMetrics `json:"metrics"`
}

// Queue builds moderation views over the review collection.
type Queue struct {
	reviews        ReviewStore
	audit          AuditLog
	sentiment      SentimentScorer
	now            func() time.Time
	agingThreshold time.Duration
	recentLimit    int
}

type QueueOption func(*Queue)

func WithQueueClock(now func() time.Time) QueueOption {
	return func(q *Queue) { q.now = now }
}

func WithAgingThreshold(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.agingThreshold = d
		}
	}
}

func WithRecentActivity(limit int) QueueOption {
	return func(q *Queue) { q.recentLimit = limit }
}

func WithSentiment(s SentimentScorer) QueueOption {
	return func(q *Queue) { q.sentiment = s }
}

func NewQueue(reviews ReviewStore, audit AuditLog, opts ...QueueOption) *Queue {
	q := &Queue{
		reviews:        reviews,
		audit:          audit,
		now:            time.Now,
		agingThreshold: DefaultAgingThreshold,
		recentLimit:    10,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// PendingReviews lists reviews still waiting for a first decision.
func (q *Queue) PendingReviews(ctx context.Context) ([]ReviewView, error) {
	res, err := q.Query(ctx, QueueFilter{Status: StatusPending})
	if err != nil {
		return nil, err
	}
	return res.Reviews, nil
}

// Query fetches the candidates, resolves their state, filters and sorts
// them. A failed read is returned as an error, never as an empty queue.
func (q *Queue) Query(ctx context.Context, f QueueFilter) (*QueueResult, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	candidates, states, err := q.load(ctx, ReviewFilter{VenueID: f.VenueID, AuthorID: f.AuthorID})
	if err != nil {
		return nil, err
	}

	now := q.now()
	res := &QueueResult{
		Reviews: make([]ReviewView, 0),
		Metrics: q.metrics(candidates, states, now),
	}
	since := f.Date.Since(now)
	search := strings.ToLower(strings.TrimSpace(f.Search))

	for i := range candidates {
		r := &candidates[i]
		state := states[i]

		if f.Status != "" && state.Status != f.Status {
			continue
		}
		if f.Type != "" && ReviewType(reviewTypeOrDefault(r.ReviewType)) != f.Type {
			continue
		}
		if f.Rating != nil && !f.Rating.Contains(r.Rating) {
			continue
		}
		if f.Severity != "" && (state.Flag == nil || state.Flag.Severity != f.Severity) {
			continue
		}
		if !since.IsZero() && r.CreatedAt.Before(since) {
			continue
		}
		if search != "" && !matchesSearch(r, search) {
			continue
		}
		res.Reviews = append(res.Reviews, q.view(r, state, now))
	}

	sortViews(res.Reviews, f.Sort)
	return res, nil
}

// load reads the candidate reviews and resolves each one, including the
// clarification state kept in the audit trail.
func (q *Queue) load(ctx context.Context, filter ReviewFilter) ([]models.Review, []Resolution, error) {
	candidates, err := q.reviews.List(ctx, filter)
	if err != nil {
		return nil, nil, &OperationError{Op: "query_reviews", Err: err}
	}

	ids := make([]uuid.UUID, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ID
	}
	latest := map[uuid.UUID]Action{}
	if len(ids) > 0 {
		latest, err = q.audit.LatestActions(ctx, ids)
		if err != nil {
			return nil, nil, &OperationError{Op: "query_reviews", Err: err}
		}
	}

	states := make([]Resolution, len(candidates))
	for i := range candidates {
		states[i] = ResolveWithHistory(&candidates[i], latest[candidates[i].ID])
	}
	return candidates, states, nil
}

func (q *Queue) metrics(reviews []models.Review, states []Resolution, now time.Time) QueueMetrics {
	m := QueueMetrics{Total: len(reviews), ByStatus: make(map[Status]int)}
	for i := range reviews {
		st := states[i].Status
		m.ByStatus[st]++
		switch st {
		case StatusPending:
			m.Pending++
		case StatusFlagged:
			m.Flagged++
		default:
			continue
		}
		if now.Sub(reviews[i].CreatedAt) > q.agingThreshold {
			m.Aging++
		}
	}
	return m
}

func (q *Queue) view(r *models.Review, state Resolution, now time.Time) ReviewView {
	return ReviewView{
		ID:         r.ID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewType: reviewTypeOrDefault(r.ReviewType),
		AuthorID:   r.AuthorID,
		AuthorName: r.Author.FullName,
		VenueID:    r.VenueID,
		VenueName:  r.Venue.Name,
		BookingID:  r.BookingID,
		Status:     state.Status,
		Reason:     state.Reason,
		Flag:       state.Flag,
		Priority:   PriorityOf(now.Sub(r.CreatedAt), q.agingThreshold, state.Status, r.Rating),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func matchesSearch(r *models.Review, needle string) bool {
	fields := []string{r.Comment, r.Venue.Name, r.Author.FullName}
	if r.OriginalComment != nil {
		fields = append(fields, *r.OriginalComment)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func sortViews(views []ReviewView, order SortOrder) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i], views[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if order == SortOldest {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
