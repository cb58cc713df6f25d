package moderation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/google/uuid"
)

var errStoreDown = errors.New("store unavailable")

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeReviewStore struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]models.Review
	getErr  error
	listErr error
	saveErr error
	saves   int
}

func newFakeReviewStore(reviews ...models.Review) *fakeReviewStore {
	s := &fakeReviewStore{reviews: make(map[uuid.UUID]models.Review)}
	for _, r := range reviews {
		s.reviews[r.ID] = r
	}
	return s
}

func (s *fakeReviewStore) Get(_ context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.reviews[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return &r, nil
}

func (s *fakeReviewStore) List(_ context.Context, f ReviewFilter) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if f.VenueID != nil && r.VenueID != *f.VenueID {
			continue
		}
		if f.AuthorID != nil && r.AuthorID != *f.AuthorID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeReviewStore) Save(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if _, ok := s.reviews[r.ID]; !ok {
		return ErrReviewNotFound
	}
	s.saves++
	s.reviews[r.ID] = *r
	return nil
}

func (s *fakeReviewStore) CountByAuthor(_ context.Context, authorID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.reviews {
		if r.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (s *fakeReviewStore) stored(id uuid.UUID) models.Review {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviews[id]
}

type fakeAuditLog struct {
	mu sync.Mutex
	// failNext makes that many upcoming Append calls fail.
	failNext    int
	appendCalls int
	readErr     error
	entries     []AuditEntry
}

func (a *fakeAuditLog) Append(_ context.Context, e *AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.appendCalls++
	if a.failNext > 0 {
		a.failNext--
		return errors.New("audit table locked")
	}
	a.entries = append(a.entries, *e)
	return nil
}

func (a *fakeAuditLog) ForReview(_ context.Context, id uuid.UUID) ([]AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.readErr != nil {
		return nil, a.readErr
	}
	var out []AuditEntry
	for _, e := range a.entries {
		if e.ReviewID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (a *fakeAuditLog) LatestActions(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Action, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.readErr != nil {
		return nil, a.readErr
	}
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[uuid.UUID]Action)
	for _, e := range a.entries {
		if want[e.ReviewID] {
			out[e.ReviewID] = e.Action
		}
	}
	return out, nil
}

func (a *fakeAuditLog) Recent(_ context.Context, limit int) ([]AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.readErr != nil {
		return nil, a.readErr
	}
	out := make([]AuditEntry, 0, limit)
	for i := len(a.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.entries[i])
	}
	return out, nil
}

func (a *fakeAuditLog) all() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}

type fakeMessenger struct {
	mu   sync.Mutex
	err  error
	sent []models.Message
}

func (m *fakeMessenger) Send(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func (m *fakeMessenger) Inbox(_ context.Context, recipientID uuid.UUID, limit, offset int) ([]models.Message, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var mine []models.Message
	for _, msg := range m.sent {
		if msg.RecipientID == recipientID {
			mine = append(mine, msg)
		}
	}
	total := int64(len(mine))
	start := min(offset, len(mine))
	end := min(start+limit, len(mine))
	return mine[start:end], total, nil
}

type stubScorer struct{ sentiment Sentiment }

func (s stubScorer) Score(text string) Sentiment {
	if text == "" {
		return ""
	}
	return s.sentiment
}

var (
	testVenue  = models.Venue{ID: uuid.MustParse("0b7d2c8e-1111-4a2b-9c3d-000000000001"), Name: "Harbor Hall"}
	testAuthor = models.User{ID: uuid.MustParse("0b7d2c8e-2222-4a2b-9c3d-000000000002"), FullName: "Dana Reyes"}
	testActor  = uuid.MustParse("0b7d2c8e-3333-4a2b-9c3d-000000000003")
)

// newReview builds a review by testAuthor at testVenue, created age
// before testNow.
func newReview(rating int, comment string, age time.Duration) models.Review {
	return models.Review{
		ID:         uuid.New(),
		Rating:     rating,
		Comment:    comment,
		ReviewType: string(TypeVenueReview),
		AuthorID:   testAuthor.ID,
		Author:     testAuthor,
		VenueID:    testVenue.ID,
		Venue:      testVenue,
		CreatedAt:  testNow.Add(-age),
		UpdatedAt:  testNow.Add(-age),
	}
}

func newTestService(store ReviewStore, audit AuditLog, messenger Messenger) *Service {
	return NewService(store, audit, messenger,
		WithClock(fixedClock),
		WithAuditRetry(3, 0),
	)
}

func newTestQueue(store ReviewStore, audit AuditLog, opts ...QueueOption) *Queue {
	return NewQueue(store, audit, append([]QueueOption{WithQueueClock(fixedClock)}, opts...)...)
}
