package moderation

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	app       *fiber.App
	store     *fakeReviewStore
	audit     *fakeAuditLog
	messenger *fakeMessenger
}

func newHandlerFixture(t *testing.T, reviews ...models.Review) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		store:     newFakeReviewStore(reviews...),
		audit:     &fakeAuditLog{},
		messenger: &fakeMessenger{},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := NewService(f.store, f.audit, f.messenger,
		WithClock(fixedClock),
		WithAuditRetry(2, 0),
		WithLogger(logger),
	)
	h := NewHandler(svc, newTestQueue(f.store, f.audit), f.messenger, logger)

	f.app = fiber.New()
	admin := f.app.Group("/api/admin", func(c *fiber.Ctx) error {
		c.Locals("actor_id", testActor)
		return c.Next()
	})
	user := f.app.Group("/api/p", func(c *fiber.Ctx) error {
		c.Locals("user", jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": testAuthor.ID.String(),
		}))
		return c.Next()
	})

	mountAdminRoutes(admin, h)
	mountUserRoutes(user, h)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestListReviewsPaginatesFilteredView(t *testing.T) {
	f := newHandlerFixture(t,
		newReview(1, "awful", time.Hour),
		newReview(2, "poor", 2*time.Hour),
		newReview(2, "meh", 3*time.Hour),
		newReview(5, "great", 4*time.Hour),
	)

	status, body := f.do(t, http.MethodGet, "/api/admin/moderation/reviews?rating=1-2&limit=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["reviews"], 2)
	require.Equal(t, float64(3), body["total_filtered"])
	require.Equal(t, float64(2), body["limit"])

	metrics := body["metrics"].(map[string]interface{})
	require.Equal(t, float64(4), metrics["total"])

	status, body = f.do(t, http.MethodGet, "/api/admin/moderation/reviews?rating=1-2&limit=2&offset=2", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["reviews"], 1)

	status, body = f.do(t, http.MethodGet, "/api/admin/moderation/reviews?offset=50", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["reviews"], 0)
}

func TestListReviewsRejectsBadFilters(t *testing.T) {
	f := newHandlerFixture(t)

	for _, q := range []string{"rating=9", "status=archived", "venue_id=nope", "date=decade"} {
		status, body := f.do(t, http.MethodGet, "/api/admin/moderation/reviews?"+q, nil)
		require.Equal(t, fiber.StatusBadRequest, status, q)
		require.Equal(t, true, body["error"], q)
	}
}

func TestListReviewsStoreFailure(t *testing.T) {
	f := newHandlerFixture(t, newReview(3, "ok", time.Hour))
	f.store.listErr = errStoreDown

	status, body := f.do(t, http.MethodGet, "/api/admin/moderation/reviews/pending", nil)
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Equal(t, "Moderation operation failed", body["message"])
}

func TestApproveEndpoint(t *testing.T) {
	r := newReview(5, "Superb sound", time.Hour)
	f := newHandlerFixture(t, r)

	status, body := f.do(t, http.MethodPost, "/api/admin/moderation/reviews/"+r.ID.String()+"/approve", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["audit_recorded"])
	require.NotContains(t, body, "warning")

	resolution := body["resolution"].(map[string]interface{})
	require.Equal(t, "approved", resolution["status"])
	require.Equal(t, "[APPROVED] Superb sound", f.store.stored(r.ID).Comment)
}

func TestActionEndpointErrors(t *testing.T) {
	r := newReview(2, "meh", time.Hour)
	f := newHandlerFixture(t, r)
	base := "/api/admin/moderation/reviews/"

	status, body := f.do(t, http.MethodPost, base+r.ID.String()+"/reject", map[string]string{
		"reason": "boring", "message": "x",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "reason", body["field"])

	status, body = f.do(t, http.MethodPost, base+r.ID.String()+"/flag", map[string]string{"reason": "rude"})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "severity", body["field"])

	status, _ = f.do(t, http.MethodPost, base+uuid.NewString()+"/escalate", map[string]string{"reason": "ops"})
	require.Equal(t, fiber.StatusNotFound, status)

	status, _ = f.do(t, http.MethodPost, base+"not-a-uuid/escalate", map[string]string{"reason": "ops"})
	require.Equal(t, fiber.StatusBadRequest, status)

	f.store.saveErr = errStoreDown
	status, _ = f.do(t, http.MethodPost, base+r.ID.String()+"/escalate", map[string]string{"reason": "ops"})
	require.Equal(t, fiber.StatusInternalServerError, status)
	require.Zero(t, f.audit.appendCalls)
}

func TestActionEndpointWarnsWhenAuditFails(t *testing.T) {
	r := newReview(2, "meh", time.Hour)
	f := newHandlerFixture(t, r)
	f.audit.failNext = 5

	status, body := f.do(t, http.MethodPost, "/api/admin/moderation/reviews/"+r.ID.String()+"/flag", map[string]string{
		"severity": "low", "reason": "tone",
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, false, body["audit_recorded"])
	require.Equal(t, auditWarning, body["warning"])
	require.Equal(t, string(StatusFlagged), f.store.stored(r.ID).ModerationStatus)
}

func TestClarificationReachesAuthorInbox(t *testing.T) {
	r := newReview(3, "It was fine I guess", time.Hour)
	f := newHandlerFixture(t, r)

	status, body := f.do(t, http.MethodPost, "/api/admin/moderation/reviews/"+r.ID.String()+"/clarify", map[string]string{
		"message": "Which room did you book?",
	})
	require.Equal(t, fiber.StatusOK, status)
	require.Contains(t, body, "message")

	status, body = f.do(t, http.MethodGet, "/api/p/messages", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, float64(1), body["total"])
	msg := body["messages"].([]interface{})[0].(map[string]interface{})
	require.Equal(t, "Which room did you book?", msg["body"])
	require.Equal(t, testActor.String(), msg["sender_id"])

	status, body = f.do(t, http.MethodGet, "/api/p/reviews/mine?status=clarification_requested", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, body["reviews"], 1)
}

func TestMyReviewsOnlyListsCallerReviews(t *testing.T) {
	mine := newReview(4, "mine", time.Hour)
	theirs := newReview(4, "theirs", time.Hour)
	theirs.AuthorID = uuid.New()
	f := newHandlerFixture(t, mine, theirs)

	status, body := f.do(t, http.MethodGet, "/api/p/reviews/mine?author_id="+theirs.AuthorID.String(), nil)
	require.Equal(t, fiber.StatusOK, status)
	reviews := body["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	require.Equal(t, mine.ID.String(), reviews[0].(map[string]interface{})["id"])
}

func TestReviewDetailAndAuditEndpoints(t *testing.T) {
	r := newReview(1, "Rude bouncer", 30*time.Hour)
	f := newHandlerFixture(t, r)
	base := "/api/admin/moderation/reviews/" + r.ID.String()

	status, _ := f.do(t, http.MethodPost, base+"/escalate", map[string]string{"reason": "security team"})
	require.Equal(t, fiber.StatusOK, status)

	status, body := f.do(t, http.MethodGet, base, nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, "Rude bouncer", body["original_comment"])
	require.Equal(t, float64(1), body["days_since_submission"])
	review := body["review"].(map[string]interface{})
	require.Equal(t, "escalated", review["status"])
	require.True(t, strings.HasPrefix(review["comment"].(string), "[ESCALATED: security team]"))

	status, body = f.do(t, http.MethodGet, base+"/audit", nil)
	require.Equal(t, fiber.StatusOK, status)
	entries := body["entries"].([]interface{})
	require.Len(t, entries, 1)
	require.Equal(t, "escalate", entries[0].(map[string]interface{})["action"])

	status, body = f.do(t, http.MethodGet, "/api/admin/moderation/stats", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, float64(1), body["total"])
	require.Equal(t, float64(1), body["average_rating"])
}
