package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemLogFromRecord(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rec := slog.NewRecord(at, slog.LevelError, "moderation audit write failed", 0)
	rec.AddAttrs(
		slog.String("action", "flag"),
		slog.String("review_id", "7d1b5f1e-8a47-4a58-9d0c-3f7d0b1e2a11"),
		slog.String("actor_id", "c0a80101-0000-4000-8000-000000000001"),
		slog.String("error", "connection reset"),
		slog.Int("attempts", 3),
		slog.Float64("latency_ms", 12.6),
	)

	entry := systemLogFromRecord(rec, []slog.Attr{slog.String("request_id", "req-1")})

	require.Equal(t, at, entry.Timestamp)
	require.Equal(t, "ERROR", entry.Level)
	require.Equal(t, "moderation audit write failed", entry.Message)
	require.Equal(t, "flag", entry.Action)
	require.Equal(t, "connection reset", entry.Error)
	require.Equal(t, "req-1", entry.TraceID)
	require.Equal(t, 13, entry.LatencyMs)
	require.NotNil(t, entry.ReviewID)
	require.Equal(t, "7d1b5f1e-8a47-4a58-9d0c-3f7d0b1e2a11", *entry.ReviewID)
	require.NotNil(t, entry.ActorID)
	require.Equal(t, "c0a80101-0000-4000-8000-000000000001", *entry.ActorID)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	require.Equal(t, map[string]interface{}{"attempts": float64(3)}, extra)
}

func TestSystemLogFromRecordWithoutExtras(t *testing.T) {
	rec := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)
	rec.AddAttrs(slog.Duration("latency_ms", 40*time.Millisecond))

	entry := systemLogFromRecord(rec, nil)

	require.Nil(t, entry.ReviewID)
	require.Nil(t, entry.ActorID)
	require.Empty(t, entry.Extra)
	require.Equal(t, 40, entry.LatencyMs)
}

func TestPGHandlerOnlyErrors(t *testing.T) {
	h := &PGHandler{}
	require.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	require.True(t, h.Enabled(context.Background(), slog.LevelError))
}
