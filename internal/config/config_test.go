package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODERATION_AGING_THRESHOLD", "")
	t.Setenv("MODERATION_AUDIT_RETRIES", "")
	t.Setenv("MODERATOR_ROLES", "")

	cfg := Load()
	require.Equal(t, 48*time.Hour, cfg.AgingThreshold)
	require.Equal(t, 3, cfg.AuditRetries)
	require.Equal(t, map[string]bool{"admin": true, "moderator": true}, cfg.ModeratorRoleSet())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODERATION_AGING_THRESHOLD", "72h")
	t.Setenv("MODERATION_AUDIT_RETRIES", "5")
	t.Setenv("MODERATOR_ROLES", " admin , trust_safety ,")

	cfg := Load()
	require.Equal(t, 72*time.Hour, cfg.AgingThreshold)
	require.Equal(t, 5, cfg.AuditRetries)
	require.Equal(t, map[string]bool{"admin": true, "trust_safety": true}, cfg.ModeratorRoleSet())
}

func TestParseFallbacks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Duration
	}{
		{name: "valid", in: "90m", want: 90 * time.Minute},
		{name: "garbage", in: "soon", want: time.Hour},
		{name: "negative", in: "-5m", want: time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseDuration(tt.in, time.Hour))
		})
	}

	require.Equal(t, 7, parseInt("x", 7))
	require.Equal(t, 0, parseInt("0", 7))
}
