package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("TRUST_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TRUST_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 7*24*time.Hour, cfg.TempBanDuration)
	require.Equal(t, 5*time.Minute, cfg.TrailCacheTTL)
	require.Equal(t, 10000, cfg.TrailExportLimit)
	require.Equal(t, float64(5), cfg.Engagement.Posts)
}

func TestLoadOverridesDurations(t *testing.T) {
	t.Setenv("TRUST_JWT_SECRET", "secret")
	t.Setenv("TRUST_ESCALATION_TEMP_BAN_DURATION", "72h")
	t.Setenv("TRUST_APP_PORT", ":9000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 72*time.Hour, cfg.TempBanDuration)
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("TRUST_JWT_SECRET", "secret")
	t.Setenv("TRUST_TRAIL_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}
