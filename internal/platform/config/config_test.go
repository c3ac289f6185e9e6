package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-console/internal/platform/logger"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "VET_API_BASE_URL", "CONSOLE_HTTP_TIMEOUT", "CONSOLE_RATE_LIMIT",
		"CONSOLE_RATE_BURST", "CONSOLE_NOTIFICATION_LIMIT", "LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8090", cfg.Addr())
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Zero(t, cfg.HTTPTimeout)
	assert.Equal(t, float64(DefaultRateLimit), cfg.RateLimit)
	assert.Equal(t, DefaultRateBurst, cfg.RateBurst)
	assert.Equal(t, DefaultNotificationLimit, cfg.NotificationLimit)
	assert.Equal(t, logger.Info, cfg.Log.Level)
	assert.Equal(t, logger.FormatText, cfg.Log.Format)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("VET_API_BASE_URL", "http://vet.internal:8080/")
	t.Setenv("CONSOLE_HTTP_TIMEOUT", "15s")
	t.Setenv("CONSOLE_RATE_LIMIT", "2.5")
	t.Setenv("CONSOLE_RATE_BURST", "4")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "http://vet.internal:8080", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, 4, cfg.RateBurst)
	assert.Equal(t, logger.Debug, cfg.Log.Level)
	assert.Equal(t, logger.FormatJSON, cfg.Log.Format)
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]string{
		"CONSOLE_HTTP_TIMEOUT":       "soon",
		"CONSOLE_RATE_LIMIT":         "0",
		"CONSOLE_RATE_BURST":         "-1",
		"CONSOLE_NOTIFICATION_LIMIT": "many",
	}
	for key, val := range cases {
		clearEnv(t)
		t.Setenv(key, val)
		_, err := FromEnv()
		assert.Error(t, err, key)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("VET_API_BASE_URL")
	path := filepath.Join(t.TempDir(), "console.env")
	require.NoError(t, os.WriteFile(path, []byte("VET_API_BASE_URL=http://from-file:8080\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8080", cfg.APIBaseURL)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
