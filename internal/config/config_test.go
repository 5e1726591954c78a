package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "matchday.db", cfg.DatabasePath)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.AdminEmails)
	assert.False(t, cfg.Discord.Enabled())
	assert.False(t, cfg.Google.Enabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"HTTP_ADDR":            "127.0.0.1:9000",
		"DATABASE_PATH":        "/tmp/cup.db",
		"LOG_LEVEL":            "debug",
		"SESSION_LIFETIME":     "90m",
		"ADMIN_USERNAME":       "admin",
		"ADMIN_PASSWORD":       "secret",
		"ADMIN_EMAILS":         "a@example.com, b@example.com,",
		"CORS_ALLOWED_ORIGINS": "http://localhost:3000",
		"GOOGLE_KEY":           "key",
		"GOOGLE_SECRET":        "shh",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/cup.db", cfg.DatabasePath)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 90*time.Minute, cfg.SessionLifetime)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AdminEmails)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Google.Enabled())
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "session lifetime", env: map[string]string{"SESSION_LIFETIME": "forever"}},
		{name: "negative lifetime", env: map[string]string{"SESSION_LIFETIME": "-1h"}},
		{name: "admin without password", env: map[string]string{"ADMIN_USERNAME": "admin"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tc.env))
			assert.Error(t, err)
		})
	}
}
