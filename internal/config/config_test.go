package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.Interval())
	assert.Equal(t, PolicyCore, cfg.Monitor.ThresholdPolicy)
	assert.Equal(t, 50, cfg.Monitor.HistorySize)
	assert.True(t, cfg.Monitor.Autostart)
	assert.Equal(t, "openrouter", cfg.Recommendation.Provider)
	assert.Equal(t, "telegram", cfg.Notify.Channel)
	assert.Equal(t, 15*time.Second, cfg.Sensor.Timeout)
	assert.Equal(t, DefaultThresholds(), cfg.Thresholds)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
monitor:
  interval_minutes: 10
  threshold_policy: all
thresholds:
  nitrogen:
    min: 50
    critical: 30
notify:
  channel: email
  email:
    username: bot@example.com
    to: ["a@example.com"]
auth:
  api_keys: ["k1"]
  users:
    - username: agronomo
      password_hash: "$2a$12$abc"
      role: admin
`)
	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Monitor.Interval())
	assert.Equal(t, PolicyAll, cfg.Monitor.ThresholdPolicy)
	assert.Equal(t, 50.0, cfg.Thresholds.Nitrogen.Min)
	assert.Equal(t, 120.0, cfg.Thresholds.Nitrogen.Max, "unset keys keep their default")
	require.NotNil(t, cfg.Thresholds.Nitrogen.Critical)
	assert.Equal(t, 30.0, *cfg.Thresholds.Nitrogen.Critical)
	assert.Equal(t, "email", cfg.Notify.Channel)
	assert.Equal(t, []string{"a@example.com"}, cfg.Notify.Email.To)
	assert.Equal(t, []string{"k1"}, cfg.Auth.APIKeys)
	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "agronomo", cfg.Auth.Users[0].Username)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MONITOR_INTERVAL_MINUTES", "15")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("JWT_SECRET", "jwt-secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Monitor.Interval())
	assert.Equal(t, "token-from-env", cfg.Notify.Telegram.BotToken)
	assert.Equal(t, "12345", cfg.Notify.Telegram.ChatID)
	assert.Equal(t, "or-key", cfg.Recommendation.OpenRouterKey)
	assert.Equal(t, "jwt-secret", cfg.Auth.JWTSecret)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero interval", "monitor:\n  interval_minutes: 0\n"},
		{"unknown policy", "monitor:\n  threshold_policy: strict\n"},
		{"zero history", "monitor:\n  history_size: 0\n"},
		{"unknown channel", "notify:\n  channel: sms\n"},
		{"unknown provider", "recommendation:\n  provider: claude\n"},
		{"malformed yaml", "monitor: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
