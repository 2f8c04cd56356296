package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "room", cfg.Queue.Name)
	assert.Equal(t, 7*24*time.Hour, cfg.Slack.MarkerRetention)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
database:
  driver: postgres
  dsn: host=db user=rooms
queue:
  max_retry: 7
slack:
  marker_retention: 24h
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=rooms", cfg.Database.DSN)
	assert.Equal(t, 7, cfg.Queue.MaxRetry)
	assert.Equal(t, "room", cfg.Queue.Name)
	assert.Equal(t, 24*time.Hour, cfg.Slack.MarkerRetention)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("REDIS_ADDR", "redis:6380")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "xoxb-test", cfg.Slack.BotToken)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
