package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "eventify", cfg.AppName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "log", cfg.NotifyMode)
	assert.Equal(t, time.Hour, cfg.ReminderInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReminderLead)
	assert.Empty(t, cfg.AdminSecret)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	env := `HTTP_PORT=9090
DB_NAME=eventify_test
NOTIFY_MODE=amqp
TOKEN_EXPIRY=2h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "eventify_test", cfg.DBName)
	assert.Equal(t, "amqp", cfg.NotifyMode)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	// Untouched keys keep their defaults.
	assert.Equal(t, "postgres", cfg.DBUser)
}
