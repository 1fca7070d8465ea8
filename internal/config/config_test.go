package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
auth:
  secret: "test-secret"
client:
  poll_interval: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, 2*time.Second, cfg.Client.PollInterval)

	// Defaults fill everything not set in the file.
	assert.Equal(t, "data/requisitions.db", cfg.Database.Path)
	assert.Equal(t, "http://localhost:5000", cfg.Client.BaseURL)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.secret")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Client.PollInterval)
}
