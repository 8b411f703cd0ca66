package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 4, cfg.Sync.Workers)
	assert.Equal(t, 10*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, "go-reader/1.0", cfg.Sync.UserAgent)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "8080"
database:
  path: /tmp/feeds.db
sync:
  workers: 8
  fetch_timeout: 5s
  host_interval: 250ms
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("DB_PATH", "/var/lib/reader.db")
	t.Setenv("SYNC_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.GetServerAddress())
	assert.Equal(t, "/var/lib/reader.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Sync.Workers)
	assert.Equal(t, 5*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.HostInterval)
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	t.Setenv("SYNC_WORKERS", "zero")
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("SYNC_WORKERS", "0")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestGetServerAddress(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = "127.0.0.1:9000"
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddress())
}
