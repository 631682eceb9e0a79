package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("./data", "bizdesk.db"), cfg.BoltPath)
	assert.Equal(t, filepath.Join("./data", "bizdesk.sqlite"), cfg.SQLitePath)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, []string{"go.mod", "README.md", ".env.example"}, cfg.ExportFiles)
	assert.Equal(t, "bizdesk:", cfg.RedisPrefix)
	assert.Empty(t, cfg.UsersFile)
}

func TestFromMap_Overrides(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"BIZDESK_BACKEND":       "sqlite",
		"BIZDESK_DATA_DIR":      "/var/lib/bizdesk",
		"BIZDESK_SQLITE_PATH":   "/tmp/x.sqlite",
		"BIZDESK_SYNC_DIR":      "/mnt/share",
		"BIZDESK_SYNC_INTERVAL": "90s",
		"BIZDESK_EXPORT_FILES":  "go.mod,cmd/bizdesk/main.go",
		"BIZDESK_LOG_LEVEL":     "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "/tmp/x.sqlite", cfg.SQLitePath)
	assert.Equal(t, filepath.Join("/var/lib/bizdesk", "bizdesk.db"), cfg.BoltPath)
	assert.Equal(t, "/mnt/share", cfg.SyncDir)
	assert.Equal(t, 90*time.Second, cfg.SyncInterval)
	assert.Equal(t, []string{"go.mod", "cmd/bizdesk/main.go"}, cfg.ExportFiles)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFromMap_Invalid(t *testing.T) {
	_, err := FromMap(map[string]string{"BIZDESK_BACKEND": "postgres"})
	assert.ErrorContains(t, err, "unknown backend")

	_, err = FromMap(map[string]string{"BIZDESK_SYNC_INTERVAL": "0s"})
	assert.ErrorContains(t, err, "sync interval")

	_, err = FromMap(map[string]string{"BIZDESK_SYNC_INTERVAL": "soon"})
	assert.Error(t, err)
}
