package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := build(Config{Level: "warn", Encoding: "json"}, zapcore.AddSync(&buf))

	log.Info("hidden")
	log.Warn("shown", zap.String("collection", "products"))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "products", entry["collection"])
	assert.Contains(t, entry, "timestamp")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := build(Config{Level: "loud", Encoding: "console"}, zapcore.AddSync(&buf))

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "shown")
}

func TestNew(t *testing.T) {
	assert.NotNil(t, New(Config{}))
}
