package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})
	logger.Info("failed", "error", "boom")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["err"])
	assert.NotContains(t, line, "error")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: slog.LevelWarn, Output: &buf})
	logger.Info("hidden")
	assert.Empty(t, buf.String())
	logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
