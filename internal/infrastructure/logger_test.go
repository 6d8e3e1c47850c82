package infrastructure

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurstat/internal/config"
)

func TestNewLoggerFileOutputJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ingest.log")
	logger, closeLog, err := NewLogger(config.LoggingConfig{
		Level:    "debug",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	require.NoError(t, err)

	logger.Info("run started", slog.String("run_id", "abc"))
	logger.Debug("detail")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(firstLine(data), &entry))
	assert.Equal(t, "run started", entry["msg"])
	assert.Equal(t, "abc", entry["run_id"])
}

func firstLine(b []byte) []byte {
	for i, c := range b {
		if c == '\n' {
			return b[:i]
		}
	}
	return b
}

func TestNewLoggerConsoleDefault(t *testing.T) {
	logger, closeLog, err := NewLogger(config.LoggingConfig{Level: "info", Format: "text", Output: "console"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NoError(t, closeLog())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("anything-else"))
}
