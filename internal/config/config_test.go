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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 4, cfg.Ingestion.Workers)
	assert.Equal(t, 120*time.Second, cfg.Ingestion.HTTPTimeout)
	assert.Equal(t, 2019, cfg.Ingestion.MinYear)
	assert.Equal(t, "handbook", cfg.Ingestion.SourceTag)
	assert.True(t, cfg.Source.Discover)
	assert.NotEmpty(t, cfg.Source.ListingPages)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "data"), cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(wd, "data", "indicators.db"), cfg.Paths.DatabasePath)
	assert.True(t, filepath.IsAbs(cfg.Paths.SeedFile))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  format: json
ingestion:
  workers: 2
  min_year: 2021
source:
  discover: false
  archives:
    2024: https://example.org/handbook_2023_24.zip
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2, cfg.Ingestion.Workers)
	assert.Equal(t, 2021, cfg.Ingestion.MinYear)
	assert.False(t, cfg.Source.Discover)
	assert.Equal(t, "https://example.org/handbook_2023_24.zip", cfg.Source.Archives[2024])

	// Untouched keys keep their defaults.
	assert.Equal(t, "handbook", cfg.Ingestion.SourceTag)
	assert.Equal(t, int64(50000), cfg.Ingestion.MinArchiveBytes)
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ingestion:\n  workers: 7\n"), 0o644))
	t.Setenv("INSURSTAT_CONFIG_FILE", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Ingestion.Workers)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("INSURSTAT_INGESTION_WORKERS", "8")
	t.Setenv("INSURSTAT_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Ingestion.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "logging:\n  level: verbose\n"},
		{"too many workers", "ingestion:\n  workers: 99\n"},
		{"sub-second timeout", "ingestion:\n  http_timeout: 500\n"},
		{"zero rate", "ingestion:\n  requests_per_sec: 0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation")
		})
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Paths: PathsConfig{
		DataDir: filepath.Join(dir, "data"),
		RawDir:  filepath.Join(dir, "data", "raw"),
		LogsDir: filepath.Join(dir, "data", "logs"),
	}}
	require.NoError(t, cfg.EnsureDirectories())
	for _, p := range []string{cfg.Paths.DataDir, cfg.Paths.LogsDir, cfg.Paths.RawDir} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
