// Package config loads runtime configuration from environment variables and
// an optional YAML file. The file overlays env, so explicit file settings win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Ingestion IngestionConfig `yaml:"ingestion" envconfig:"INGESTION"`
	Source    SourceConfig    `yaml:"source" envconfig:"SOURCE"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"data/logs/ingest.log"`
}

// PathsConfig contains file system paths. Relative paths are resolved against
// the working directory at load time.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" default:"data/raw" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"data/logs" validate:"required"`
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH" default:"data/indicators.db" validate:"required"`
	SeedFile     string `yaml:"seed_file" envconfig:"SEED_FILE" default:"config/insurers.yaml" validate:"required"`
	AliasFile    string `yaml:"alias_file" envconfig:"ALIAS_FILE" default:"config/insurer_name_map.yaml"`
	MetricsFile  string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// IngestionConfig tunes the ingestion pass itself.
type IngestionConfig struct {
	Workers         int           `yaml:"workers" envconfig:"WORKERS" default:"4" validate:"min=1,max=16"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" envconfig:"HTTP_TIMEOUT" default:"120s" validate:"min=1000000000"`
	RequestsPerSec  float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" default:"2" validate:"gt=0"`
	MinArchiveBytes int64         `yaml:"min_archive_bytes" envconfig:"MIN_ARCHIVE_BYTES" default:"50000" validate:"min=1"`
	MinMemberBytes  int64         `yaml:"min_member_bytes" envconfig:"MIN_MEMBER_BYTES" default:"2000" validate:"min=0"`
	MinReportBytes  int64         `yaml:"min_report_bytes" envconfig:"MIN_REPORT_BYTES" default:"500000" validate:"min=0"`
	MinYear         int           `yaml:"min_year" envconfig:"MIN_YEAR" default:"2019" validate:"min=2000"`
	SourceTag       string        `yaml:"source_tag" envconfig:"SOURCE_TAG" default:"handbook" validate:"required"`
}

// SourceConfig names where the yearly archives come from. Discovery runs
// against ListingPages; Archives is the operator-pinned fallback used when a
// year is not discovered (or discovery is disabled entirely).
type SourceConfig struct {
	ListingPages []string       `yaml:"listing_pages" envconfig:"LISTING_PAGES"`
	Archives     map[int]string `yaml:"archives"`
	Discover     bool           `yaml:"discover" envconfig:"DISCOVER" default:"true"`
}

// Load builds the configuration from environment variables and, when present,
// the YAML file at configPath (pass "" to rely on INSURSTAT_CONFIG_FILE or
// skip the file entirely).
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("INSURSTAT", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configPath == "" {
		configPath = os.Getenv("INSURSTAT_CONFIG_FILE")
	}
	if configPath != "" {
		if err := applyFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Source.ListingPages) == 0 {
		c.Source.ListingPages = []string{
			"https://irdai.gov.in/handbooks",
			"https://irdai.gov.in/handbook-of-indian-insurance",
		}
	}
}

func (c *Config) resolvePaths() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}
	for _, p := range []*string{
		&c.Paths.DataDir, &c.Paths.RawDir, &c.Paths.LogsDir,
		&c.Paths.DatabasePath, &c.Paths.SeedFile,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(wd, *p)
		}
	}
	for _, p := range []*string{&c.Paths.AliasFile, &c.Paths.MetricsFile, &c.Logging.FilePath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(wd, *p)
		}
	}
	return nil
}

// EnsureDirectories creates the data directories the run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.RawDir, c.Paths.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
