// =============================================================================
// FZ10 Ingest - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file. The
// configuration covers the glue around the parsing engine: where downloads
// are cached, where the SQLite database lives, where exports go, and how the
// fetcher talks to the KBA portal. The sheet layout itself (sheet name,
// header row offsets) is a structural constant of the source format and is
// deliberately not configurable here.
//
// A missing configuration file is not an error: the defaults describe a
// self-contained working directory layout, so the tool runs without any
// setup.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbadata/fz10/internal/fetch"
	"github.com/kbadata/fz10/pkg/utils"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// CacheDir is the directory where downloaded workbooks are cached.
	// Default: "./cache"
	CacheDir string `yaml:"cache_dir"`

	// DatabasePath is the SQLite database file for normalized records.
	// Default: "./fz10.db"
	DatabasePath string `yaml:"database_path"`

	// ExportDir is the directory where CSV exports are written.
	// Default: "./export"
	ExportDir string `yaml:"export_dir"`

	// =========================================================================
	// FETCH SETTINGS
	// =========================================================================

	// SourceURLTemplate overrides the KBA download URL template. The two
	// format verbs are the four-digit year and the zero-padded month.
	// Default: the published KBA FZ10 URL.
	SourceURLTemplate string `yaml:"source_url_template"`

	// HTTPTimeoutSeconds bounds one download attempt.
	// Default: 60
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// CONFIGURATION LOADING
// =============================================================================

// Load reads the configuration from a YAML file, applies defaults and
// validates the result. If the file does not exist, the defaults are
// returned as-is.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file: run on defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.CacheDir == "" {
		cfg.CacheDir = "./cache"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "./fz10.db"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "./export"
	}
	if cfg.SourceURLTemplate == "" {
		cfg.SourceURLTemplate = fetch.DefaultURLTemplate
	}
	if cfg.HTTPTimeoutSeconds == 0 {
		cfg.HTTPTimeoutSeconds = 60
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// validate checks the configuration and creates the working directories.
func validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	if cfg.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must not be negative")
	}

	for _, dir := range []string{cfg.CacheDir, cfg.ExportDir} {
		if err := utils.EnsureDir(dir); err != nil {
			return err
		}
	}
	return nil
}
