// Package config provides configuration loading and validation for the
// fbas-analyzer CLI and bulk runner.
//
// Configuration file: optional, given by --config; without one the built-in
// Defaults() apply.
//
// Validation:
//   - Fields missing from the file keep their Defaults() values.
//   - Numeric ranges enforced (worker counts, progress interval).
//   - Invalid config on startup: the command refuses to run (fatal error).
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Version, GitCommit, BuildTime can be injected at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Config is the root configuration structure for fbas-analyzer.
// All fields have defaults; see Defaults() for values.
type Config struct {
	// SchemaVersion must be "1"; any other value fails validation.
	SchemaVersion string `yaml:"schema_version"`

	// Search configures the branch-and-bound enumerations.
	Search SearchConfig `yaml:"search"`

	// Cache configures the optional standard-form result cache.
	Cache CacheConfig `yaml:"cache"`

	// Bulk configures the directory-wide bulk runner.
	Bulk BulkConfig `yaml:"bulk"`

	// Observability configures metrics and logging.
	Observability ObservabilityConfig `yaml:"observability"`
}

// SearchConfig holds branch-and-bound search parameters.
type SearchConfig struct {
	// ProgressLogInterval is how many candidate sets are considered between
	// progress log lines. Default: 100000.
	ProgressLogInterval int `yaml:"progress_log_interval"`
}

// CacheConfig holds standard-form result cache parameters.
type CacheConfig struct {
	// Enabled controls whether the bbolt-backed result cache is consulted
	// and populated. Default: false (no cache file unless requested).
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the BoltDB cache file.
	// Default: fbas-analyzer-cache.db (DefaultCachePath).
	DBPath string `yaml:"db_path"`
}

// BulkConfig holds directory-wide bulk analysis parameters.
type BulkConfig struct {
	// Workers is the number of FBAS files analyzed concurrently.
	// Default: number of logical CPUs.
	Workers int `yaml:"workers"`
}

// ObservabilityConfig holds metrics and logging parameters.
type ObservabilityConfig struct {
	// MetricsAddr is the Prometheus metrics HTTP bind address.
	// Empty disables the metrics server entirely. Default: "" (disabled).
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls the minimum log level (debug, info, warn, error).
	// Default: info.
	LogLevel string `yaml:"log_level"`

	// LogFormat controls the log output format (json, console).
	// Default: console.
	LogFormat string `yaml:"log_format"`
}

// Defaults returns a Config populated with all default values.
func Defaults() Config {
	return Config{
		SchemaVersion: "1",
		Search: SearchConfig{
			ProgressLogInterval: 100000,
		},
		Cache: CacheConfig{
			Enabled: false,
			DBPath:  DefaultCachePath,
		},
		Bulk: BulkConfig{
			Workers: runtime.GOMAXPROCS(0),
		},
		Observability: ObservabilityConfig{
			MetricsAddr: "",
			LogLevel:    "info",
			LogFormat:   "console",
		},
	}
}

// DefaultCachePath is the default bbolt cache location.
const DefaultCachePath = "fbas-analyzer-cache.db"

// Load reads and validates a config file from the given path.
// Returns the merged config (defaults overridden by file values).
// Returns an error if the file cannot be read, parsed, or validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks all config fields for correctness.
// Returns a descriptive error listing all violations found.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.SchemaVersion != "1" {
		errs = append(errs, fmt.Sprintf("schema_version must be \"1\", got %q", cfg.SchemaVersion))
	}
	if cfg.Search.ProgressLogInterval < 1 {
		errs = append(errs, fmt.Sprintf("search.progress_log_interval must be >= 1, got %d", cfg.Search.ProgressLogInterval))
	}
	if cfg.Bulk.Workers < 1 || cfg.Bulk.Workers > 4096 {
		errs = append(errs, fmt.Sprintf("bulk.workers must be in [1, 4096], got %d", cfg.Bulk.Workers))
	}
	if cfg.Cache.Enabled && cfg.Cache.DBPath == "" {
		errs = append(errs, "cache.db_path must not be empty when cache.enabled is true")
	}
	switch cfg.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("observability.log_level must be one of debug|info|warn|error, got %q", cfg.Observability.LogLevel))
	}
	switch cfg.Observability.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("observability.log_format must be one of json|console, got %q", cfg.Observability.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s",
			joinStrings(errs, "\n  - "))
	}
	return nil
}

// joinStrings joins a slice of strings with a separator.
func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	result := ss[0]
	for _, s := range ss[1:] {
		result += sep + s
	}
	return result
}
