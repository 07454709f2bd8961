package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScriptPath string // path or URL of the .eq script, or a directory of them
	ConfigPath string // optional TOML config file

	Language       string // host language: "hcl" or "starlark"
	LogFormat      string
	LogLevel       string
	MaxConcurrent  int // task manager concurrency; 1 upholds the engine contract
	MetricsPort    int // Prometheus listener port, 0 disables it
	ParseCacheSize int // entries in the parse-result cache
}

// Defaults applied by NewConfig for fields left at their zero value.
const (
	DefaultLanguage       = "starlark"
	DefaultLogFormat      = "json"
	DefaultLogLevel       = "info"
	DefaultMaxConcurrent  = 1
	DefaultParseCacheSize = 128
)

// NewConfig validates cfg, fills in defaults, and returns the result.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScriptPath == "" {
		return nil, errors.New("ScriptPath is a required configuration field and cannot be empty")
	}

	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = DefaultLogFormat
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.ParseCacheSize == 0 {
		cfg.ParseCacheSize = DefaultParseCacheSize
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.MaxConcurrent < 1 {
		return nil, fmt.Errorf("max concurrency must be at least 1, got %d", cfg.MaxConcurrent)
	}
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return nil, fmt.Errorf("metrics port %d is outside 0..65535", cfg.MetricsPort)
	}
	if cfg.ParseCacheSize < 1 {
		return nil, fmt.Errorf("parse cache size must be at least 1, got %d", cfg.ParseCacheSize)
	}

	return &cfg, nil
}

// fileConfig mirrors Config for the optional TOML file. Every key is
// optional; values present in the file overlay the built-in defaults and are
// in turn overridden by explicit CLI flags.
type fileConfig struct {
	Script         string `toml:"script"`
	Language       string `toml:"language"`
	LogFormat      string `toml:"log_format"`
	LogLevel       string `toml:"log_level"`
	MaxConcurrent  int    `toml:"max_concurrent"`
	MetricsPort    int    `toml:"metrics_port"`
	ParseCacheSize int    `toml:"parse_cache"`
}

// LoadConfigFile reads the TOML file at path and overlays its values onto
// cfg. Keys absent from the file leave cfg untouched.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Script != "" {
		cfg.ScriptPath = fc.Script
	}
	if fc.Language != "" {
		cfg.Language = fc.Language
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.MaxConcurrent != 0 {
		cfg.MaxConcurrent = fc.MaxConcurrent
	}
	if fc.MetricsPort != 0 {
		cfg.MetricsPort = fc.MetricsPort
	}
	if fc.ParseCacheSize != 0 {
		cfg.ParseCacheSize = fc.ParseCacheSize
	}
	return nil
}
