package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
)

const (
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultRateLimitRPS    = 25.0
	defaultRateLimitBurst  = 50
	defaultMaxCapacity     = 1000
	defaultMaxItems        = 100
	defaultMaxTraceCells   = 4_000_000
	defaultMaxStoredTraces = 64
)

var validLogLevels = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "error": {}, "dpanic": {}, "panic": {}, "fatal": {},
}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > config file > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	LogLevel             string
	RateLimitRPS         float64
	RateLimitBurst       int
	Limits               knapsack.Limits
	MaxStoredTraces      int
}

// fileConfig represents the YAML or TOML configuration file structure.
type fileConfig struct {
	Port                 string        `yaml:"port" toml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period" toml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout" toml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout" toml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging" toml:"enable_request_logging"`
	LogLevel             string        `yaml:"log_level" toml:"log_level"`
	RateLimit            fileRateLimit `yaml:"rate_limit" toml:"rate_limit"`
	Limits               fileLimits    `yaml:"limits" toml:"limits"`
	MaxStoredTraces      *int          `yaml:"max_stored_traces" toml:"max_stored_traces"`
}

// fileRateLimit represents the rate limit section.
type fileRateLimit struct {
	RPS   *float64 `yaml:"rps" toml:"rps"`
	Burst *int     `yaml:"burst" toml:"burst"`
}

// fileLimits represents the solver limits section.
type fileLimits struct {
	MaxCapacity   *int `yaml:"max_capacity" toml:"max_capacity"`
	MaxItems      *int `yaml:"max_items" toml:"max_items"`
	MaxTraceCells *int `yaml:"max_trace_cells" toml:"max_trace_cells"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
	MaxCapacity    *int
	MaxItems       *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > config file > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	applyEnvConfig(&cfg)

	if overrides != nil && overrides.ConfigFile != "" {
		fileCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
		if err := applyFileConfig(&cfg, fileCfg); err != nil {
			return Config{}, fmt.Errorf("apply config file: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		LogLevel:             defaultLogLevel,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		Limits: knapsack.Limits{
			MaxCapacity:   defaultMaxCapacity,
			MaxItems:      defaultMaxItems,
			MaxTraceCells: defaultMaxTraceCells,
		},
		MaxStoredTraces: defaultMaxStoredTraces,
	}
}

// loadFromFile loads configuration from a YAML or TOML file, chosen by extension.
func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fileCfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &fileCfg); err != nil {
			return nil, fmt.Errorf("parse TOML: %w", err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	return &fileCfg, nil
}

// applyFileConfig applies file configuration to the Config struct.
func applyFileConfig(cfg *Config, fileCfg *fileConfig) error {
	if fileCfg.Port != "" {
		cfg.Port = fileCfg.Port
	}

	durations := []struct {
		name  string
		raw   string
		field *time.Duration
	}{
		{"shutdown_grace_period", fileCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", fileCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", fileCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", fileCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.field = parsed
	}

	if fileCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *fileCfg.EnableRequestLogging
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(fileCfg.LogLevel)
	}

	if fileCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *fileCfg.RateLimit.RPS
	}
	if fileCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *fileCfg.RateLimit.Burst
	}

	if fileCfg.Limits.MaxCapacity != nil {
		cfg.Limits.MaxCapacity = *fileCfg.Limits.MaxCapacity
	}
	if fileCfg.Limits.MaxItems != nil {
		cfg.Limits.MaxItems = *fileCfg.Limits.MaxItems
	}
	if fileCfg.Limits.MaxTraceCells != nil {
		cfg.Limits.MaxTraceCells = *fileCfg.Limits.MaxTraceCells
	}

	if fileCfg.MaxStoredTraces != nil {
		cfg.MaxStoredTraces = *fileCfg.MaxStoredTraces
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	envInts := []struct {
		key   string
		field *int
	}{
		{"RATE_LIMIT_BURST", &cfg.RateLimitBurst},
		{"MAX_CAPACITY", &cfg.Limits.MaxCapacity},
		{"MAX_ITEMS", &cfg.Limits.MaxItems},
		{"MAX_TRACE_CELLS", &cfg.Limits.MaxTraceCells},
		{"MAX_STORED_TRACES", &cfg.MaxStoredTraces},
	}
	for _, env := range envInts {
		raw := strings.TrimSpace(os.Getenv(env.key))
		if raw == "" {
			continue
		}
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			*env.field = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(*overrides.LogLevel)
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	if overrides.MaxCapacity != nil && *overrides.MaxCapacity >= 0 {
		cfg.Limits.MaxCapacity = *overrides.MaxCapacity
	}

	if overrides.MaxItems != nil && *overrides.MaxItems >= 0 {
		cfg.Limits.MaxItems = *overrides.MaxItems
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.Limits.MaxCapacity < 0 || cfg.Limits.MaxItems < 0 || cfg.Limits.MaxTraceCells < 0 {
		return fmt.Errorf("solver limits must be >= 0")
	}
	if cfg.MaxStoredTraces <= 0 {
		return fmt.Errorf("max stored traces must be positive")
	}
	if _, ok := validLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return nil
}
