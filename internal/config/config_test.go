package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "LOG_LEVEL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_CAPACITY", "MAX_ITEMS", "MAX_TRACE_CELLS", "MAX_STORED_TRACES"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if cfg.Limits.MaxCapacity != defaultMaxCapacity || cfg.Limits.MaxItems != defaultMaxItems {
		t.Fatalf("unexpected default limits: %+v", cfg.Limits)
	}
	if cfg.MaxStoredTraces != defaultMaxStoredTraces {
		t.Fatalf("unexpected max stored traces: %d", cfg.MaxStoredTraces)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_CAPACITY", "250")
	t.Setenv("MAX_ITEMS", "not-a-number")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	if cfg.Limits.MaxCapacity != 250 {
		t.Fatalf("expected max capacity 250, got %d", cfg.Limits.MaxCapacity)
	}
	if cfg.Limits.MaxItems != defaultMaxItems {
		t.Fatalf("expected invalid env value to be ignored, got %d", cfg.Limits.MaxItems)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug log level, got %s", cfg.LogLevel)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	path := writeFile(t, "config.yaml", `
port: "7070"
write_timeout: 3s
enable_request_logging: false
rate_limit:
  rps: 0
limits:
  max_capacity: 40
  max_trace_cells: 1000
max_stored_traces: 5
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7070" {
		t.Fatalf("expected file to override env port, got %s", cfg.Port)
	}
	if cfg.WriteTimeout != 3*time.Second {
		t.Fatalf("unexpected write timeout: %s", cfg.WriteTimeout)
	}
	if cfg.EnableRequestLogging {
		t.Fatalf("expected request logging to be disabled")
	}
	if cfg.RateLimitRPS != 0 || cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Fatalf("unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.Limits.MaxCapacity != 40 || cfg.Limits.MaxItems != defaultMaxItems || cfg.Limits.MaxTraceCells != 1000 {
		t.Fatalf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.MaxStoredTraces != 5 {
		t.Fatalf("unexpected max stored traces: %d", cfg.MaxStoredTraces)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.toml", `
port = "6060"
log_level = "warn"

[rate_limit]
burst = 3

[limits]
max_items = 12
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "6060" || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected port/log level: %s/%s", cfg.Port, cfg.LogLevel)
	}
	if cfg.RateLimitBurst != 3 || cfg.Limits.MaxItems != 12 {
		t.Fatalf("unexpected burst/max items: %d/%d", cfg.RateLimitBurst, cfg.Limits.MaxItems)
	}
}

func TestLoadCLIOverridesWin(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.yaml", "port: \"7070\"\nlimits:\n  max_items: 4\n")
	port := "5050"
	maxItems := 9
	rps := -1.0

	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port, MaxItems: &maxItems, RateLimitRPS: &rps})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "5050" {
		t.Fatalf("expected CLI port, got %s", cfg.Port)
	}
	if cfg.Limits.MaxItems != 9 {
		t.Fatalf("expected CLI max items, got %d", cfg.Limits.MaxItems)
	}
	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Fatalf("expected negative CLI rps to be ignored, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "bad duration", file: "c.yaml", content: "idle_timeout: soon\n"},
		{name: "bad yaml", file: "c.yaml", content: "port: [\n"},
		{name: "bad toml", file: "c.toml", content: "port = \n"},
		{name: "unknown extension", file: "c.ini", content: "port=1\n"},
		{name: "bad log level", file: "c.yaml", content: "log_level: loud\n"},
		{name: "zero stored traces", file: "c.yaml", content: "max_stored_traces: 0\n"},
		{name: "negative limit", file: "c.yaml", content: "limits:\n  max_capacity: -1\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.content)
			if _, err := Load(&CLIOverrides{ConfigFile: path}); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
