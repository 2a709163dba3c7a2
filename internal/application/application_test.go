package application

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/knapsack-trace/internal/config"
	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := app.solver.Limits(); got != cfg.Limits {
		t.Fatalf("expected solver limits %+v, got %+v", cfg.Limits, got)
	}
	if app.storage.Len() != 0 {
		t.Fatalf("expected empty trace storage")
	}
	if app.server == nil || app.router == nil || app.handler == nil || app.metrics == nil {
		t.Fatalf("expected server, router, handler, and metrics to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
	if app.server.Addr != ":8085" {
		t.Fatalf("expected address :8085, got %s", app.server.Addr)
	}
}

func TestAppServesSolveAndMetrics(t *testing.T) {
	app, err := New(baseTestConfig(":0"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	handler := app.Server().Handler

	body := `{"capacity":5,"items":[{"weight":2,"value":3},{"weight":3,"value":4}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/solve", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "knapsack_stored_traces 1") {
		t.Fatalf("expected stored trace gauge in scrape output")
	}
}

func TestNewRespectsSolverLimits(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Limits.MaxItems = 1

	app, err := New(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	body := `{"capacity":5,"items":[{"weight":2,"value":3},{"weight":3,"value":4}]}`
	rec := httptest.NewRecorder()
	app.Server().Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/solve", strings.NewReader(body)))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestBuildRootHandlerWithoutMetrics(t *testing.T) {
	handler := BuildRootHandler(http.NotFoundHandler(), nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		LogLevel:             "info",
		RateLimitRPS:         0,
		RateLimitBurst:       0,
		Limits: knapsack.Limits{
			MaxCapacity:   100,
			MaxItems:      10,
			MaxTraceCells: 100_000,
		},
		MaxStoredTraces: 8,
	}
}
