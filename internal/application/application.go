package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-trace/internal/api"
	"github.com/eugenenazirov/knapsack-trace/internal/config"
	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
	"github.com/eugenenazirov/knapsack-trace/internal/metrics"
	"github.com/eugenenazirov/knapsack-trace/internal/problem"
	"github.com/eugenenazirov/knapsack-trace/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage storage.Storage
	solver  knapsack.Solver
	metrics *metrics.Metrics
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	validator, err := problem.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to compile problem schema: %w", err)
	}

	store := storage.NewMemoryStorage(storage.WithMaxTraces(cfg.MaxStoredTraces))
	solver := knapsack.New(knapsack.WithLimits(cfg.Limits))
	m := metrics.New()

	handler := api.NewHandler(solver, store, validator,
		api.WithMetrics(m),
		api.WithLogger(logger),
	)
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	logger.Info("solver configured",
		zap.Int("max_capacity", cfg.Limits.MaxCapacity),
		zap.Int("max_items", cfg.Limits.MaxItems),
		zap.Int("max_trace_cells", cfg.Limits.MaxTraceCells),
		zap.Int("max_stored_traces", cfg.MaxStoredTraces),
	)

	return &App{
		storage: store,
		solver:  solver,
		metrics: m,
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(cfg, BuildRootHandler(apiRouter, m.Handler())),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and the Prometheus scrape endpoint at /metrics.
func BuildRootHandler(apiHandler, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	return mux
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
