package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/eugenenazirov/knapsack-trace/internal/export"
	"github.com/eugenenazirov/knapsack-trace/internal/knapsack"
	"github.com/eugenenazirov/knapsack-trace/internal/metrics"
	"github.com/eugenenazirov/knapsack-trace/internal/problem"
	"github.com/eugenenazirov/knapsack-trace/internal/storage"
)

const (
	maxBodyBytes     = 1 << 20
	defaultPageLimit = 100
	maxPageLimit     = 1000
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires the solver, trace storage and problem validation into HTTP handlers.
type Handler struct {
	solver    knapsack.Solver
	storage   storage.Storage
	validator *problem.Validator
	metrics   *metrics.Metrics
	logger    *zap.Logger

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMetrics records solve outcomes and store size.
func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithLogger sets the logger used for solve events.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(solver knapsack.Solver, store storage.Storage, validator *problem.Validator, opts ...HandlerOption) *Handler {
	h := &Handler{
		solver:    solver,
		storage:   store,
		validator: validator,
		logger:    zap.NewNop(),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLimits(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, h.solver.Limits())
}

func (h *Handler) handleSolve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Invalid request", "request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to read request body")
		return
	}

	p, err := h.validator.DecodeJSON(body)
	if err != nil {
		h.metrics.ObserveSolve(metrics.OutcomeRejected, 0, 0)
		writeError(w, http.StatusBadRequest, "Invalid problem", err.Error())
		return
	}

	start := time.Now()
	trace, solveErr := h.solver.Solve(r.Context(), p.Capacity, p.Items)
	elapsed := time.Since(start)

	if solveErr != nil {
		h.writeSolveError(w, r, solveErr)
		return
	}
	h.metrics.ObserveSolve(metrics.OutcomeSolved, elapsed, len(trace.Steps))

	rec, err := h.storage.Save(trace)
	if err != nil {
		writeInternalError(w, err)
		return
	}
	h.metrics.SetStoredTraces(h.storage.Len())

	h.logger.Info("trace solved",
		zap.String("trace_id", rec.ID),
		zap.String("name", p.Name),
		zap.Int("items", len(p.Items)),
		zap.Int("capacity", p.Capacity),
		zap.Int("steps", len(trace.Steps)),
		zap.Int("max_value", trace.Solution.MaxValue),
		zap.Duration("elapsed", elapsed),
		zap.String("request_id", requestIDFromContext(r.Context())),
	)

	resp := newTraceResponse(rec)
	resp.CalculationTimeMs = elapsed.Milliseconds()
	w.Header().Set("Location", "/api/traces/"+rec.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) writeSolveError(w http.ResponseWriter, r *http.Request, err error) {
	limits := h.solver.Limits()

	switch {
	case errors.Is(err, knapsack.ErrInvalidCapacity),
		errors.Is(err, knapsack.ErrNoItems),
		errors.Is(err, knapsack.ErrInvalidItem):
		h.metrics.ObserveSolve(metrics.OutcomeRejected, 0, 0)
		writeError(w, http.StatusBadRequest, "Invalid problem", err.Error())
	case errors.Is(err, knapsack.ErrCapacityTooLarge),
		errors.Is(err, knapsack.ErrTooManyItems),
		errors.Is(err, knapsack.ErrTraceTooLarge):
		h.metrics.ObserveSolve(metrics.OutcomeRejected, 0, 0)
		suggestion := fmt.Sprintf("Use at most %d items and a capacity of at most %d; every step stores a full table snapshot (limit %d cells)",
			limits.MaxItems, limits.MaxCapacity, limits.MaxTraceCells)
		writeError(w, http.StatusUnprocessableEntity, "Problem too large", err.Error(), suggestion)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.metrics.ObserveSolve(metrics.OutcomeFailed, 0, 0)
		h.logger.Warn("solve interrupted", zap.Error(err), zap.String("request_id", requestIDFromContext(r.Context())))
		writeError(w, http.StatusServiceUnavailable, "Solve interrupted", err.Error())
	default:
		h.metrics.ObserveSolve(metrics.OutcomeFailed, 0, 0)
		writeInternalError(w, err)
	}
}

func (h *Handler) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newTraceResponse(rec))
}

func (h *Handler) handleListSteps(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit <= 0 || limit > maxPageLimit {
		writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
		return
	}

	steps := rec.Trace.Steps
	total := len(steps)
	from := min(offset, total)
	to := min(from+limit, total)

	resp := stepsResponse{
		ID:     rec.ID,
		Offset: from,
		Limit:  limit,
		Total:  total,
		Steps:  steps[from:to],
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetStep(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	seq, err := strconv.Atoi(r.PathValue("seq"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "step must be an integer")
		return
	}

	step, err := rec.Trace.Step(seq)
	if err != nil {
		writeError(w, http.StatusNotFound, "Step not found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, step)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, rec.Trace); err != nil {
		writeInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"knapsack-%s.xlsx\"", rec.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleDeleteTrace(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.storage.Delete(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trace not found", fmt.Sprintf("no trace with id %q", id))
			return
		}
		writeInternalError(w, err)
		return
	}
	h.metrics.SetStoredTraces(h.storage.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (storage.Record, bool) {
	id := r.PathValue("id")
	rec, err := h.storage.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Trace not found", fmt.Sprintf("no trace with id %q", id))
			return storage.Record{}, false
		}
		writeInternalError(w, err)
		return storage.Record{}, false
	}
	return rec, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type traceResponse struct {
	ID       string          `json:"id"`
	Capacity int             `json:"capacity"`
	Items    []knapsack.Item `json:"items"`
	knapsack.Summary
	Table             knapsack.Table `json:"table"`
	CreatedAt         time.Time      `json:"createdAt"`
	CalculationTimeMs int64          `json:"calculationTimeMs"`
}

func newTraceResponse(rec storage.Record) traceResponse {
	return traceResponse{
		ID:        rec.ID,
		Capacity:  rec.Trace.Capacity,
		Items:     rec.Trace.Items,
		Summary:   rec.Trace.Summary(),
		Table:     rec.Trace.Table,
		CreatedAt: rec.CreatedAt,
	}
}

type stepsResponse struct {
	ID     string          `json:"id"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
	Total  int             `json:"total"`
	Steps  []knapsack.Step `json:"steps"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
