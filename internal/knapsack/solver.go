package knapsack

import (
	"context"
	"fmt"
	"math"
)

// Limits bounds the problems a Solver accepts. Zero disables a limit.
type Limits struct {
	MaxCapacity int `json:"maxCapacity"`
	MaxItems    int `json:"maxItems"`
	// MaxTraceCells caps the number of table cells held across all step
	// snapshots, i.e. (n*W + 2) * (n+1) * (W+1).
	MaxTraceCells int `json:"maxTraceCells"`
}

// Option configures a Solver built by New.
type Option func(*dpSolver)

// WithLimits sets the input limits enforced before solving.
func WithLimits(limits Limits) Option {
	return func(s *dpSolver) {
		s.limits = limits
	}
}

type dpSolver struct {
	limits Limits
}

// New creates a Solver based on dynamic programming.
func New(opts ...Option) Solver {
	s := &dpSolver{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limits returns the limits the solver enforces.
func (s *dpSolver) Limits() Limits {
	return s.limits
}

func (s *dpSolver) Solve(ctx context.Context, capacity int, items []Item) (*Trace, error) {
	if err := Validate(capacity, items); err != nil {
		return nil, err
	}
	if err := s.checkLimits(capacity, len(items)); err != nil {
		return nil, err
	}
	return solve(ctx, capacity, items)
}

// Validate checks the preconditions of Build.
func Validate(capacity int, items []Item) error {
	if capacity <= 0 {
		return ErrInvalidCapacity
	}
	if len(items) == 0 {
		return ErrNoItems
	}
	for idx, item := range items {
		if item.Weight <= 0 || item.Value <= 0 {
			return fmt.Errorf("%w: item %d has weight %d and value %d", ErrInvalidItem, idx, item.Weight, item.Value)
		}
	}
	return nil
}

func (s *dpSolver) checkLimits(capacity, items int) error {
	if s.limits.MaxCapacity > 0 && capacity > s.limits.MaxCapacity {
		return fmt.Errorf("%w: %d > %d", ErrCapacityTooLarge, capacity, s.limits.MaxCapacity)
	}
	if s.limits.MaxItems > 0 && items > s.limits.MaxItems {
		return fmt.Errorf("%w: %d > %d", ErrTooManyItems, items, s.limits.MaxItems)
	}
	if s.limits.MaxTraceCells > 0 {
		if cells := TraceCells(capacity, items); cells > int64(s.limits.MaxTraceCells) {
			return fmt.Errorf("%w: %d cells > %d", ErrTraceTooLarge, cells, s.limits.MaxTraceCells)
		}
	}
	return nil
}

// TraceCells is the number of table cells stored across every snapshot of a
// trace for the given dimensions. It saturates at math.MaxInt64.
func TraceCells(capacity, items int) int64 {
	if capacity <= 0 || items <= 0 {
		return 0
	}
	c, n := int64(capacity), int64(items)
	if n > (math.MaxInt64-2)/c {
		return math.MaxInt64
	}
	steps := n*c + 2
	table := n + 1
	if c+1 > math.MaxInt64/table {
		return math.MaxInt64
	}
	table *= c + 1
	if steps > math.MaxInt64/table {
		return math.MaxInt64
	}
	return steps * table
}
