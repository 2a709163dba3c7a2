package knapsack

import (
	"context"
	"fmt"
	"slices"
)

// Trace is everything one solve produced. It is not modified after Solve
// returns.
type Trace struct {
	Capacity int      `json:"capacity"`
	Items    []Item   `json:"items"`
	Table    Table    `json:"table"`
	Steps    []Step   `json:"steps"`
	Solution Solution `json:"solution"`
}

// Solve runs Build then Extract. The trace owns a copy of items.
func Solve(capacity int, items []Item) *Trace {
	trace, _ := solve(context.Background(), capacity, items)
	return trace
}

func solve(ctx context.Context, capacity int, items []Item) (*Trace, error) {
	owned := slices.Clone(items)

	table, steps, err := build(ctx, capacity, owned)
	if err != nil {
		return nil, err
	}
	solution, steps := Extract(table, owned, capacity, steps)

	return &Trace{
		Capacity: capacity,
		Items:    owned,
		Table:    table,
		Steps:    steps,
		Solution: solution,
	}, nil
}

// Step returns the k-th step.
func (t *Trace) Step(k int) (Step, error) {
	if k < 0 || k >= len(t.Steps) {
		return Step{}, fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, k, len(t.Steps))
	}
	return t.Steps[k], nil
}

// Cursor returns a playback cursor positioned on the start step.
func (t *Trace) Cursor() *Cursor {
	return NewCursor(t.Steps)
}

// Summary computes the display figures for the finished trace.
func (t *Trace) Summary() Summary {
	totalWeight := 0
	totalValue := 0
	for _, idx := range t.Solution.SelectedIndices {
		totalWeight += t.Items[idx].Weight
		totalValue += t.Items[idx].Value
	}

	n := len(t.Items)
	return Summary{
		MaxValue:        t.Solution.MaxValue,
		SelectedIndices: slices.Clone(t.Solution.SelectedIndices),
		TotalWeight:     totalWeight,
		TotalValue:      totalValue,
		Operations:      n * t.Capacity,
		TableCells:      (n + 1) * (t.Capacity + 1),
		StepCount:       len(t.Steps),
	}
}
