package knapsack

import (
	"context"
	"fmt"
)

// Build fills the DP table for the given items and capacity and records one
// step per cell, preceded by a start step. Inputs are trusted: capacity >= 1,
// at least one item, positive weights and values.
func Build(capacity int, items []Item) (Table, []Step) {
	table, steps, _ := build(context.Background(), capacity, items)
	return table, steps
}

func build(ctx context.Context, capacity int, items []Item) (Table, []Step, error) {
	n := len(items)
	dp := newTable(n, capacity)
	steps := make([]Step, 0, stepCount(n, capacity))

	steps = append(steps, Step{
		Sequence:    0,
		Description: fmt.Sprintf("Starting 0/1 Knapsack: %d items, capacity %d", n, capacity),
		Table:       dp.Clone(),
		Decision:    DecisionNone,
		Highlight:   HighlightStart,
	})

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("fill interrupted at item %d: %w", i, err)
		}

		item := items[i-1]
		for w := 1; w <= capacity; w++ {
			step := Step{
				Sequence: len(steps),
				Cell:     &Cell{I: i, W: w},
			}

			if item.Weight > w {
				dp[i][w] = dp[i-1][w]
				step.Description = fmt.Sprintf("Item %d (w=%d, v=%d): Too heavy for capacity %d -> Skip", i, item.Weight, item.Value, w)
				step.Decision = DecisionExclude
				step.Highlight = HighlightTooHeavy
				step.Calculation = fmt.Sprintf("dp[%d][%d] = dp[%d][%d] = %d", i, w, i-1, w, dp[i][w])
			} else {
				exclude := dp[i-1][w]
				remainder := dp[i-1][w-item.Weight]
				include := item.Value + remainder

				// Ties keep the exclude branch.
				if include > exclude {
					dp[i][w] = include
					step.Description = fmt.Sprintf("Item %d (w=%d, v=%d): Include (%d > %d)", i, item.Weight, item.Value, include, exclude)
					step.Decision = DecisionInclude
					step.Highlight = HighlightInclude
					step.Calculation = fmt.Sprintf("dp[%d][%d] = max(%d, %d + %d) = %d", i, w, exclude, item.Value, remainder, include)
				} else {
					dp[i][w] = exclude
					step.Description = fmt.Sprintf("Item %d (w=%d, v=%d): Exclude (%d >= %d)", i, item.Weight, item.Value, exclude, include)
					step.Decision = DecisionExclude
					step.Highlight = HighlightExclude
					step.Calculation = fmt.Sprintf("dp[%d][%d] = max(%d, %d) = %d", i, w, exclude, include, exclude)
				}
			}

			step.Table = dp.Clone()
			steps = append(steps, step)
		}
	}

	return dp, steps, nil
}

// stepCount is the length of a finished trace: start, one per cell, final.
func stepCount(items, capacity int) int {
	return items*capacity + 2
}
