package knapsack

import (
	"fmt"
	"slices"
)

// Extract backtracks through a table produced by Build for the same items and
// capacity. It returns the solution and steps with the final step appended.
func Extract(table Table, items []Item, capacity int, steps []Step) (Solution, []Step) {
	n := len(items)
	maxValue := table[n][capacity]

	selected := make([]int, 0, n)
	w := capacity
	for i := n; i > 0; i-- {
		if table[i][w] != table[i-1][w] {
			selected = append(selected, i-1)
			w -= items[i-1].Weight
		}
	}
	slices.Reverse(selected)

	steps = append(steps, Step{
		Sequence:    len(steps),
		Description: fmt.Sprintf("Solution Found: Maximum Value = %d", maxValue),
		Table:       table.Clone(),
		Cell:        &Cell{I: n, W: capacity},
		Decision:    DecisionFinal,
		Highlight:   HighlightFinal,
		Calculation: fmt.Sprintf("Answer: %d", maxValue),
	})

	return Solution{
		MaxValue:        maxValue,
		SelectedIndices: selected,
	}, steps
}
