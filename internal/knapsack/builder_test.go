package knapsack

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classicItems = []Item{
	{Weight: 10, Value: 60},
	{Weight: 20, Value: 100},
	{Weight: 30, Value: 120},
}

func TestBuildBaseCaseAndMonotonicity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		capacity int
		items    []Item
	}{
		{name: "Classic", capacity: 50, items: classicItems},
		{name: "HeavyItem", capacity: 4, items: []Item{{Weight: 5, Value: 10}}},
		{name: "Ties", capacity: 10, items: []Item{{Weight: 5, Value: 10}, {Weight: 5, Value: 10}}},
		{name: "Mixed", capacity: 7, items: []Item{{Weight: 3, Value: 4}, {Weight: 4, Value: 5}, {Weight: 2, Value: 3}, {Weight: 1, Value: 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			table, steps := Build(tc.capacity, tc.items)
			require.Equal(t, len(tc.items)+1, table.Rows())
			require.Equal(t, tc.capacity+1, table.Cols())

			for w := 0; w <= tc.capacity; w++ {
				assert.Zero(t, table[0][w], "table[0][%d]", w)
			}
			for i := 0; i <= len(tc.items); i++ {
				assert.Zero(t, table[i][0], "table[%d][0]", i)
			}
			for i := 1; i <= len(tc.items); i++ {
				for w := 0; w <= tc.capacity; w++ {
					assert.GreaterOrEqual(t, table[i][w], table[i-1][w], "monotonicity at [%d][%d]", i, w)
				}
			}

			// Build alone emits start plus one step per cell.
			assert.Len(t, steps, 1+len(tc.items)*tc.capacity)
		})
	}
}

func TestBuildStartStep(t *testing.T) {
	t.Parallel()

	_, steps := Build(50, classicItems)
	start := steps[0]

	assert.Equal(t, 0, start.Sequence)
	assert.Nil(t, start.Cell)
	assert.Equal(t, DecisionNone, start.Decision)
	assert.Equal(t, HighlightStart, start.Highlight)
	assert.Equal(t, "Starting 0/1 Knapsack: 3 items, capacity 50", start.Description)
	assert.Empty(t, start.Calculation)
	for _, row := range start.Table {
		for _, v := range row {
			require.Zero(t, v)
		}
	}
}

func TestBuildRowMajorOrder(t *testing.T) {
	t.Parallel()

	capacity := 6
	items := []Item{{Weight: 2, Value: 3}, {Weight: 3, Value: 4}}
	_, steps := Build(capacity, items)

	seq := 1
	for i := 1; i <= len(items); i++ {
		for w := 1; w <= capacity; w++ {
			step := steps[seq]
			require.Equal(t, seq, step.Sequence)
			require.NotNil(t, step.Cell)
			require.Equal(t, Cell{I: i, W: w}, *step.Cell)
			seq++
		}
	}
}

func TestBuildSnapshotsAreIndependent(t *testing.T) {
	t.Parallel()

	table, steps := Build(50, classicItems)

	// Step for cell (1, 10) sees its own write but nothing from later cells.
	step := steps[10]
	require.Equal(t, Cell{I: 1, W: 10}, *step.Cell)
	assert.Equal(t, 60, step.Table[1][10])
	assert.Zero(t, step.Table[1][11])
	assert.Zero(t, step.Table[3][50])

	before := steps[11].Table[1][10]
	step.Table[1][10] = 9999
	assert.Equal(t, before, steps[11].Table[1][10])
	assert.Equal(t, 60, table[1][10])

	table[3][50] = -1
	assert.Equal(t, 220, steps[len(steps)-1].Table[3][50])
}

func TestBuildTooHeavyItem(t *testing.T) {
	t.Parallel()

	_, steps := Build(4, []Item{{Weight: 5, Value: 10}})
	require.Len(t, steps, 5)

	for _, step := range steps[1:] {
		assert.Equal(t, DecisionExclude, step.Decision)
		assert.Equal(t, HighlightTooHeavy, step.Highlight)
	}
	assert.Equal(t, "dp[1][3] = dp[0][3] = 0", steps[3].Calculation)
	assert.Equal(t, "Item 1 (w=5, v=10): Too heavy for capacity 3 -> Skip", steps[3].Description)
}

func TestBuildTieGoesToExclude(t *testing.T) {
	t.Parallel()

	items := []Item{{Weight: 5, Value: 10}, {Weight: 5, Value: 10}}
	table, steps := Build(10, items)

	for w := 5; w <= 9; w++ {
		step := steps[10+w]
		require.Equal(t, Cell{I: 2, W: w}, *step.Cell)
		assert.Equal(t, DecisionExclude, step.Decision, "w=%d", w)
		assert.Equal(t, HighlightExclude, step.Highlight, "w=%d", w)
		assert.Equal(t, "Item 2 (w=5, v=10): Exclude (10 >= 10)", step.Description)
	}

	last := steps[20]
	require.Equal(t, Cell{I: 2, W: 10}, *last.Cell)
	assert.Equal(t, DecisionInclude, last.Decision)
	assert.Equal(t, "dp[2][10] = max(10, 10 + 10) = 20", last.Calculation)
	assert.Equal(t, 20, table[2][10])
}

func TestBuildCalculationText(t *testing.T) {
	t.Parallel()

	_, steps := Build(50, classicItems)

	include := steps[50+30]
	require.Equal(t, Cell{I: 2, W: 30}, *include.Cell)
	assert.Equal(t, DecisionInclude, include.Decision)
	assert.Equal(t, HighlightInclude, include.Highlight)
	assert.Equal(t, "Item 2 (w=20, v=100): Include (160 > 60)", include.Description)
	assert.Equal(t, "dp[2][30] = max(60, 100 + 60) = 160", include.Calculation)

	exclude := steps[100+35]
	require.Equal(t, Cell{I: 3, W: 35}, *exclude.Cell)
	assert.Equal(t, DecisionExclude, exclude.Decision)
	assert.Equal(t, "dp[3][35] = max(160, 120) = 160", exclude.Calculation)
}

func TestBuildDeterministic(t *testing.T) {
	t.Parallel()

	first := Solve(50, classicItems)
	second := Solve(50, classicItems)
	assert.Equal(t, first, second)
}

func TestBuildInterruptedByContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := build(ctx, 10, classicItems)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTableClone(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Table(nil).Clone())
	assert.Equal(t, Table{}, Table{}.Clone())

	orig := newTable(2, 3)
	orig[1][2] = 7
	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone[1][2] = 8
	assert.Equal(t, 7, orig[1][2])

	// Appending to a row must not spill into the next one.
	_ = append(orig[0], 42)
	assert.Zero(t, orig[1][0])
}

func BenchmarkBuildSmall(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Build(50, classicItems)
	}
}

func BenchmarkBuildMedium(b *testing.B) {
	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{Weight: i%7 + 1, Value: i*3 + 1}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Build(100, items)
	}
}
