package knapsack

import "context"

// Item is a weight/value pair. Its identity is its index in the input slice.
type Item struct {
	Weight int `json:"weight" yaml:"weight" toml:"weight"`
	Value  int `json:"value" yaml:"value" toml:"value"`
}

// Decision records which branch produced a cell value.
type Decision string

const (
	DecisionNone    Decision = "none"
	DecisionInclude Decision = "include"
	DecisionExclude Decision = "exclude"
	DecisionFinal   Decision = "final"
)

// Highlight tells a viewer why a cell is highlighted.
type Highlight string

const (
	HighlightStart    Highlight = "start"
	HighlightTooHeavy Highlight = "too-heavy"
	HighlightInclude  Highlight = "include"
	HighlightExclude  Highlight = "exclude"
	HighlightFinal    Highlight = "final"
)

// Cell addresses table[I][W].
type Cell struct {
	I int `json:"i"`
	W int `json:"w"`
}

// Step is one immutable snapshot of the fill. Table is a private copy that no
// later step or the live table shares.
type Step struct {
	Sequence    int       `json:"sequenceNumber"`
	Description string    `json:"description"`
	Table       Table     `json:"tableSnapshot"`
	Cell        *Cell     `json:"cell,omitempty"`
	Decision    Decision  `json:"decision"`
	Highlight   Highlight `json:"highlightReason"`
	Calculation string    `json:"calculationText,omitempty"`
}

// Solution is the optimum recovered by backtracking. SelectedIndices are
// ascending original item indices.
type Solution struct {
	MaxValue        int   `json:"maxValue"`
	SelectedIndices []int `json:"selectedIndices"`
}

// Summary holds the derived figures a viewer shows next to the final step.
type Summary struct {
	MaxValue        int   `json:"maxValue"`
	SelectedIndices []int `json:"selectedIndices"`
	TotalWeight     int   `json:"totalWeight"`
	TotalValue      int   `json:"totalValue"`
	Operations      int   `json:"operations"`
	TableCells      int   `json:"tableCells"`
	StepCount       int   `json:"stepCount"`
}

// Solver validates input and produces a full trace.
type Solver interface {
	Solve(ctx context.Context, capacity int, items []Item) (*Trace, error)
	Limits() Limits
}
