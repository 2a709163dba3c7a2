package knapsack

// Table is the DP grid: Table[i][w] is the best value using the first i items
// under capacity w.
type Table [][]int

func newTable(items, capacity int) Table {
	cells := make([]int, (items+1)*(capacity+1))
	t := make(Table, items+1)
	for i := range t {
		t[i] = cells[i*(capacity+1) : (i+1)*(capacity+1) : (i+1)*(capacity+1)]
	}
	return t
}

// Clone returns a deep copy that shares no backing storage with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	if len(t) == 0 {
		return Table{}
	}

	out := newTable(len(t)-1, len(t[0])-1)
	for i, row := range t {
		copy(out[i], row)
	}
	return out
}

// Rows is n+1.
func (t Table) Rows() int {
	return len(t)
}

// Cols is W+1.
func (t Table) Cols() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}
