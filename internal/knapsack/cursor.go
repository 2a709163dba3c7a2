package knapsack

import "fmt"

// Cursor walks a step sequence forwards and backwards. The zero position is
// the start step; the cursor never moves past either end.
type Cursor struct {
	steps []Step
	pos   int
}

// NewCursor creates a cursor over steps positioned at index 0.
func NewCursor(steps []Step) *Cursor {
	return &Cursor{steps: steps}
}

func (c *Cursor) Len() int {
	return len(c.steps)
}

func (c *Cursor) Position() int {
	return c.pos
}

// Current returns the step under the cursor. ok is false for an empty sequence.
func (c *Cursor) Current() (step Step, ok bool) {
	if len(c.steps) == 0 {
		return Step{}, false
	}
	return c.steps[c.pos], true
}

// Next advances one step and reports whether the cursor moved.
func (c *Cursor) Next() bool {
	if c.pos >= len(c.steps)-1 {
		return false
	}
	c.pos++
	return true
}

// Prev retreats one step and reports whether the cursor moved.
func (c *Cursor) Prev() bool {
	if c.pos == 0 {
		return false
	}
	c.pos--
	return true
}

// Seek jumps to step k.
func (c *Cursor) Seek(k int) error {
	if k < 0 || k >= len(c.steps) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrStepOutOfRange, k, len(c.steps))
	}
	c.pos = k
	return nil
}

func (c *Cursor) First() {
	c.pos = 0
}

// Last jumps to the final record.
func (c *Cursor) Last() {
	if len(c.steps) > 0 {
		c.pos = len(c.steps) - 1
	}
}

func (c *Cursor) AtStart() bool {
	return c.pos == 0
}

func (c *Cursor) AtEnd() bool {
	return c.pos >= len(c.steps)-1
}
