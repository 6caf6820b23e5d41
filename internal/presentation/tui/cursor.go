package tui

// Cursor is the viewer's position in a deck. It is clamped to
// [0, total) and moving past either end is a no-op.
type Cursor struct {
	index int
	total int
}

// NewCursor starts at the first of total slides.
func NewCursor(total int) Cursor {
	return Cursor{total: total}
}

// Index is the current slide.
func (c Cursor) Index() int { return c.index }

// Total is the number of slides.
func (c Cursor) Total() int { return c.total }

// Next advances one slide and reports whether the position changed.
func (c *Cursor) Next() bool {
	if c.index >= c.total-1 {
		return false
	}
	c.index++
	return true
}

// Prev steps back one slide and reports whether the position changed.
func (c *Cursor) Prev() bool {
	if c.index <= 0 {
		return false
	}
	c.index--
	return true
}
