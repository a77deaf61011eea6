package interaction

// QueryEditor holds the text of the search bar
type QueryEditor struct {
	text []rune
}

// NewQueryEditor creates an empty editor
func NewQueryEditor() *QueryEditor {
	return &QueryEditor{}
}

// Apply edits the query with a key event and reports whether the text changed
func (e *QueryEditor) Apply(event KeyEvent) bool {
	switch event.Type {
	case KeyChar:
		e.text = append(e.text, event.Key)
		return true
	case KeyBackspace:
		if len(e.text) == 0 {
			return false
		}
		e.text = e.text[:len(e.text)-1]
		return true
	case KeyClearLine:
		if len(e.text) == 0 {
			return false
		}
		e.text = e.text[:0]
		return true
	}
	return false
}

// String returns the current query
func (e *QueryEditor) String() string {
	return string(e.text)
}

// Cursor tracks the focused tile of a list whose length changes
type Cursor struct {
	pos int
}

// Move shifts the cursor by delta within [0, n)
func (c *Cursor) Move(delta, n int) {
	c.pos += delta
	c.Clamp(n)
}

// Clamp keeps the cursor inside a list of n items
func (c *Cursor) Clamp(n int) {
	if c.pos >= n {
		c.pos = n - 1
	}
	if c.pos < 0 {
		c.pos = 0
	}
}

// Reset moves the cursor to the first item
func (c *Cursor) Reset() {
	c.pos = 0
}

// Pos returns the cursor position
func (c *Cursor) Pos() int {
	return c.pos
}
