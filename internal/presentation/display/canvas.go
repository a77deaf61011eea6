package display

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

// Glyphs used on the terminal canvas
const (
	PathGlyph   = '·'
	MarkerGlyph = '■'
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellPath
	cellMarker
	cellLabel
	cellWide // right half of a wide rune
)

type cell struct {
	r    rune
	kind cellKind
}

// Canvas is a timeline surface backed by a grid of terminal cells. Drawing
// coordinates are pixels; one cell covers cellW x cellH pixels.
type Canvas struct {
	cols, rows   int
	cellW, cellH float64
	cells        [][]cell
}

// NewCanvas creates a canvas of cols x rows cells
func NewCanvas(cols, rows int, cellW, cellH float64) *Canvas {
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	c := &Canvas{cellW: cellW, cellH: cellH}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid size and clears it
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols, c.rows = cols, rows
	c.cells = make([][]cell, rows)
	for i := range c.cells {
		c.cells[i] = make([]cell, cols)
	}
}

// Cells returns the grid size
func (c *Canvas) Cells() (cols, rows int) {
	return c.cols, c.rows
}

// Clear implements timeline.Surface
func (c *Canvas) Clear() {
	for _, row := range c.cells {
		for i := range row {
			row[i] = cell{}
		}
	}
}

// Size implements timeline.Surface
func (c *Canvas) Size() (float64, float64) {
	return float64(c.cols) * c.cellW, float64(c.rows) * c.cellH
}

// DrawPath implements timeline.Surface. Curves are sampled densely enough
// to leave no gaps between cells. Path dots never cover labels or markers.
func (c *Canvas) DrawPath(cmds []timeline.PathCommand, _ timeline.PathStyle) {
	var cur timeline.Point
	for _, cmd := range cmds {
		switch cmd.Op {
		case timeline.OpMoveTo:
			cur = cmd.To
			c.plot(cur.X, cur.Y, PathGlyph, cellPath)
		case timeline.OpLineTo:
			c.sample(func(t float64) timeline.Point { return lerp(cur, cmd.To, t) }, distance(cur, cmd.To))
			cur = cmd.To
		case timeline.OpCurveTo:
			p0 := cur
			length := distance(p0, cmd.C1) + distance(cmd.C1, cmd.C2) + distance(cmd.C2, cmd.To)
			c.sample(func(t float64) timeline.Point { return cubic(p0, cmd.C1, cmd.C2, cmd.To, t) }, length)
			cur = cmd.To
		}
	}
}

// DrawRect implements timeline.Surface. A marker becomes a single glyph in
// the cell holding its centre.
func (c *Canvas) DrawRect(r timeline.Rect, _ timeline.ShapeStyle) {
	c.plot(r.X+r.Width/2, r.Y+r.Height/2, MarkerGlyph, cellMarker)
}

// DrawText implements timeline.Surface. Text starts in the cell holding
// (x, y) and is cut at the right edge.
func (c *Canvas) DrawText(x, y float64, text string, _ timeline.TextStyle) {
	col, row, ok := c.cellAt(x, y)
	if !ok {
		return
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.cols {
			return
		}
		c.put(row, col, cell{r: r, kind: cellLabel})
		if w == 2 {
			c.put(row, col+1, cell{kind: cellWide})
		}
		col += w
	}
}

// Lines returns the grid as plain text, one string per row
func (c *Canvas) Lines() []string {
	return c.lines(func(_ cellKind, text string) string { return text })
}

// CanvasStyles colors the cell kinds
type CanvasStyles struct {
	Path   lipgloss.Style
	Marker lipgloss.Style
	Label  lipgloss.Style
}

// StyledLines returns the grid with runs of equal kind rendered in their style
func (c *Canvas) StyledLines(styles CanvasStyles) []string {
	return c.lines(styles.render)
}

func (c *Canvas) lines(render func(kind cellKind, text string) string) []string {
	lines := make([]string, c.rows)
	for i, row := range c.cells {
		var b strings.Builder
		var run strings.Builder
		runKind := cellEmpty

		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(render(runKind, run.String()))
			run.Reset()
		}

		for _, cl := range row {
			if cl.kind == cellWide {
				continue
			}
			if cl.kind != runKind {
				flush()
				runKind = cl.kind
			}
			if cl.kind == cellEmpty {
				run.WriteByte(' ')
			} else {
				run.WriteRune(cl.r)
			}
		}
		flush()
		lines[i] = b.String()
	}
	return lines
}

func (s CanvasStyles) render(kind cellKind, text string) string {
	switch kind {
	case cellPath:
		return s.Path.Render(text)
	case cellMarker:
		return s.Marker.Render(text)
	case cellLabel:
		return s.Label.Render(text)
	}
	return text
}

func (c *Canvas) cellAt(x, y float64) (col, row int, ok bool) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	col = int(math.Floor(x / c.cellW))
	row = int(math.Floor(y / c.cellH))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, 0, false
	}
	return col, row, true
}

func (c *Canvas) plot(x, y float64, r rune, kind cellKind) {
	col, row, ok := c.cellAt(x, y)
	if !ok {
		return
	}
	existing := c.cells[row][col].kind
	if kind == cellPath && existing != cellEmpty && existing != cellPath {
		return
	}
	c.put(row, col, cell{r: r, kind: kind})
}

// put stores cl at (row, col). Covering either half of a wide rune blanks
// the other half, so every row keeps its full display width.
func (c *Canvas) put(row, col int, cl cell) {
	line := c.cells[row]
	if line[col].kind == cellWide && cl.kind != cellWide && col > 0 {
		line[col-1] = cell{}
	}
	if col+1 < c.cols && line[col+1].kind == cellWide {
		line[col+1] = cell{}
	}
	line[col] = cl
}

// sample plots f(t) for t in [0, 1] with a step of about a third of a cell
func (c *Canvas) sample(f func(t float64) timeline.Point, length float64) {
	step := math.Min(c.cellW, c.cellH) / 3
	n := int(math.Ceil(length / step))
	if n < 1 {
		n = 1
	}
	if n > 10000 {
		n = 10000
	}
	for i := 1; i <= n; i++ {
		p := f(float64(i) / float64(n))
		c.plot(p.X, p.Y, PathGlyph, cellPath)
	}
}

func lerp(a, b timeline.Point, t float64) timeline.Point {
	return timeline.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

func cubic(p0, p1, p2, p3 timeline.Point, t float64) timeline.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	cc := 3 * mt * t * t
	d := t * t * t
	return timeline.Point{
		X: a*p0.X + b*p1.X + cc*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + cc*p2.Y + d*p3.Y,
	}
}

func distance(a, b timeline.Point) float64 {
	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}
