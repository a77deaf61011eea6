package display

import (
	"math"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

func TestCanvasSize(t *testing.T) {
	c := NewCanvas(10, 4, 8, 16)

	w, h := c.Size()
	assert.Equal(t, 80.0, w)
	assert.Equal(t, 64.0, h)

	c.Resize(-3, 2)
	w, h = c.Size()
	assert.Equal(t, 0.0, w)
	assert.Equal(t, 32.0, h)
}

func TestCanvasDrawing(t *testing.T) {
	c := NewCanvas(10, 4, 8, 16)

	c.DrawText(8, 40, "ab", timeline.DefaultTheme.Label)
	c.DrawText(72, 40, "xyz", timeline.DefaultTheme.Label)
	c.DrawPath([]timeline.PathCommand{
		{Op: timeline.OpMoveTo, To: timeline.Point{X: 0, Y: 8}},
		{Op: timeline.OpLineTo, To: timeline.Point{X: 79, Y: 8}},
	}, timeline.DefaultTheme.Path)
	c.DrawPath([]timeline.PathCommand{
		{Op: timeline.OpMoveTo, To: timeline.Point{X: 0, Y: 40}},
		{Op: timeline.OpLineTo, To: timeline.Point{X: 79, Y: 40}},
	}, timeline.DefaultTheme.Path)
	c.DrawRect(timeline.Rect{X: 35, Y: 20, Width: 10, Height: 10}, timeline.DefaultTheme.Marker)

	lines := c.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "··········", lines[0])
	assert.Equal(t, "     ■    ", lines[1])
	assert.Equal(t, "·ab······x", lines[2])
	assert.Equal(t, "          ", lines[3])
}

func TestCanvasCurve(t *testing.T) {
	c := NewCanvas(10, 4, 8, 16)

	c.DrawPath([]timeline.PathCommand{
		{Op: timeline.OpMoveTo, To: timeline.Point{X: 4, Y: 8}},
		{
			Op: timeline.OpCurveTo,
			C1: timeline.Point{X: 30, Y: 8},
			C2: timeline.Point{X: 50, Y: 56},
			To: timeline.Point{X: 76, Y: 56},
		},
	}, timeline.DefaultTheme.Path)

	lines := c.Lines()
	assert.Equal(t, '·', []rune(lines[0])[0])
	assert.Equal(t, '·', []rune(lines[3])[9])
	for _, line := range lines {
		assert.Contains(t, line, "·")
	}
}

func TestCanvasWideRunes(t *testing.T) {
	c := NewCanvas(10, 1, 8, 16)

	c.DrawText(0, 8, "病a", timeline.DefaultTheme.Label)
	assert.Equal(t, "病a       ", c.Lines()[0])

	c.DrawRect(timeline.Rect{X: 4, Y: 0, Width: 10, Height: 10}, timeline.DefaultTheme.Marker)
	assert.Equal(t, " ■a       ", c.Lines()[0])
}

func TestCanvasCoveringWideRuneKeepsRowWidth(t *testing.T) {
	tests := []struct {
		name string
		draw func(c *Canvas)
		want string
	}{
		{
			name: "marker on left half",
			draw: func(c *Canvas) { c.DrawRect(timeline.Rect{X: 16, Y: 4, Width: 0, Height: 0}, timeline.DefaultTheme.Marker) },
			want: "日■       ",
		},
		{
			name: "marker on right half",
			draw: func(c *Canvas) { c.DrawRect(timeline.Rect{X: 24, Y: 4, Width: 0, Height: 0}, timeline.DefaultTheme.Marker) },
			want: "日 ■      ",
		},
		{
			name: "label on left half",
			draw: func(c *Canvas) { c.DrawText(0, 4, "x", timeline.DefaultTheme.Label) },
			want: "x 本      ",
		},
		{
			name: "wide label across two wide runes",
			draw: func(c *Canvas) { c.DrawText(8, 4, "中", timeline.DefaultTheme.Label) },
			want: " 中       ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCanvas(10, 1, 8, 16)
			c.DrawText(0, 4, "日本", timeline.DefaultTheme.Label)
			tt.draw(c)

			line := c.Lines()[0]
			assert.Equal(t, tt.want, line)
			assert.Equal(t, 10, runewidth.StringWidth(line))
		})
	}
}

func TestCanvasIgnoresInvalidCoordinates(t *testing.T) {
	c := NewCanvas(4, 2, 8, 16)

	assert.NotPanics(t, func() {
		c.DrawText(math.NaN(), 0, "x", timeline.DefaultTheme.Label)
		c.DrawText(-20, 0, "x", timeline.DefaultTheme.Label)
		c.DrawRect(timeline.Rect{X: math.Inf(1)}, timeline.DefaultTheme.Marker)
		c.DrawPath([]timeline.PathCommand{
			{Op: timeline.OpMoveTo, To: timeline.Point{X: math.NaN(), Y: 0}},
			{Op: timeline.OpLineTo, To: timeline.Point{X: 100, Y: 100}},
		}, timeline.DefaultTheme.Path)
	})

	empty := NewCanvas(0, 0, 8, 16)
	assert.NotPanics(t, func() {
		empty.DrawText(0, 0, "x", timeline.DefaultTheme.Label)
		empty.Clear()
	})
	assert.Empty(t, empty.Lines())
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 1, 8, 16)
	c.DrawText(0, 0, "abc", timeline.DefaultTheme.Label)
	c.Clear()
	assert.Equal(t, "   ", c.Lines()[0])
}
