package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/util"
)

func testFrame() Frame {
	return Frame{
		Query: "a",
		Tiles: []feed.Tile{
			{EntityID: 1, Title: "Alpha", Reach: 5, Opacity: 1, Selected: true},
			{EntityID: 2, Title: "Gamma", Reach: 2, Opacity: 0.5},
		},
		Cursor: 1,
	}
}

func TestOpacityColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("231"), OpacityColor(1.0))
	assert.Equal(t, lipgloss.Color("252"), OpacityColor(0.9))
	assert.Equal(t, lipgloss.Color("248"), OpacityColor(0.7))
	assert.Equal(t, lipgloss.Color("244"), OpacityColor(0.5))
}

func TestComposeFrame(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, 8, 16)
	td.Resize(80, 24)
	td.Panel().SetField(model.FieldTitle, "Alpha")
	td.Panel().SetField(model.FieldDay, "Mon")
	td.Panel().SetField(model.FieldTime, "08:00")
	td.Panel().SetBackground("images_2/alpha.png")

	screen := td.Compose(testFrame())

	assert.Contains(t, screen, "Search")
	assert.Contains(t, screen, "a▏")
	assert.Contains(t, screen, "  Alpha")
	assert.Contains(t, screen, "▸ Gamma")
	assert.Contains(t, screen, "Mon 08:00")
	assert.Contains(t, screen, "images_2/alpha.png")
	assert.Contains(t, screen, helpHint)

	for _, line := range strings.Split(screen, "\n") {
		assert.LessOrEqual(t, util.GetDisplayWidth(line), 80)
	}
}

func TestComposeEmptyFeed(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, 8, 16)
	td.Resize(80, 24)

	screen := td.Compose(Frame{Query: "zzz", Status: "0 matches"})

	assert.Contains(t, screen, "No matches")
	assert.Contains(t, screen, "0 matches")
}

func TestComposeHelp(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, 8, 16)
	td.Resize(80, 24)

	screen := td.Compose(Frame{ShowHelp: true})

	assert.Contains(t, screen, "Virus Feed - Help")
	assert.NotContains(t, screen, "No matches")
}

func TestComposeScrollsToCursor(t *testing.T) {
	td := NewTerminalDisplay(&bytes.Buffer{}, 8, 16)
	td.Resize(80, 6) // three feed rows

	frame := Frame{Cursor: 4}
	for i, title := range []string{"t0", "t1", "t2", "t3", "t4"} {
		frame.Tiles = append(frame.Tiles, feed.Tile{EntityID: model.EntityID(i), Title: title, Opacity: 0.5})
	}

	screen := td.Compose(frame)
	assert.NotContains(t, screen, "t1")
	assert.Contains(t, screen, "t2")
	assert.Contains(t, screen, "▸ t4")
}

func TestRenderAndAlternateScreen(t *testing.T) {
	var buf bytes.Buffer
	td := NewTerminalDisplay(&buf, 8, 16)
	td.Resize(40, 10)

	td.EnterAlternateScreen()
	td.EnterAlternateScreen()
	td.Render(testFrame())
	td.ExitAlternateScreen()

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, util.EnterAltScreen))
	assert.Contains(t, out, util.MoveCursorHome)
	assert.Contains(t, out, "Alpha")
	assert.True(t, strings.HasSuffix(out, util.ExitAltScreen))
}
