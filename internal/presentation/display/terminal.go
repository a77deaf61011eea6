package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/presentation/layout"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// Frame is the state shown by one screen render
type Frame struct {
	Query    string
	Tiles    []feed.Tile
	Cursor   int
	Status   string
	ShowHelp bool
}

// Screen styles
var (
	searchLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	separatorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	panelBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	timelineStyles   = CanvasStyles{
		Path:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Marker: lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true),
		Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
)

const helpHint = "type to search · ↑/↓ move · Enter select · Ctrl+U clear · ? help · Esc quit"

// OpacityColor maps a tile opacity to a gray level of the 256-color palette
func OpacityColor(opacity float64) lipgloss.Color {
	switch {
	case opacity >= 1:
		return lipgloss.Color("231")
	case opacity >= 0.9:
		return lipgloss.Color("252")
	case opacity >= 0.7:
		return lipgloss.Color("248")
	default:
		return lipgloss.Color("244")
	}
}

// TerminalDisplay draws the feed, panel and timeline on a terminal
type TerminalDisplay struct {
	out               io.Writer
	sizer             *layout.Sizer
	regions           layout.Regions
	canvas            *Canvas
	panel             *Panel
	inAlternateScreen bool
}

// NewTerminalDisplay creates a display writing to out (stdout when nil).
// cellW and cellH give the pixel size of a cell on the timeline canvas.
func NewTerminalDisplay(out io.Writer, cellW, cellH float64) *TerminalDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalDisplay{
		out:    out,
		sizer:  layout.NewSizer(0, 0),
		canvas: NewCanvas(0, 0, cellW, cellH),
		panel:  &Panel{},
	}
}

// Canvas returns the timeline surface
func (td *TerminalDisplay) Canvas() *Canvas {
	return td.canvas
}

// Panel returns the panel the selection is written to
func (td *TerminalDisplay) Panel() *Panel {
	return td.panel
}

// Resize lays the screen out for cols x rows cells. The canvas is resized
// and cleared, so the timeline must be redrawn afterwards.
func (td *TerminalDisplay) Resize(cols, rows int) {
	td.sizer = layout.NewSizer(cols, rows)
	td.regions = td.sizer.Regions()
	td.canvas.Resize(td.regions.TimelineCols, td.regions.TimelineRows)
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if !td.inAlternateScreen {
		fmt.Fprint(td.out, util.EnterAltScreen)
		fmt.Fprint(td.out, util.ClearScreen)
		fmt.Fprint(td.out, util.ClearScrollback)
		fmt.Fprint(td.out, util.ResetScrollRegion)
		fmt.Fprint(td.out, util.HideCursor)
		fmt.Fprint(td.out, util.MoveCursorHome)
		td.inAlternateScreen = true
	}
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if td.inAlternateScreen {
		fmt.Fprint(td.out, util.ClearScreen)
		fmt.Fprint(td.out, util.MoveCursorHome)
		fmt.Fprint(td.out, util.ShowCursor)
		fmt.Fprint(td.out, util.ExitAltScreen)
		td.inAlternateScreen = false
	}
}

// Render draws frame over the previous one
func (td *TerminalDisplay) Render(frame Frame) {
	fmt.Fprint(td.out, util.MoveCursorHome)
	fmt.Fprint(td.out, td.Compose(frame))
	// Clear whatever the previous frame left below
	fmt.Fprint(td.out, "\033[J")
}

// Compose builds the screen text of frame
func (td *TerminalDisplay) Compose(frame Frame) string {
	width := td.sizer.Width
	lines := []string{
		td.searchBar(frame.Query, width),
		separatorStyle.Render(strings.Repeat("─", width)),
	}

	if frame.ShowHelp {
		lines = append(lines, helpLines()...)
	} else if td.regions.FeedRows > 0 {
		left := lipgloss.NewStyle().Width(td.regions.FeedWidth).Render(strings.Join(td.feedLines(frame), "\n"))
		gap := strings.Repeat(" ", layout.ColumnGap)
		right := strings.Join(append(td.panelLines(), td.canvas.StyledLines(timelineStyles)...), "\n")
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right))
	}

	status := frame.Status
	if status == "" {
		status = helpHint
	}
	lines = append(lines, dimStyle.Render(util.TruncateToWidth(status, width)))

	return strings.Join(lines, "\n")
}

func (td *TerminalDisplay) searchBar(query string, width int) string {
	label := "Search "
	rest := width - util.GetDisplayWidth(label)
	return searchLabelStyle.Render(label) + util.TruncateToWidth(query+"▏", rest)
}

// feedLines renders the visible window of tiles, scrolled so the cursor
// stays on screen
func (td *TerminalDisplay) feedLines(frame Frame) []string {
	rows := td.regions.FeedRows
	width := td.regions.FeedWidth
	lines := make([]string, 0, rows)

	if len(frame.Tiles) == 0 {
		lines = append(lines, dimStyle.Render(util.TruncateToWidth("No matches", width)))
		return lines
	}

	start := 0
	if frame.Cursor >= rows {
		start = frame.Cursor - rows + 1
	}
	for i := start; i < len(frame.Tiles) && len(lines) < rows; i++ {
		tile := frame.Tiles[i]

		prefix := "  "
		if i == frame.Cursor {
			prefix = "▸ "
		}
		reach := " " + util.FormatReach(tile.Reach)
		titleWidth := width - util.GetDisplayWidth(prefix) - util.GetDisplayWidth(reach)
		text := prefix + util.PadRight(util.TruncateToWidth(tile.Title, titleWidth), titleWidth) + reach

		style := lipgloss.NewStyle().Foreground(OpacityColor(tile.Opacity))
		if tile.Selected {
			style = style.Bold(true)
		}
		lines = append(lines, style.Render(util.TruncateToWidth(text, width)))
	}
	return lines
}

// panelLines renders the panel box, or blank lines when it does not fit
func (td *TerminalDisplay) panelLines() []string {
	rows := td.regions.PanelRows
	inner := td.regions.RightWidth - 4
	if rows < layout.PanelRows || inner < 1 {
		return make([]string, rows)
	}

	when := strings.TrimSpace(td.panel.Day + " " + td.panel.Time)
	content := strings.Join([]string{
		panelTitleStyle.Render(util.TruncateToWidth(td.panel.Title, inner)),
		util.TruncateToWidth(when, inner),
		dimStyle.Render(util.TruncateToWidth(td.panel.Background, inner)),
	}, "\n")

	box := panelBoxStyle.Width(td.regions.RightWidth - 2).Padding(0, 1).Render(content)
	return strings.Split(box, "\n")
}

func helpLines() []string {
	return []string{
		"Virus Feed - Help",
		"",
		"  type        Filter the feed by title",
		"  Backspace   Delete the last query character",
		"  Ctrl+U      Clear the query",
		"  ↑/↓         Move the tile cursor",
		"  Enter       Select the tile under the cursor",
		"  ?           Toggle this help",
		"  Esc/Ctrl+C  Quit",
		"",
		"Tile brightness follows reach; the selected tile is always brightest.",
	}
}
