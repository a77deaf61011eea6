package layout

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/penwyp/go-virus-feed/internal/util"
)

// Fixed parts of the screen
const (
	HeaderRows    = 2 // search bar and separator
	FooterRows    = 1 // status line
	PanelRows     = 5 // bordered title/day/time box
	MinFeedWidth  = 20
	MaxFeedWidth  = 40
	ColumnGap     = 1
	fallbackCols  = 80
	fallbackRows  = 24
	minUsableCols = 20
)

// Sizer splits a terminal of Width x Height cells into screen regions
type Sizer struct {
	Width  int
	Height int
}

// Regions are the cell sizes of the screen parts
type Regions struct {
	FeedWidth    int
	FeedRows     int
	RightWidth   int
	PanelRows    int
	TimelineCols int
	TimelineRows int
}

// NewSizer creates a sizer for a terminal of width x height cells
func NewSizer(width, height int) *Sizer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Sizer{Width: width, Height: height}
}

// TerminalSize returns the size of the terminal on stdout, or 80x24 when
// stdout is not a terminal
func TerminalSize() (cols, rows int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallbackCols, fallbackRows
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols < minUsableCols || rows <= 0 {
		util.LogDebugf("Terminal size unavailable (%dx%d, %v), using fallback", cols, rows, err)
		return fallbackCols, fallbackRows
	}
	return cols, rows
}

// Regions computes the region sizes. Regions that do not fit get zero size.
func (s *Sizer) Regions() Regions {
	body := s.Height - HeaderRows - FooterRows
	if body < 0 {
		body = 0
	}

	feedWidth := s.Width / 3
	if feedWidth < MinFeedWidth {
		feedWidth = MinFeedWidth
	}
	if feedWidth > MaxFeedWidth {
		feedWidth = MaxFeedWidth
	}
	if feedWidth > s.Width {
		feedWidth = s.Width
	}

	right := s.Width - feedWidth - ColumnGap
	if right < 0 {
		right = 0
	}

	panelRows := PanelRows
	if panelRows > body {
		panelRows = body
	}

	return Regions{
		FeedWidth:    feedWidth,
		FeedRows:     body,
		RightWidth:   right,
		PanelRows:    panelRows,
		TimelineCols: right,
		TimelineRows: body - panelRows,
	}
}

// PadString pads a string to a specific display width, handling wide runes correctly
func (s *Sizer) PadString(text string, width int, leftAlign bool) string {
	actualWidth := runewidth.StringWidth(text)
	if actualWidth >= width {
		return text
	}

	padding := strings.Repeat(" ", width-actualWidth)
	if leftAlign {
		return text + padding
	}
	return padding + text
}
