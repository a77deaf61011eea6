package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/util"
)

type TableFormatter struct {
	headers  []string
	maxTitle int
}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headers:  []string{"", "ID", "Title", "Reach", "Opacity", "Image"},
		maxTitle: 48,
	}
}

// Format writes tiles as a bordered table followed by a count row
func (f *TableFormatter) Format(w io.Writer, tiles []feed.Tile) error {
	rows := make([][]string, 0, len(tiles))
	for _, tile := range tiles {
		rows = append(rows, f.rowValues(tile))
	}

	widths := f.calculateColumnWidths(rows)

	var b strings.Builder
	f.writeBorder(&b, widths, "top")
	f.writeRow(&b, f.headers, widths)
	f.writeBorder(&b, widths, "middle")
	for _, row := range rows {
		f.writeRow(&b, row, widths)
	}
	f.writeBorder(&b, widths, "middle")
	f.writeRow(&b, []string{"", "", fmt.Sprintf("%d viruses", len(tiles)), "", "", ""}, widths)
	f.writeBorder(&b, widths, "bottom")

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TableFormatter) rowValues(tile feed.Tile) []string {
	mark := ""
	if tile.Selected {
		mark = "*"
	}
	return []string{
		mark,
		fmt.Sprintf("%d", tile.EntityID),
		util.TruncateToWidth(tile.Title, f.maxTitle),
		util.FormatReach(tile.Reach),
		util.FormatOpacity(tile.Opacity),
		tile.ImageRef,
	}
}

// calculateColumnWidths determines the display width of each column
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	// Room for the count row
	if widths[2] < len("000 viruses") {
		widths[2] = len("000 viruses")
	}
	return widths
}

// writeBorder writes table borders (top, middle, bottom)
func (f *TableFormatter) writeBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2)) // +2 for padding spaces
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right + "\n")
}

// writeRow writes a row; text columns are left-aligned, numbers right-aligned
func (f *TableFormatter) writeRow(b *strings.Builder, values []string, widths []int) {
	b.WriteString("│")
	for i, value := range values {
		pad := strings.Repeat(" ", widths[i]-util.GetDisplayWidth(value))
		switch i {
		case 1, 3, 4:
			b.WriteString(" " + pad + value + " │")
		default:
			b.WriteString(" " + value + pad + " │")
		}
	}
	b.WriteString("\n")
}
