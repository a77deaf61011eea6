package formatter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/util"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format writes tiles as CSV with a header row
func (f *CSVFormatter) Format(out io.Writer, tiles []feed.Tile) error {
	w := csv.NewWriter(out)

	headers := []string{"virus_id", "title", "num_rep", "opacity", "selected", "image"}
	if err := w.Write(headers); err != nil {
		return err
	}

	for _, tile := range tiles {
		record := []string{
			fmt.Sprintf("%d", tile.EntityID),
			tile.Title,
			util.FormatReach(tile.Reach),
			util.FormatOpacity(tile.Opacity),
			fmt.Sprintf("%t", tile.Selected),
			tile.ImageRef,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
