package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
)

// Format names an export format of a timeline
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name in any case
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want svg, png or json)", s)
}

// FeedFormatter writes a list of feed tiles
type FeedFormatter interface {
	Format(w io.Writer, tiles []feed.Tile) error
}

// NewFeedFormatter returns the formatter for output: table, csv or json
func NewFeedFormatter(output string) (FeedFormatter, error) {
	switch strings.ToLower(output) {
	case "", "table":
		return NewTableFormatter(), nil
	case "csv":
		return NewCSVFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	}
	return nil, fmt.Errorf("unknown output %q (want table, csv or json)", output)
}

// TimelineDocument is the JSON form of an exported timeline
type TimelineDocument struct {
	Scene timeline.Scene `json:"scene"`
	Theme timeline.Theme `json:"theme"`
}
