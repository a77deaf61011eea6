package formatter

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes tiles as an indented JSON array
func (f *JSONFormatter) Format(w io.Writer, tiles []feed.Tile) error {
	return writeIndented(w, SanitizeTiles(tiles))
}

// WriteJSON writes a scene and its theme as an indented JSON document.
// Non-finite coordinates are written as 0, since JSON has no NaN.
func WriteJSON(w io.Writer, scene timeline.Scene, theme timeline.Theme) error {
	return writeIndented(w, TimelineDocument{Scene: SanitizeScene(scene), Theme: theme})
}

func writeIndented(w io.Writer, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
