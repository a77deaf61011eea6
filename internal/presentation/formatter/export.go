package formatter

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/natefinch/atomic"
	"golang.org/x/image/font"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

// MaxExportSide bounds both sides of an exported image, in pixels
const MaxExportSide = 8000

// CheckExportSize reports an error when a side is not a finite number in
// [0, MaxExportSide]
func CheckExportSize(width, height float64) error {
	for _, side := range [...]struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(side.v) || side.v < 0 || side.v > MaxExportSide {
			return fmt.Errorf("export %s must be in 0..%d, got %g", side.name, MaxExportSide, side.v)
		}
	}
	return nil
}

// WriteSVG draws scene onto a fresh SVG surface of the scene's size and writes it
func WriteSVG(w io.Writer, scene timeline.Scene, theme timeline.Theme) error {
	surface := NewSVGSurface(scene.Width, scene.Height, theme.Background)
	timeline.Draw(scene, surface, theme)
	_, err := surface.WriteTo(w)
	return err
}

// WritePNG draws scene onto a fresh PNG surface of the scene's size and writes it
func WritePNG(w io.Writer, scene timeline.Scene, theme timeline.Theme, face font.Face) error {
	surface := NewPNGSurface(int(finite(scene.Width)), int(finite(scene.Height)), theme.Background, face)
	timeline.Draw(scene, surface, theme)
	return surface.EncodePNG(w)
}

// Exporter renders scenes in one format
type Exporter struct {
	Format Format
	Theme  timeline.Theme
	Face   font.Face
}

// Write renders scene to w
func (e Exporter) Write(w io.Writer, scene timeline.Scene) error {
	if err := CheckExportSize(scene.Width, scene.Height); err != nil {
		return err
	}
	switch e.Format {
	case FormatSVG:
		return WriteSVG(w, scene, e.Theme)
	case FormatPNG:
		return WritePNG(w, scene, e.Theme, e.Face)
	case FormatJSON:
		return WriteJSON(w, scene, e.Theme)
	}
	return fmt.Errorf("unknown format %q", e.Format)
}

// WriteFile renders scene and replaces path atomically, so readers never
// see a partly written file
func (e Exporter) WriteFile(path string, scene timeline.Scene) error {
	var buf bytes.Buffer
	if err := e.Write(&buf, scene); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
