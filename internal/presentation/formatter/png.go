package formatter

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

// PNGSurface rasterizes drawing calls with gg
type PNGSurface struct {
	dc         *gg.Context
	background color.Color
	face       font.Face
}

// NewPNGSurface creates a width x height surface. face may be nil, in which
// case labels use the built-in bitmap font.
func NewPNGSurface(width, height int, background string, face font.Face) *PNGSurface {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if face == nil {
		face = basicfont.Face7x13
	}
	s := &PNGSurface{
		dc:         gg.NewContext(width, height),
		background: parseHexColor(background, 1),
		face:       face,
	}
	s.Clear()
	return s
}

// LoadFontFace loads a TrueType font for labels
func LoadFontFace(path string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

// Clear implements timeline.Surface
func (s *PNGSurface) Clear() {
	s.dc.SetColor(s.background)
	s.dc.Clear()
}

// Size implements timeline.Surface
func (s *PNGSurface) Size() (float64, float64) {
	return float64(s.dc.Width()), float64(s.dc.Height())
}

// DrawPath implements timeline.Surface
func (s *PNGSurface) DrawPath(cmds []timeline.PathCommand, style timeline.PathStyle) {
	if len(cmds) == 0 {
		return
	}
	s.dc.NewSubPath()
	for _, c := range cmds {
		switch c.Op {
		case timeline.OpMoveTo:
			s.dc.MoveTo(c.To.X, c.To.Y)
		case timeline.OpLineTo:
			s.dc.LineTo(c.To.X, c.To.Y)
		case timeline.OpCurveTo:
			s.dc.CubicTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.To.X, c.To.Y)
		}
	}
	s.dc.SetColor(parseHexColor(style.Stroke, style.Opacity))
	s.dc.SetLineWidth(style.StrokeWidth)
	s.dc.Stroke()
}

// DrawRect implements timeline.Surface
func (s *PNGSurface) DrawRect(r timeline.Rect, style timeline.ShapeStyle) {
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.SetColor(parseHexColor(style.Fill, 1))
	s.dc.Fill()
}

// DrawText implements timeline.Surface. y is the text baseline.
func (s *PNGSurface) DrawText(x, y float64, text string, style timeline.TextStyle) {
	s.dc.SetFontFace(s.face)
	s.dc.SetColor(parseHexColor(style.Fill, 1))
	s.dc.DrawString(text, x, y)
}

// EncodePNG writes the image as PNG
func (s *PNGSurface) EncodePNG(w io.Writer) error {
	return s.dc.EncodePNG(w)
}

// parseHexColor reads #rgb or #rrggbb. Anything else is black.
func parseHexColor(hex string, opacity float64) color.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}

	var r, g, b uint64
	if len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			r, g, b = v>>16&0xff, v>>8&0xff, v&0xff
		}
	}

	a := finite(opacity)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a*255 + 0.5)}
}
