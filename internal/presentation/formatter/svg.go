package formatter

import (
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

// SVGSurface records drawing calls as SVG elements
type SVGSurface struct {
	width, height float64
	background    string
	elements      []string
}

// NewSVGSurface creates a surface of width x height. An empty background
// leaves the document transparent.
func NewSVGSurface(width, height float64, background string) *SVGSurface {
	return &SVGSurface{
		width:      finite(width),
		height:     finite(height),
		background: background,
	}
}

// Clear implements timeline.Surface
func (s *SVGSurface) Clear() {
	s.elements = nil
}

// Size implements timeline.Surface
func (s *SVGSurface) Size() (float64, float64) {
	return s.width, s.height
}

// DrawPath implements timeline.Surface
func (s *SVGSurface) DrawPath(cmds []timeline.PathCommand, style timeline.PathStyle) {
	if len(cmds) == 0 {
		return
	}
	var d strings.Builder
	for i, c := range cmds {
		if i > 0 {
			d.WriteByte(' ')
		}
		switch c.Op {
		case timeline.OpMoveTo:
			d.WriteString("M" + point(c.To))
		case timeline.OpLineTo:
			d.WriteString("L" + point(c.To))
		case timeline.OpCurveTo:
			d.WriteString("C" + point(c.C1) + " " + point(c.C2) + " " + point(c.To))
		}
	}
	s.elements = append(s.elements, `<path d="`+d.String()+`" fill="none" stroke="`+escape(style.Stroke)+
		`" stroke-width="`+num(style.StrokeWidth)+`" stroke-opacity="`+num(style.Opacity)+`"/>`)
}

// DrawRect implements timeline.Surface
func (s *SVGSurface) DrawRect(r timeline.Rect, style timeline.ShapeStyle) {
	s.elements = append(s.elements, `<rect x="`+num(r.X)+`" y="`+num(r.Y)+`" width="`+num(r.Width)+
		`" height="`+num(r.Height)+`" fill="`+escape(style.Fill)+`"/>`)
}

// DrawText implements timeline.Surface
func (s *SVGSurface) DrawText(x, y float64, text string, style timeline.TextStyle) {
	s.elements = append(s.elements, `<text x="`+num(x)+`" y="`+num(y)+`" fill="`+escape(style.Fill)+
		`" font-size="`+num(style.FontSize)+`" font-family="`+escape(style.FontFamily)+`">`+escape(text)+`</text>`)
}

// WriteTo writes the SVG document
func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + num(s.width) + `" height="` + num(s.height) +
		`" viewBox="0 0 ` + num(s.width) + ` ` + num(s.height) + `">` + "\n")
	if s.background != "" {
		b.WriteString(`<rect width="100%" height="100%" fill="` + escape(s.background) + `"/>` + "\n")
	}
	for _, e := range s.elements {
		b.WriteString(e + "\n")
	}
	b.WriteString("</svg>\n")

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func num(v float64) string {
	return strconv.FormatFloat(finite(v), 'f', -1, 64)
}

func point(p timeline.Point) string {
	return num(round2(p.X)) + "," + num(round2(p.Y))
}

// round2 keeps path data short
func round2(v float64) float64 {
	return math.Round(finite(v)*100) / 100
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
