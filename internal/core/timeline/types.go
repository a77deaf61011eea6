package timeline

import "github.com/penwyp/go-virus-feed/internal/core/model"

// Point is a position in drawing units
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PathOp is the kind of a path command
type PathOp int

const (
	OpMoveTo PathOp = iota
	OpLineTo
	OpCurveTo
)

// PathCommand is one step of a path. C1 and C2 are the control points of a
// cubic Bezier and are only set for OpCurveTo.
type PathCommand struct {
	Op PathOp `json:"op"`
	C1 Point  `json:"c1"`
	C2 Point  `json:"c2"`
	To Point  `json:"to"`
}

// Rect is an axis-aligned rectangle with its top-left corner at X, Y.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label is a text anchored at its baseline start
type Label struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

// Margins are kept free around the drawable area
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// DefaultMargins leave room on the right for the point labels.
var DefaultMargins = Margins{Top: 20, Right: 200, Bottom: 20, Left: 150}

// ScenePoint is a record placed on the drawable area
type ScenePoint struct {
	Record model.DetailRecord `json:"record"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
}

// Scene is the computed timeline of one entity. Coordinates of points, path,
// markers and labels are relative to Origin.
type Scene struct {
	EntityID    model.EntityID `json:"entity_id"`
	Width       float64        `json:"width"`
	Height      float64        `json:"height"`
	Origin      Point          `json:"origin"`
	InnerWidth  float64        `json:"inner_width"`
	InnerHeight float64        `json:"inner_height"`
	MediaOrder  []string       `json:"media_order"`
	Points      []ScenePoint   `json:"points"`
	Path        []PathCommand  `json:"path"`
	Markers     []Rect         `json:"markers"`
	Labels      []Label        `json:"labels"`
	Skipped     int            `json:"skipped"`
}

// Empty reports whether the scene has nothing to draw
func (s Scene) Empty() bool {
	return len(s.Points) == 0
}

// PathStyle describes how the connecting path is stroked
type PathStyle struct {
	Stroke      string  `json:"stroke" yaml:"stroke"`
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`
	Opacity     float64 `json:"opacity" yaml:"opacity"`
}

// ShapeStyle describes how markers are filled
type ShapeStyle struct {
	Fill        string  `json:"fill" yaml:"fill"`
	StrokeWidth float64 `json:"stroke_width" yaml:"stroke_width"`
}

// TextStyle describes label text
type TextStyle struct {
	Fill       string  `json:"fill" yaml:"fill"`
	FontSize   float64 `json:"font_size" yaml:"font_size"`
	FontFamily string  `json:"font_family" yaml:"font_family"`
}

// Theme groups the styles used to draw a scene
type Theme struct {
	Background string     `json:"background" yaml:"background"`
	Path       PathStyle  `json:"path" yaml:"path"`
	Marker     ShapeStyle `json:"marker" yaml:"marker"`
	Label      TextStyle  `json:"label" yaml:"label"`
}

// DefaultTheme draws white on a dark background
var DefaultTheme = Theme{
	Background: "#111111",
	Path:       PathStyle{Stroke: "#ffffff", StrokeWidth: 3, Opacity: 0.3},
	Marker:     ShapeStyle{Fill: "#ffffff", StrokeWidth: 1},
	Label:      TextStyle{Fill: "#ffffff", FontSize: 14, FontFamily: "IBM Plex Serif"},
}

// Surface is a 2D drawing target. Coordinates are absolute within the
// surface's Size.
type Surface interface {
	Clear()
	Size() (width, height float64)
	DrawPath(cmds []PathCommand, style PathStyle)
	DrawRect(r Rect, style ShapeStyle)
	DrawText(x, y float64, text string, style TextStyle)
}
