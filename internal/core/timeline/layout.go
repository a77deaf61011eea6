package timeline

import (
	"math"

	"github.com/penwyp/go-virus-feed/internal/core/cache"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/core/scale"
)

const (
	markerSize   = 10
	labelOffsetX = 12
	labelOffsetY = 4
	mediaPadding = 0.5
)

// Layout places the records of one entity on a container of the given size.
// Records are ordered by elapsed time first; records without a finite
// elapsed time are counted in Skipped and not placed.
func Layout(records []model.DetailRecord, width, height float64, margins Margins) Scene {
	width, height = finiteOrZero(width), finiteOrZero(height)

	scene := Scene{
		Width:       width,
		Height:      height,
		Origin:      Point{X: margins.Left, Y: margins.Top},
		InnerWidth:  math.Max(0, width-margins.Left-margins.Right),
		InnerHeight: math.Max(0, height-margins.Top-margins.Bottom),
		MediaOrder:  []string{},
		Points:      []ScenePoint{},
		Path:        []PathCommand{},
		Markers:     []Rect{},
		Labels:      []Label{},
	}

	sorted := make([]model.DetailRecord, 0, len(records))
	for _, r := range records {
		if !r.HasElapsed() {
			scene.Skipped++
			continue
		}
		sorted = append(sorted, r)
	}
	if len(sorted) == 0 {
		return scene
	}
	cache.SortByElapsed(sorted)

	maxElapsed := sorted[len(sorted)-1].MinutesSinceFirst
	seen := make(map[string]struct{})
	for _, r := range sorted {
		if _, ok := seen[r.Media]; !ok {
			seen[r.Media] = struct{}{}
			scene.MediaOrder = append(scene.MediaOrder, r.Media)
		}
	}

	x := scale.NewLinear(0, maxElapsed, 0, scene.InnerWidth)
	y := scale.NewPoint(scene.MediaOrder, 0, scene.InnerHeight, mediaPadding)

	coords := make([]Point, 0, len(sorted))
	for _, r := range sorted {
		px := x.Map(r.MinutesSinceFirst)
		py, _ := y.Map(r.Media)

		scene.Points = append(scene.Points, ScenePoint{Record: r, X: px, Y: py})
		scene.Markers = append(scene.Markers, Rect{
			X:      px - markerSize/2,
			Y:      py - markerSize/2,
			Width:  markerSize,
			Height: markerSize,
		})
		scene.Labels = append(scene.Labels, Label{X: px + labelOffsetX, Y: py + labelOffsetY, Text: r.Label()})
		coords = append(coords, Point{X: px, Y: py})
	}
	scene.Path = MonotoneX(coords)

	return scene
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
