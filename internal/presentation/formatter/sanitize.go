package formatter

import (
	"math"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
)

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SanitizeScene returns a copy of scene whose numbers are all finite, so
// it can be encoded as JSON
func SanitizeScene(scene timeline.Scene) timeline.Scene {
	out := scene
	out.Points = make([]timeline.ScenePoint, len(scene.Points))
	for i, p := range scene.Points {
		out.Points[i] = timeline.ScenePoint{Record: sanitizeRecord(p.Record), X: finite(p.X), Y: finite(p.Y)}
	}
	if out.MediaOrder == nil {
		out.MediaOrder = []string{}
	}
	if out.Path == nil {
		out.Path = []timeline.PathCommand{}
	}
	if out.Markers == nil {
		out.Markers = []timeline.Rect{}
	}
	if out.Labels == nil {
		out.Labels = []timeline.Label{}
	}
	return out
}

func sanitizeRecord(r model.DetailRecord) model.DetailRecord {
	r.MinutesSinceFirst = finite(r.MinutesSinceFirst)
	r.Reach = finite(r.Reach)
	return r
}

// SanitizeTiles returns a copy of tiles with missing reach written as 0
func SanitizeTiles(tiles []feed.Tile) []feed.Tile {
	out := make([]feed.Tile, len(tiles))
	for i, t := range tiles {
		t.Reach = finite(t.Reach)
		t.Opacity = finite(t.Opacity)
		out[i] = t
	}
	return out
}
