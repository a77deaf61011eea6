package timeline

import (
	"github.com/penwyp/go-virus-feed/internal/core/cache"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// Visualizer redraws the timeline of one entity onto a surface
type Visualizer struct {
	cache   *cache.MemoryCache
	surface Surface
	margins Margins
	theme   Theme
	last    Scene
}

// NewVisualizer creates a visualizer drawing records from c onto surface
func NewVisualizer(c *cache.MemoryCache, surface Surface, margins Margins, theme Theme) *Visualizer {
	return &Visualizer{
		cache:   c,
		surface: surface,
		margins: margins,
		theme:   theme,
	}
}

// Visualize clears the surface and draws the timeline of id. An id without
// records leaves the surface cleared.
func (v *Visualizer) Visualize(id model.EntityID) Scene {
	records := v.cache.Get(id)

	v.surface.Clear()
	width, height := v.surface.Size()

	scene := Layout(records, width, height, v.margins)
	scene.EntityID = id
	Draw(scene, v.surface, v.theme)

	if scene.Skipped > 0 {
		util.LogDebugf("Timeline: entity %d has %d records without elapsed time", id, scene.Skipped)
	}
	v.last = scene
	return scene
}

// Last returns the most recently drawn scene
func (v *Visualizer) Last() Scene {
	return v.last
}

// Draw emits scene onto surface: labels, then the path, then the markers.
func Draw(scene Scene, surface Surface, theme Theme) {
	if scene.Empty() {
		return
	}
	ox, oy := scene.Origin.X, scene.Origin.Y

	for _, l := range scene.Labels {
		surface.DrawText(ox+l.X, oy+l.Y, l.Text, theme.Label)
	}

	if len(scene.Path) > 0 {
		surface.DrawPath(Translate(scene.Path, ox, oy), theme.Path)
	}

	for _, m := range scene.Markers {
		surface.DrawRect(Rect{X: ox + m.X, Y: oy + m.Y, Width: m.Width, Height: m.Height}, theme.Marker)
	}
}

// Translate returns cmds shifted by dx, dy
func Translate(cmds []PathCommand, dx, dy float64) []PathCommand {
	out := make([]PathCommand, len(cmds))
	for i, c := range cmds {
		out[i] = PathCommand{
			Op: c.Op,
			C1: Point{X: c.C1.X + dx, Y: c.C1.Y + dy},
			C2: Point{X: c.C2.X + dx, Y: c.C2.Y + dy},
			To: Point{X: c.To.X + dx, Y: c.To.Y + dy},
		}
	}
	return out
}
