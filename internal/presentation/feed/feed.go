package feed

import (
	"path"

	"github.com/penwyp/go-virus-feed/internal/core/model"
)

// Image roots. Tiles and the panel background resolve image references
// against different roots, even though both default to the same directory.
const (
	DefaultTileImageRoot       = "images_2/"
	DefaultBackgroundImageRoot = "images_2/"
)

// SelectedOpacity overrides the reach encoding for the selected tile
const SelectedOpacity = 1.0

// Opacity maps a reach value to tile opacity. Values outside the table,
// including NaN and infinities, fall back to 0.5.
func Opacity(reach float64) float64 {
	switch reach {
	case 5:
		return 1.0
	case 4:
		return 0.9
	case 3:
		return 0.7
	case 2:
		return 0.5
	default:
		return 0.5
	}
}

// Tile is one rendered representative record
type Tile struct {
	EntityID model.EntityID `json:"virus_id"`
	Title    string         `json:"title"`
	ImageRef string         `json:"image"`
	Reach    float64        `json:"num_rep"`
	Opacity  float64        `json:"opacity"`
	Selected bool           `json:"selected"`
}

// Feed holds the tiles of the current filtered view
type Feed struct {
	imageRoot string
	tiles     []Tile
	index     map[model.EntityID]int
}

// NewFeed creates an empty feed. An empty imageRoot uses DefaultTileImageRoot.
func NewFeed(imageRoot string) *Feed {
	if imageRoot == "" {
		imageRoot = DefaultTileImageRoot
	}
	return &Feed{
		imageRoot: imageRoot,
		tiles:     []Tile{},
		index:     make(map[model.EntityID]int),
	}
}

// Render replaces every tile with one tile per record of view.
func (f *Feed) Render(view []model.DetailRecord) {
	f.tiles = make([]Tile, 0, len(view))
	f.index = make(map[model.EntityID]int, len(view))

	for _, rec := range view {
		f.index[rec.EntityID] = len(f.tiles)
		f.tiles = append(f.tiles, Tile{
			EntityID: rec.EntityID,
			Title:    rec.Title,
			ImageRef: ResolveImage(f.imageRoot, rec.Image),
			Reach:    rec.Reach,
			Opacity:  Opacity(rec.Reach),
		})
	}
}

// Click highlights the tile of id. It reports false when no tile has id,
// in which case the tiles are left untouched.
func (f *Feed) Click(id model.EntityID) bool {
	if _, ok := f.index[id]; !ok {
		return false
	}
	f.Highlight(id)
	return true
}

// Highlight resets every tile to its reach opacity, then raises the tile of
// id to SelectedOpacity.
func (f *Feed) Highlight(id model.EntityID) {
	for i := range f.tiles {
		f.tiles[i].Opacity = Opacity(f.tiles[i].Reach)
		f.tiles[i].Selected = false
	}
	if i, ok := f.index[id]; ok {
		f.tiles[i].Opacity = SelectedOpacity
		f.tiles[i].Selected = true
	}
}

// Tiles returns a copy of the rendered tiles in view order
func (f *Feed) Tiles() []Tile {
	out := make([]Tile, len(f.tiles))
	copy(out, f.tiles)
	return out
}

// Len returns the number of rendered tiles
func (f *Feed) Len() int {
	return len(f.tiles)
}

// At returns the tile at position i of the view
func (f *Feed) At(i int) (Tile, bool) {
	if i < 0 || i >= len(f.tiles) {
		return Tile{}, false
	}
	return f.tiles[i], true
}

// ResolveImage joins an image reference onto root. Empty references stay empty.
func ResolveImage(root, ref string) string {
	if ref == "" {
		return ""
	}
	return path.Join(root, ref)
}
