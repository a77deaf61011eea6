package browser

import (
	"errors"
	"fmt"

	"github.com/penwyp/go-virus-feed/internal/core/cache"
	"github.com/penwyp/go-virus-feed/internal/core/entity"
	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/core/query"
	"github.com/penwyp/go-virus-feed/internal/core/selection"
	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var (
	// ErrEmptyDataset is returned by operations that need a selected entity
	// when the dataset has no records
	ErrEmptyDataset = errors.New("dataset has no records")
	// ErrUnknownEntity is returned when an entity has no tile in the feed
	ErrUnknownEntity = errors.New("entity not in feed")
)

// Options configures a Pipeline
type Options struct {
	Surface             timeline.Surface
	Panel               Panel
	Margins             timeline.Margins
	Theme               timeline.Theme
	TileImageRoot       string
	BackgroundImageRoot string
}

// OptionsFromConfig builds pipeline options from a validated config
func OptionsFromConfig(cfg *Config, surface timeline.Surface, panel Panel) Options {
	return Options{
		Surface:             surface,
		Panel:               panel,
		Margins:             cfg.Margins,
		Theme:               cfg.Theme,
		TileImageRoot:       cfg.TileImageRoot,
		BackgroundImageRoot: cfg.BackgroundImageRoot,
	}
}

// Snapshot is a read-only copy of the pipeline state
type Snapshot struct {
	Query        string         `json:"query"`
	Tiles        []feed.Tile    `json:"tiles"`
	Selected     model.EntityID `json:"selected"`
	HasSelection bool           `json:"has_selection"`
	Panel        PanelState     `json:"panel"`
	Scene        timeline.Scene `json:"scene"`
}

// Pipeline wires the reducer, filter, feed, selection, panel and timeline.
// It is not safe for concurrent use; one goroutine owns it.
type Pipeline struct {
	details []model.DetailRecord
	reps    []model.DetailRecord
	repByID map[model.EntityID]model.DetailRecord
	view    []model.DetailRecord
	query   string

	cache      *cache.MemoryCache
	selection  *selection.State
	feed       *feed.Feed
	visualizer *timeline.Visualizer
	surface    timeline.Surface
	panel      Panel
	panelState *PanelState

	margins        timeline.Margins
	theme          timeline.Theme
	backgroundRoot string
}

// NewPipeline creates a pipeline drawing onto opts.Surface
func NewPipeline(opts Options) *Pipeline {
	if opts.Margins == (timeline.Margins{}) {
		opts.Margins = timeline.DefaultMargins
	}
	if opts.Theme == (timeline.Theme{}) {
		opts.Theme = timeline.DefaultTheme
	}
	if opts.BackgroundImageRoot == "" {
		opts.BackgroundImageRoot = feed.DefaultBackgroundImageRoot
	}
	if opts.Surface == nil {
		opts.Surface = nullSurface{}
	}

	state := &PanelState{}
	var panel Panel = state
	if opts.Panel != nil {
		panel = panels{state, opts.Panel}
	}

	p := &Pipeline{
		repByID:        make(map[model.EntityID]model.DetailRecord),
		cache:          cache.NewMemoryCache(nil),
		selection:      selection.NewState(),
		feed:           feed.NewFeed(opts.TileImageRoot),
		surface:        opts.Surface,
		panel:          panel,
		panelState:     state,
		margins:        opts.Margins,
		theme:          opts.Theme,
		backgroundRoot: opts.BackgroundImageRoot,
	}
	p.visualizer = timeline.NewVisualizer(p.cache, opts.Surface, opts.Margins, opts.Theme)

	p.selection.OnChange(p.feed.Highlight)
	p.selection.OnChange(p.updatePanel)
	p.selection.OnChange(func(id model.EntityID) { p.visualizer.Visualize(id) })

	return p
}

// Load ingests the detail records, renders the full feed and selects the
// first entity. An empty dataset leaves nothing selected.
func (p *Pipeline) Load(details []model.DetailRecord) {
	p.details = details
	p.reps = entity.Reduce(details)
	p.repByID = make(map[model.EntityID]model.DetailRecord, len(p.reps))
	for _, rep := range p.reps {
		p.repByID[rep.EntityID] = rep
	}
	p.cache = cache.NewMemoryCache(details)
	p.visualizer = timeline.NewVisualizer(p.cache, p.surface, p.margins, p.theme)

	p.query = ""
	p.view = p.reps
	p.feed.Render(p.view)

	util.LogInfo(fmt.Sprintf("Pipeline loaded %d records for %d entities", len(details), len(p.reps)))

	if len(p.reps) > 0 {
		p.selection.Select(p.reps[0].EntityID)
	}
}

// QueryChanged filters the feed by q. A non-empty result selects its first
// entity; an empty result only clears the feed.
func (p *Pipeline) QueryChanged(q string) {
	p.query = q
	p.view = query.Filter(p.reps, q)
	p.feed.Render(p.view)

	if len(p.view) == 0 {
		util.LogDebug(fmt.Sprintf("Query %q matched nothing", q))
		return
	}
	p.selection.Select(p.view[0].EntityID)
}

// TileClicked selects the entity of a rendered tile. It returns
// ErrUnknownEntity when no tile has id.
func (p *Pipeline) TileClicked(id model.EntityID) error {
	if !p.feed.Click(id) {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	p.selection.Select(id)
	return nil
}

// Redraw recomputes the timeline of the current selection, for example
// after the surface was resized.
func (p *Pipeline) Redraw() timeline.Scene {
	if !p.selection.Initialized() {
		return timeline.Scene{}
	}
	return p.visualizer.Visualize(p.selection.Current())
}

// Selected returns the current entity or ErrEmptyDataset when nothing was
// ever selected
func (p *Pipeline) Selected() (model.EntityID, error) {
	if !p.selection.Initialized() {
		return 0, ErrEmptyDataset
	}
	return p.selection.Current(), nil
}

// Representatives returns the first record of every entity
func (p *Pipeline) Representatives() []model.DetailRecord {
	return p.reps
}

// View returns the filtered representatives of the current query
func (p *Pipeline) View() []model.DetailRecord {
	return p.view
}

// Layout computes the timeline of the current selection for a container of
// width x height without touching the surface
func (p *Pipeline) Layout(width, height float64) (timeline.Scene, error) {
	id, err := p.Selected()
	if err != nil {
		return timeline.Scene{}, err
	}
	scene := timeline.Layout(p.cache.Get(id), width, height, p.margins)
	scene.EntityID = id
	return scene, nil
}

// Theme returns the theme the timeline is drawn with
func (p *Pipeline) Theme() timeline.Theme {
	return p.theme
}

// Snapshot copies the current state
func (p *Pipeline) Snapshot() Snapshot {
	return Snapshot{
		Query:        p.query,
		Tiles:        p.feed.Tiles(),
		Selected:     p.selection.Current(),
		HasSelection: p.selection.Initialized(),
		Panel:        *p.panelState,
		Scene:        p.visualizer.Last(),
	}
}

func (p *Pipeline) updatePanel(id model.EntityID) {
	rep, ok := p.repByID[id]
	if !ok {
		return
	}
	p.panel.SetField(model.FieldTitle, rep.Title)
	p.panel.SetField(model.FieldDay, rep.Day)
	p.panel.SetField(model.FieldTime, rep.Time)
	p.panel.SetBackground(feed.ResolveImage(p.backgroundRoot, rep.Image))
}

// nullSurface has no area and discards drawing
type nullSurface struct{}

func (nullSurface) Clear() {}
func (nullSurface) Size() (float64, float64) { return 0, 0 }
func (nullSurface) DrawPath([]timeline.PathCommand, timeline.PathStyle) {}
func (nullSurface) DrawRect(timeline.Rect, timeline.ShapeStyle) {}
func (nullSurface) DrawText(float64, float64, string, timeline.TextStyle) {}
