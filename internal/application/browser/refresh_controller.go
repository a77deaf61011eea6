package browser

import (
	"fmt"
	"sync"

	"github.com/penwyp/go-virus-feed/internal/util"
)

// RefreshController starts a new pipeline after a dataset file changed.
// A pipeline never sees its records change; instead the new one is loaded
// once and replays the query and selection of the previous one.
type RefreshController struct {
	dataLoader *DataLoader
	options    Options

	refreshMutex sync.Mutex // Prevent concurrent refreshes
}

// NewRefreshController creates a new RefreshController instance. New
// pipelines are built with opts.
func NewRefreshController(dataLoader *DataLoader, opts Options) *RefreshController {
	return &RefreshController{dataLoader: dataLoader, options: opts}
}

// Refresh reloads the dataset after a change of changed and returns a new
// pipeline. prev is only read; it may be nil. On error prev stays valid.
func (rc *RefreshController) Refresh(prev *Pipeline, changed string) (*Pipeline, error) {
	rc.refreshMutex.Lock()
	defer rc.refreshMutex.Unlock()

	details, err := rc.dataLoader.Reload(changed)
	if err != nil {
		return nil, fmt.Errorf("failed to reload dataset: %w", err)
	}

	next := NewPipeline(rc.options)
	next.Load(details)

	if prev != nil {
		if query := prev.Snapshot().Query; query != "" {
			next.QueryChanged(query)
		}
		if selected, err := prev.Selected(); err == nil {
			if err := next.TileClicked(selected); err != nil {
				util.LogDebugf("Virus %d is not in the reloaded feed", selected)
			}
		}
	}

	util.LogInfof("Reloaded %d records after change of %s", len(details), changed)
	return next, nil
}
