package browser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/testing/fixtures"
)

func newRefreshFixture(t *testing.T) (*fixtures.DatasetGenerator, *Config, *Pipeline) {
	t.Helper()
	gen := fixtures.NewDatasetGenerator(t.TempDir())
	path, err := gen.WriteCSV("viruses.csv", fixtures.SampleRows())
	require.NoError(t, err)

	config := &Config{DataPath: path}
	require.NoError(t, config.Validate())

	p := NewPipeline(OptionsFromConfig(config, nil, nil))
	p.Load(fixtures.SampleRecords())
	return gen, config, p
}

func TestRefreshReplaysQueryAndSelection(t *testing.T) {
	gen, config, prev := newRefreshFixture(t)
	prev.QueryChanged("f")
	require.NoError(t, prev.TileClicked(3))

	rows := append(fixtures.SampleRows(), fixtures.Row{
		EntityID: "4", MinutesSinceFirst: "0", Media: "tv", Time: "13:00", Day: "Thu",
		Reach: "3", Title: "Fungus", Image: "fungus.png",
	})
	_, err := gen.WriteCSV("viruses.csv", rows)
	require.NoError(t, err)

	rc := NewRefreshController(NewDataLoader(config), OptionsFromConfig(config, nil, nil))
	next, err := rc.Refresh(prev, config.DataPath)
	require.NoError(t, err)
	require.NotSame(t, prev, next)

	snap := next.Snapshot()
	assert.Equal(t, "f", snap.Query)
	assert.Len(t, snap.Tiles, 3)
	assert.Equal(t, model.EntityID(3), snap.Selected)
	assert.Equal(t, "Fever", snap.Panel.Title)

	// the previous pipeline keeps its records
	assert.Len(t, prev.Representatives(), 3)
	assert.Len(t, next.Representatives(), 4)
}

func TestRefreshDroppedSelection(t *testing.T) {
	gen, config, prev := newRefreshFixture(t)
	require.NoError(t, prev.TileClicked(3))

	_, err := gen.WriteCSV("viruses.csv", fixtures.SampleRows()[:5])
	require.NoError(t, err)

	rc := NewRefreshController(NewDataLoader(config), OptionsFromConfig(config, nil, nil))
	next, err := rc.Refresh(prev, config.DataPath)
	require.NoError(t, err)

	id, err := next.Selected()
	require.NoError(t, err)
	assert.Equal(t, model.EntityID(1), id)
}

func TestRefreshWithoutPrevious(t *testing.T) {
	_, config, _ := newRefreshFixture(t)

	rc := NewRefreshController(NewDataLoader(config), OptionsFromConfig(config, nil, nil))
	next, err := rc.Refresh(nil, config.DataPath)
	require.NoError(t, err)
	assert.Len(t, next.Snapshot().Tiles, 3)
}

func TestRefreshError(t *testing.T) {
	_, config, prev := newRefreshFixture(t)
	require.NoError(t, os.Remove(config.DataPath))

	rc := NewRefreshController(NewDataLoader(config), OptionsFromConfig(config, nil, nil))
	next, err := rc.Refresh(prev, config.DataPath)
	assert.Error(t, err)
	assert.Nil(t, next)
	assert.Len(t, prev.Snapshot().Tiles, 3)
}
