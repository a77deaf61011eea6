package browser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
)

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "csv/virus_media_viz_500.csv", cfg.DataPath)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "images_2/", cfg.TileImageRoot)
	assert.Equal(t, "images_2/", cfg.BackgroundImageRoot)
	assert.Equal(t, timeline.DefaultMargins, cfg.Margins)
	assert.Equal(t, timeline.DefaultTheme, cfg.Theme)
	assert.Equal(t, 8.0, cfg.CellWidth)
	assert.Equal(t, 16.0, cfg.CellHeight)
	assert.Equal(t, 1200.0, cfg.ExportWidth)
	assert.Equal(t, 600.0, cfg.ExportHeight)
	assert.Equal(t, 250*time.Millisecond, cfg.RefreshInterval())
}

func TestConfigValidateKeepsValues(t *testing.T) {
	cfg := &Config{
		DataPath:      "feed.csv",
		Margins:       timeline.Margins{Top: 1, Right: 2, Bottom: 3, Left: 4},
		ExportWidth:   640,
		UIRefreshRate: 2,
	}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "feed.csv", cfg.DataPath)
	assert.Equal(t, timeline.Margins{Top: 1, Right: 2, Bottom: 3, Left: 4}, cfg.Margins)
	assert.Equal(t, 640.0, cfg.ExportWidth)
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshInterval())
}

func TestConfigValidateRejectsNegative(t *testing.T) {
	assert.Error(t, (&Config{Concurrency: -1}).Validate())
	assert.Error(t, (&Config{ExportWidth: -5}).Validate())
	assert.Error(t, (&Config{ExportWidth: 100000}).Validate())
	assert.Error(t, (&Config{ExportHeight: 8001}).Validate())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
data: data/feed.csv
tile_image_root: thumbs/
margins:
  top: 10
  right: 100
  bottom: 10
  left: 50
`), 0644))

	cfg, err := LoadConfigFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "data/feed.csv", cfg.DataPath)
	assert.Equal(t, "thumbs/", cfg.TileImageRoot)
	assert.Equal(t, timeline.Margins{Top: 10, Right: 100, Bottom: 10, Left: 50}, cfg.Margins)

	jsoncPath := filepath.Join(dir, "config.jsonc")
	require.NoError(t, os.WriteFile(jsoncPath, []byte(`{
		// exported timelines
		"export_width": 800,
		"export_height": 400,
		"background_image_root": "bg/",
	}`), 0644))

	cfg, err = LoadConfigFile(jsoncPath)
	require.NoError(t, err)
	assert.Equal(t, 800.0, cfg.ExportWidth)
	assert.Equal(t, 400.0, cfg.ExportHeight)
	assert.Equal(t, "bg/", cfg.BackgroundImageRoot)
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("data = 1"), 0644))
	_, err = LoadConfigFile(tomlPath)
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte("{"), 0644))
	_, err = LoadConfigFile(badPath)
	assert.Error(t, err)
}
