package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/penwyp/go-virus-feed/internal/core/timeline"
	"github.com/penwyp/go-virus-feed/internal/presentation/feed"
	"github.com/penwyp/go-virus-feed/internal/presentation/formatter"
)

// Config contains configuration shared by the browse, render, shell and
// serve commands
type Config struct {
	// Dataset file or directory
	DataPath    string `json:"data" yaml:"data"`
	Concurrency int    `json:"concurrency" yaml:"concurrency"`

	// Image roots
	TileImageRoot       string `json:"tile_image_root" yaml:"tile_image_root"`
	BackgroundImageRoot string `json:"background_image_root" yaml:"background_image_root"`

	// Timeline drawing
	Margins timeline.Margins `json:"margins" yaml:"margins"`
	Theme   timeline.Theme   `json:"theme" yaml:"theme"`

	// Pixel size of one terminal cell for the terminal canvas
	CellWidth  float64 `json:"cell_width" yaml:"cell_width"`
	CellHeight float64 `json:"cell_height" yaml:"cell_height"`

	// Terminal size checks per second
	UIRefreshRate float64 `json:"ui_refresh_rate" yaml:"ui_refresh_rate"`

	// Default size of exported timelines
	ExportWidth  float64 `json:"export_width" yaml:"export_width"`
	ExportHeight float64 `json:"export_height" yaml:"export_height"`
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.DataPath == "" {
		c.DataPath = "csv/virus_media_viz_500.csv"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.TileImageRoot == "" {
		c.TileImageRoot = feed.DefaultTileImageRoot
	}
	if c.BackgroundImageRoot == "" {
		c.BackgroundImageRoot = feed.DefaultBackgroundImageRoot
	}
	if c.Margins == (timeline.Margins{}) {
		c.Margins = timeline.DefaultMargins
	}
	if c.Theme == (timeline.Theme{}) {
		c.Theme = timeline.DefaultTheme
	}
	if c.CellWidth == 0 {
		c.CellWidth = 8
	}
	if c.CellHeight == 0 {
		c.CellHeight = 16
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = 4
	}
	if c.ExportWidth == 0 {
		c.ExportWidth = 1200
	}
	if c.ExportHeight == 0 {
		c.ExportHeight = 600
	}
	if c.CellWidth < 0 || c.CellHeight < 0 || c.ExportWidth < 0 || c.ExportHeight < 0 {
		return fmt.Errorf("sizes must not be negative")
	}
	return formatter.CheckExportSize(c.ExportWidth, c.ExportHeight)
}

// RefreshInterval is the period between terminal size checks
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.UIRefreshRate)
}

// LoadConfigFile reads a config file. YAML is used for .yaml/.yml; .json
// and .jsonc accept comments and trailing commas.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".json", ".jsonc":
		standardized, err := hujson.Standardize(data)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := sonic.Unmarshal(standardized, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	return cfg, nil
}
