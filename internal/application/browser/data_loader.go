package browser

import (
	"fmt"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/data/parser"
	"github.com/penwyp/go-virus-feed/internal/data/scanner"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// DataLoader resolves the dataset location and parses its files
type DataLoader struct {
	config  *Config
	scanner *scanner.FileScanner
	parser  *parser.Parser
}

// NewDataLoader creates a new DataLoader instance
func NewDataLoader(config *Config) *DataLoader {
	return &DataLoader{
		config:  config,
		scanner: scanner.NewFileScanner(config.DataPath),
		parser:  parser.NewParser(config.Concurrency),
	}
}

// Load returns every detail record of the dataset, files in lexical order
func (dl *DataLoader) Load() ([]model.DetailRecord, error) {
	files, err := dl.scanner.Scan()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dataset files under %s", dl.config.DataPath)
	}

	details, err := dl.parser.Load(files)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return details, nil
}

// Reload drops the parsed copy of a changed file and loads the dataset again
func (dl *DataLoader) Reload(changed string) ([]model.DetailRecord, error) {
	util.LogDebug(fmt.Sprintf("Reloading dataset after change of %s", changed))
	dl.parser.Invalidate(changed)
	return dl.Load()
}
