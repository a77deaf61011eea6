package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-virus-feed/internal/util"
)

// datasetExtensions are the file types the parser understands
var datasetExtensions = map[string]bool{
	".csv":    true,
	".jsonl":  true,
	".ndjson": true,
}

// IsDataset reports whether path has a dataset extension
func IsDataset(path string) bool {
	return datasetExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileScanner resolves a dataset location to the files to load
type FileScanner struct {
	baseDir string
}

// NewFileScanner creates a new FileScanner instance. baseDir may also be a
// single dataset file.
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{baseDir: baseDir}
}

// Scan returns the dataset files under the base path in lexical order. A
// base path naming a file is returned as is.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()

	info, err := os.Stat(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("dataset path %s: %w", s.baseDir, err)
	}
	if !info.IsDir() {
		return []string{s.baseDir}, nil
	}

	var files []string
	dirCount := 0
	err = filepath.Walk(s.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
			return nil
		}
		if info.IsDir() {
			dirCount++
			return nil
		}
		if IsDataset(path) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)

	util.LogDebug(fmt.Sprintf("Dataset scan completed: duration %v, scanned %d directories, found %d dataset files",
		time.Since(start), dirCount, len(files)))

	return files, err
}
