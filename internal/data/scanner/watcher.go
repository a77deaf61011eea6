package scanner

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/util"
)

// FileWatcher reports content changes of dataset files. Events for a file
// whose fingerprint did not change since the last event are dropped.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	events  chan model.FileEvent
	target  string // set when a single file is watched

	mu           sync.Mutex
	fingerprints map[string]string
}

// NewFileWatcher watches path, a dataset file or a directory tree of them.
func NewFileWatcher(path string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher:      watcher,
		events:       make(chan model.FileEvent, 100),
		fingerprints: make(map[string]string),
	}

	if err := fw.addPath(path); err != nil {
		watcher.Close()
		return nil, err
	}

	go fw.processEvents()

	return fw, nil
}

func (fw *FileWatcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		// Editors replace files on save, so watch the parent directory.
		fw.target = filepath.Clean(path)
		fw.remember(fw.target)
		return fw.watcher.Add(filepath.Dir(path))
	}

	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return fw.watcher.Add(p)
		}
		if IsDataset(p) {
			fw.remember(p)
		}
		return nil
	})
}

func (fw *FileWatcher) remember(path string) {
	fp, err := util.CalculateFileFingerprint(path)
	if err != nil {
		return
	}
	fw.mu.Lock()
	fw.fingerprints[path] = fp
	fw.mu.Unlock()
}

// changed updates the stored fingerprint and reports whether it moved
func (fw *FileWatcher) changed(path string) bool {
	fp, err := util.CalculateFileFingerprint(path)
	if err != nil {
		// Removed or unreadable; let the consumer decide.
		return true
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.fingerprints[path] == fp {
		return false
	}
	fw.fingerprints[path] = fp
	return true
}

func (fw *FileWatcher) processEvents() {
	defer close(fw.events)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !IsDataset(event.Name) {
				continue
			}
			if fw.target != "" && filepath.Clean(event.Name) != fw.target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !fw.changed(event.Name) {
				continue
			}
			fw.events <- model.FileEvent{
				Path:      event.Name,
				Operation: event.Op.String(),
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("File monitoring error: " + err.Error())
		}
	}
}

// Events returns the channel of dataset change events. It is closed after Close.
func (fw *FileWatcher) Events() <-chan model.FileEvent {
	return fw.events
}

// Close stops watching
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
