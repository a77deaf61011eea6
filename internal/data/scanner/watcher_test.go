package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-virus-feed/internal/testing/fixtures"
)

func TestFileWatcherReportsChanges(t *testing.T) {
	gen := fixtures.NewDatasetGenerator(t.TempDir())
	rows := fixtures.SampleRows()
	path, err := gen.WriteCSV("feed.csv", rows[:1])
	require.NoError(t, err)

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	_, err = gen.WriteCSV("feed.csv", rows)
	require.NoError(t, err)

	select {
	case event := <-fw.Events():
		assert.Equal(t, path, event.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestFileWatcherIgnoresOtherFiles(t *testing.T) {
	gen := fixtures.NewDatasetGenerator(t.TempDir())
	path, err := gen.WriteCSV("feed.csv", fixtures.SampleRows())
	require.NoError(t, err)

	fw, err := NewFileWatcher(path)
	require.NoError(t, err)
	defer fw.Close()

	_, err = gen.WriteCSV("other.csv", fixtures.SampleRows())
	require.NoError(t, err)

	select {
	case event := <-fw.Events():
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFileWatcherMissingPath(t *testing.T) {
	_, err := NewFileWatcher("/nonexistent/feed.csv")
	assert.Error(t, err)
}
