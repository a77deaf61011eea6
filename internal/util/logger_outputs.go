package util

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
)

const logTimeLayout = "2006/01/02 15:04:05"

// formatEntry renders entry as one line. Text fields are sorted by key.
func formatEntry(entry LogEntry, format LogFormat) (string, error) {
	if format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", entry.Timestamp.Format(logTimeLayout), entry.Level, entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for k := range entry.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Fields[k])
	}
	return b.String(), nil
}

// streamOutput writes one line per entry to w
type streamOutput struct {
	mu     sync.Mutex
	w      io.Writer
	format LogFormat
	closer io.Closer
}

func (s *streamOutput) Write(entry LogEntry) error {
	line, err := formatEntry(entry, s.format)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = io.WriteString(s.w, line+"\n")
	return err
}

func (s *streamOutput) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewConsoleOutput writes to w and never closes it
func NewConsoleOutput(w io.Writer, format LogFormat) Output {
	return &streamOutput{w: w, format: format}
}

// NewFileOutput appends to the file at path
func NewFileOutput(path string, format LogFormat) (Output, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &streamOutput{w: file, format: format, closer: file}, nil
}
