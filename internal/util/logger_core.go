package util

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel is the minimum severity a logger writes
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l LogLevel) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel reads a level name in any case. Unknown names mean info.
func ParseLevel(name string) LogLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		return LevelWarn
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// LogFormat selects how entries are rendered
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Output is a log destination
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LogEntry is one rendered log record
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// LoggerInterface is what packages log through
type LoggerInterface interface {
	Debug(msg string, fields ...Field)
	Debugf(format string, args ...interface{})
	Info(msg string, fields ...Field)
	Infof(format string, args ...interface{})
	Warn(msg string, fields ...Field)
	Warnf(format string, args ...interface{})
	Error(msg string, fields ...Field)
	Errorf(format string, args ...interface{})
	With(fields ...Field) LoggerInterface
}

// outputSet is shared by a logger and every logger derived with With
type outputSet struct {
	mu      sync.RWMutex
	outputs []Output
}

// Logger writes structured entries to a set of outputs
type Logger struct {
	level  LogLevel
	fields map[string]interface{}
	sinks  *outputSet
}

// NewLogger creates a logger writing to logFile and, when debugToConsole is
// set, to stderr as well. At least one destination is required.
func NewLogger(levelStr string, logFile string, debugToConsole bool, format LogFormat) (*Logger, error) {
	if format != FormatJSON {
		format = FormatText
	}
	if logFile == "" && !debugToConsole {
		return nil, fmt.Errorf("log file must be specified when not in debug mode")
	}

	logger := newLogger(ParseLevel(levelStr))
	if debugToConsole {
		logger.AddOutput(NewConsoleOutput(os.Stderr, format))
	}
	if logFile != "" {
		fileOutput, err := NewFileOutput(logFile, format)
		if err != nil {
			return nil, fmt.Errorf("create log file %s: %w", logFile, err)
		}
		logger.AddOutput(fileOutput)
	}
	return logger, nil
}

func newLogger(level LogLevel) *Logger {
	return &Logger{
		level:  level,
		fields: map[string]interface{}{},
		sinks:  &outputSet{},
	}
}

func (l *Logger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   msg,
		Fields:    mergeFields(l.fields, fields),
	}

	l.sinks.mu.RLock()
	defer l.sinks.mu.RUnlock()
	for _, output := range l.sinks.outputs {
		if err := output.Write(entry); err != nil {
			log.Printf("Failed to write log entry: %v", err)
		}
	}
}

func mergeFields(base map[string]interface{}, extra []Field) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for _, f := range extra {
		merged[f.Key] = f.Value
	}
	return merged
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(LevelError, fmt.Sprintf(format, args...), nil)
}

// With returns a logger that adds fields to every entry. It writes to the
// same outputs, so closing either closes both.
func (l *Logger) With(fields ...Field) LoggerInterface {
	return &Logger{
		level:  l.level,
		fields: mergeFields(l.fields, fields),
		sinks:  l.sinks,
	}
}

// AddOutput adds a destination
func (l *Logger) AddOutput(output Output) {
	l.sinks.mu.Lock()
	defer l.sinks.mu.Unlock()
	l.sinks.outputs = append(l.sinks.outputs, output)
}

// Close closes every output
func (l *Logger) Close() error {
	l.sinks.mu.Lock()
	defer l.sinks.mu.Unlock()

	var firstErr error
	for _, output := range l.sinks.outputs {
		if err := output.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.sinks.outputs = nil
	return firstErr
}
