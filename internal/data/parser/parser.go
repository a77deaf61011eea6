package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-virus-feed/internal/core/model"
	"github.com/penwyp/go-virus-feed/internal/util"
)

var (
	// ErrMissingColumn is returned when a CSV header lacks a required column
	ErrMissingColumn = errors.New("missing dataset column")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor JSON lines
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Parser is a struct for parsing dataset files into detail records.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string][]model.DetailRecord
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Records []model.DetailRecord
	Error   error
}

// NewParser creates a new Parser instance.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string][]model.DetailRecord),
	}
}

// ParseFile parses the dataset at path. The format follows the extension:
// .csv, or .jsonl/.ndjson with one JSON object per line.
func (p *Parser) ParseFile(path string) ([]model.DetailRecord, error) {
	p.mu.Lock()
	if cached, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	util.LogDebug(fmt.Sprintf("Start parsing file: %s", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []model.DetailRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = ParseCSV(file)
	case ".jsonl", ".ndjson":
		records, err = ParseJSONL(file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p.mu.Lock()
	p.cache[path] = records
	p.mu.Unlock()

	return records, nil
}

// ParseFiles parses multiple files concurrently and returns a channel of ParseResult.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			records, err := p.ParseFile(f)
			if err != nil {
				util.LogDebug(fmt.Sprintf("File parsing failed: %s - %v", f, err))
			}

			results <- ParseResult{File: f, Records: records, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug(fmt.Sprintf("Concurrent parsing finished, total duration: %v", time.Since(start)))
	}()

	return results
}

// Load parses every file and concatenates the records in the order the
// files were given, so first-seen order stays deterministic.
func (p *Parser) Load(files []string) ([]model.DetailRecord, error) {
	byFile := make(map[string][]model.DetailRecord, len(files))
	for result := range p.ParseFiles(files) {
		if result.Error != nil {
			return nil, result.Error
		}
		byFile[result.File] = result.Records
	}

	var details []model.DetailRecord
	for _, f := range files {
		details = append(details, byFile[f]...)
	}
	util.LogInfo(fmt.Sprintf("Loaded %d detail records from %d files", len(details), len(files)))
	return details, nil
}

// Invalidate drops the cached records of path
func (p *Parser) Invalidate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, path)
}

// ParseCSV reads a CSV dataset with a header row. Columns are located by name;
// extra columns are ignored.
func ParseCSV(r io.Reader) ([]model.DetailRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []model.DetailRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range model.RequiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	records := make([]model.DetailRecord, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			i := columns[name]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}

		record, ok := buildRecord(field)
		if !ok {
			util.LogDebug(fmt.Sprintf("Skip row %d: %s %q is not an integer", line, model.ColumnEntityID, field(model.ColumnEntityID)))
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// ParseJSONL reads one JSON object per line. Invalid lines are skipped.
func ParseJSONL(r io.Reader) ([]model.DetailRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	records := make([]model.DetailRecord, 0)
	lineCount := 0
	for scanner.Scan() {
		lineCount++
		raw := scanner.Bytes()
		if len(strings.TrimSpace(string(raw))) == 0 {
			continue
		}

		var obj map[string]interface{}
		if err := sonic.Unmarshal(raw, &obj); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %d - %v", lineCount, err))
			continue
		}

		record, ok := buildRecord(func(name string) string { return jsonText(obj[name]) })
		if !ok {
			util.LogDebug(fmt.Sprintf("Skip line %d: %s is not an integer", lineCount, model.ColumnEntityID))
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// minEntityID is the smallest id that converts to model.EntityID exactly;
// the largest is one below its negation.
const minEntityID = -(1 << 63)

func buildRecord(field func(name string) string) (model.DetailRecord, bool) {
	id := ToNumber(field(model.ColumnEntityID))
	if math.IsNaN(id) || id != math.Trunc(id) || id < minEntityID || id >= -minEntityID {
		return model.DetailRecord{}, false
	}

	return model.DetailRecord{
		EntityID:          model.EntityID(id),
		MinutesSinceFirst: ToNumber(field(model.ColumnMinutesSinceFirst)),
		Media:             field(model.ColumnMedia),
		Time:              field(model.ColumnTime),
		Day:               field(model.ColumnDay),
		Reach:             ToNumber(field(model.ColumnReach)),
		Title:             field(model.ColumnTitle),
		Image:             field(model.ColumnImage),
	}, true
}

// ToNumber coerces text the way a spreadsheet export is usually read: blank
// text is 0, anything that does not parse as a number is NaN.
func ToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// jsonText renders a decoded JSON value as the text a CSV cell would hold.
func jsonText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
