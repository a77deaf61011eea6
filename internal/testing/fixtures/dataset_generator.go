package fixtures

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-virus-feed/internal/core/model"
)

// Row is one dataset row in its raw text form, before numeric coercion.
type Row struct {
	EntityID          string
	MinutesSinceFirst string
	Media             string
	Time              string
	Day               string
	Reach             string
	Title             string
	Image             string
}

func (r Row) values() []string {
	return []string{r.EntityID, r.MinutesSinceFirst, r.Media, r.Time, r.Day, r.Reach, r.Title, r.Image}
}

// DatasetGenerator writes test datasets
type DatasetGenerator struct {
	baseDir string
}

// NewDatasetGenerator creates a new dataset generator rooted at baseDir
func NewDatasetGenerator(baseDir string) *DatasetGenerator {
	return &DatasetGenerator{
		baseDir: baseDir,
	}
}

// SampleRows returns a small feed of three viruses. Virus 1 has three
// observations out of elapsed order, virus 2 has two and virus 3 has one.
func SampleRows() []Row {
	return []Row{
		{"1", "30", "tv", "09:00", "Mon", "4", "Flu", "flu.png"},
		{"1", "0", "radio", "08:00", "Mon", "4", "Flu", "flu.png"},
		{"2", "0", "web", "10:00", "Tue", "2", "Cold", "cold.png"},
		{"1", "90", "web", "10:00", "Mon", "4", "Flu", "flu.png"},
		{"2", "15", "print", "10:15", "Tue", "2", "Cold", "cold.png"},
		{"3", "0", "tv", "12:00", "Wed", "5", "Fever", "fever.png"},
	}
}

// SampleRecords returns SampleRows as coerced detail records
func SampleRecords() []model.DetailRecord {
	rows := SampleRows()
	records := make([]model.DetailRecord, 0, len(rows))
	for _, r := range rows {
		id, _ := strconv.ParseInt(r.EntityID, 10, 64)
		elapsed, _ := strconv.ParseFloat(r.MinutesSinceFirst, 64)
		reach, _ := strconv.ParseFloat(r.Reach, 64)
		records = append(records, model.DetailRecord{
			EntityID:          model.EntityID(id),
			MinutesSinceFirst: elapsed,
			Media:             r.Media,
			Time:              r.Time,
			Day:               r.Day,
			Reach:             reach,
			Title:             r.Title,
			Image:             r.Image,
		})
	}
	return records
}

// WriteCSV writes rows with the standard header to name under the base dir
// and returns the full path.
func (g *DatasetGenerator) WriteCSV(name string, rows []Row) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(model.RequiredColumns); err != nil {
		return "", err
	}
	for _, r := range rows {
		if err := w.Write(r.values()); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

// WriteJSONL writes rows as one JSON object per line. Numeric columns that
// parse as numbers are written as JSON numbers.
func (g *DatasetGenerator) WriteJSONL(name string, rows []Row) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	for _, r := range rows {
		obj := make(map[string]interface{}, len(model.RequiredColumns))
		for i, value := range r.values() {
			column := model.RequiredColumns[i]
			if n, err := strconv.ParseFloat(value, 64); err == nil && isNumericColumn(column) {
				obj[column] = n
				continue
			}
			obj[column] = value
		}

		data, err := sonic.Marshal(obj)
		if err != nil {
			return "", err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return "", err
		}
	}
	return path, nil
}

// WriteRaw writes content verbatim, for malformed-input tests
func (g *DatasetGenerator) WriteRaw(name, content string) (string, error) {
	path := filepath.Join(g.baseDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(content), 0644)
}

func isNumericColumn(column string) bool {
	switch column {
	case model.ColumnEntityID, model.ColumnMinutesSinceFirst, model.ColumnReach:
		return true
	}
	return false
}
