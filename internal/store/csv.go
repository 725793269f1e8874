package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/i474232898/weather-dataset-collector/internal/weather"
)

var (
	// ErrNotFound is returned when no stored records match a query.
	ErrNotFound = errors.New("no weather data for location")
)

// columns is the fixed dataset schema. Order matters: the header and every
// row are written in exactly this order, run after run.
var columns = []string{
	"datetime_utc",
	"temperature",
	"weather_main",
	"weather_description",
	"wind_speed",
	"humidity",
	"city",
	"country",
}

// Dataset is the in-memory form of the persisted table: an ordered row list
// plus a uniqueness index over (timestamp, city, country).
type Dataset struct {
	rows  []weather.ForecastRecord
	index map[string]struct{}
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		index: make(map[string]struct{}),
	}
}

// Merge appends every record whose key is not already present and reports
// how many were added. Existing rows are never mutated or removed, so
// merging the same batch twice is a no-op the second time.
func (d *Dataset) Merge(records []weather.ForecastRecord) int {
	added := 0
	for _, r := range records {
		key := r.Key()
		if _, ok := d.index[key]; ok {
			continue
		}
		r.Timestamp = r.Timestamp.UTC()
		d.rows = append(d.rows, r)
		d.index[key] = struct{}{}
		added++
	}
	return added
}

// Sort orders rows by (timestamp, city) ascending. The sort is stable, so
// chronological order within one city's fetch is preserved.
func (d *Dataset) Sort() {
	sort.SliceStable(d.rows, func(i, j int) bool {
		if !d.rows[i].Timestamp.Equal(d.rows[j].Timestamp) {
			return d.rows[i].Timestamp.Before(d.rows[j].Timestamp)
		}
		return d.rows[i].City < d.rows[j].City
	})
}

// Len returns the number of stored rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Records returns all rows in storage order.
func (d *Dataset) Records() []weather.ForecastRecord {
	return d.rows
}

// Latest returns the newest timestamp in the dataset, zero when empty.
func (d *Dataset) Latest() time.Time {
	var latest time.Time
	for _, r := range d.rows {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return latest
}

// Range returns the rows for one city between from and to (inclusive).
// Zero from/to bounds are treated as open.
func (d *Dataset) Range(city, country string, from, to time.Time) ([]weather.ForecastRecord, error) {
	var result []weather.ForecastRecord
	for _, r := range d.rows {
		if r.City != city || r.Country != country {
			continue
		}
		if !from.IsZero() && r.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && r.Timestamp.After(to) {
			continue
		}
		result = append(result, r)
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Cities returns the distinct (city, country) pairs present in the dataset,
// in first-seen order.
func (d *Dataset) Cities() []weather.Place {
	seen := make(map[string]struct{})
	var result []weather.Place
	for _, r := range d.rows {
		key := r.City + ":" + r.Country
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, weather.Place{Name: r.City, Country: r.Country})
	}
	return result
}

// CSVStore persists a Dataset as a flat CSV file with one header row.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store backed by the given file path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads the dataset from disk. An absent file yields an empty dataset;
// an unreadable or malformed file is an error, so prior data is never
// silently discarded by a later Save.
func (s *CSVStore) Load() (*Dataset, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDataset(), nil
		}
		return nil, fmt.Errorf("failed to open dataset %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return NewDataset(), nil
		}
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	if len(header) != len(columns) {
		return nil, fmt.Errorf("dataset %s has %d columns, expected %d", s.path, len(header), len(columns))
	}

	ds := NewDataset()
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row %d: %w", line, err)
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", s.path, line, err)
		}
		ds.Merge([]weather.ForecastRecord{record})
	}

	return ds, nil
}

// Save rewrites the dataset atomically: the rows go to a temp file in the
// same directory which then replaces the previous copy, so a failed write
// never truncates existing data.
func (s *CSVStore) Save(ds *Dataset) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".weather_dataset_*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp dataset file: %w", err)
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(columns)
	if writeErr == nil {
		for _, r := range ds.rows {
			if writeErr = writer.Write(formatRow(r)); writeErr != nil {
				break
			}
		}
	}
	writer.Flush()
	if writeErr == nil {
		writeErr = writer.Error()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write dataset: %w", writeErr)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace dataset %s: %w", s.path, err)
	}
	return nil
}

func parseRow(row []string) (weather.ForecastRecord, error) {
	if len(row) != len(columns) {
		return weather.ForecastRecord{}, fmt.Errorf("has %d fields, expected %d", len(row), len(columns))
	}

	ts, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("invalid datetime %q: %w", row[0], err)
	}

	temp, err := strconv.ParseFloat(row[1], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("invalid temperature %q: %w", row[1], err)
	}
	wind, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("invalid wind speed %q: %w", row[4], err)
	}
	humidity, err := strconv.ParseFloat(row[5], 64)
	if err != nil {
		return weather.ForecastRecord{}, fmt.Errorf("invalid humidity %q: %w", row[5], err)
	}

	return weather.ForecastRecord{
		Timestamp:   ts.UTC(),
		Temperature: temp,
		WeatherMain: row[2],
		Description: row[3],
		WindSpeed:   wind,
		Humidity:    humidity,
		City:        row[6],
		Country:     row[7],
	}, nil
}

func formatRow(r weather.ForecastRecord) []string {
	return []string{
		r.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		r.WeatherMain,
		r.Description,
		strconv.FormatFloat(r.WindSpeed, 'f', -1, 64),
		strconv.FormatFloat(r.Humidity, 'f', -1, 64),
		r.City,
		r.Country,
	}
}
