package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dataset-collector/internal/store"
	"github.com/i474232898/weather-dataset-collector/internal/weather"
)

func newTestApp(t *testing.T, seed []weather.ForecastRecord) *fiber.App {
	t.Helper()

	st := store.NewCSVStore(filepath.Join(t.TempDir(), "weather.csv"))
	if len(seed) > 0 {
		ds := store.NewDataset()
		ds.Merge(seed)
		ds.Sort()
		if err := st.Save(ds); err != nil {
			t.Fatalf("failed to seed dataset: %v", err)
		}
	}

	app := fiber.New()
	RegisterRoutes(app, st)
	return app
}

func seedRecords() []weather.ForecastRecord {
	noon := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []weather.ForecastRecord{
		{
			Timestamp:   noon,
			Temperature: 5.0,
			WeatherMain: "Clouds",
			Description: "scattered clouds",
			WindSpeed:   3.2,
			Humidity:    80,
			City:        "London",
			Country:     "GB",
		},
		{
			Timestamp:   noon.Add(3 * time.Hour),
			Temperature: 4.1,
			WeatherMain: "Rain",
			Description: "light rain",
			WindSpeed:   4.5,
			Humidity:    84,
			City:        "London",
			Country:     "GB",
		},
	}
}

// TestRecordsQueryValidation verifies that the records endpoint enforces the
// required city/country parameters and valid time bounds.
func TestRecordsQueryValidation(t *testing.T) {
	app := newTestApp(t, seedRecords())

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"missing country", "/api/v1/records?city=London", http.StatusBadRequest},
		{"missing city", "/api/v1/records?country=GB", http.StatusBadRequest},
		{"bad from", "/api/v1/records?city=London&country=GB&from=yesterday", http.StatusBadRequest},
		{"to before from", "/api/v1/records?city=London&country=GB&from=2024-01-02T00:00:00Z&to=2024-01-01T00:00:00Z", http.StatusBadRequest},
		{"ok", "/api/v1/records?city=London&country=GB", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestRecordsUnknownLocationReturns404(t *testing.T) {
	app := newTestApp(t, seedRecords())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?city=Berlin&country=DE", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestRecordsTimeRangeFilter(t *testing.T) {
	app := newTestApp(t, seedRecords())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/records?city=London&country=GB&from=2024-01-01T13:00:00Z", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Records []weather.ForecastRecord `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Records) != 1 || body.Records[0].WeatherMain != "Rain" {
		t.Fatalf("unexpected filtered records: %+v", body.Records)
	}
}

func TestCitiesListsDistinctLocations(t *testing.T) {
	app := newTestApp(t, seedRecords())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Cities []weather.Place `json:"cities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Cities) != 1 || body.Cities[0].Name != "London" || body.Cities[0].Country != "GB" {
		t.Fatalf("unexpected cities: %+v", body.Cities)
	}
}
