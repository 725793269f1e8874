package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("WEATHER_CITIES", "London, Paris ,Berlin")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Units != "metric" {
		t.Errorf("Units = %q, want metric", cfg.Units)
	}
	if cfg.DatasetPath != "weather_dataset.csv" {
		t.Errorf("DatasetPath = %q, want weather_dataset.csv", cfg.DatasetPath)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.FetchInterval != 0 {
		t.Errorf("FetchInterval = %v, want 0", cfg.FetchInterval)
	}
	if cfg.APIEnabled {
		t.Error("APIEnabled should default to false")
	}
}

func TestLoadSplitsCityList(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"London", "Paris", "Berlin"}
	if len(cfg.Cities) != len(want) {
		t.Fatalf("Cities = %v, want %v", cfg.Cities, want)
	}
	for i := range want {
		if cfg.Cities[i] != want[i] {
			t.Fatalf("Cities[%d] = %q, want %q", i, cfg.Cities[i], want[i])
		}
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	t.Setenv("WEATHER_CITIES", "London")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing api key, got nil")
	}
}

func TestLoadEmptyCityList(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("WEATHER_CITIES", " , ")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for empty city list, got nil")
	}
}

func TestLoadRejectsUnknownUnits(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEATHER_UNITS", "kelvin")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown units, got nil")
	}
}

func TestLoadInvalidInterval(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("FETCH_INTERVAL", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid FETCH_INTERVAL, got nil")
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("WEATHER_UNITS", "imperial")
	t.Setenv("DATASET_PATH", "/tmp/out.csv")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("FETCH_INTERVAL", "30m")
	t.Setenv("API_ENABLED", "true")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Units != "imperial" {
		t.Errorf("Units = %q, want imperial", cfg.Units)
	}
	if cfg.DatasetPath != "/tmp/out.csv" {
		t.Errorf("DatasetPath = %q", cfg.DatasetPath)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.FetchInterval != 30*time.Minute {
		t.Errorf("FetchInterval = %v, want 30m", cfg.FetchInterval)
	}
	if !cfg.APIEnabled {
		t.Error("APIEnabled should be true")
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
}
