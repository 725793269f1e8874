package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// AppConfig is the explicit configuration value handed to every component.
// Nothing reads the environment after Load returns.
type AppConfig struct {
	// OpenWeatherMap credentials and units.
	OpenWeatherAPIKey string `validate:"required"`
	Units             string `validate:"oneof=standard metric imperial"`

	// Cities to collect forecasts for.
	Cities []string `validate:"min=1,dive,required"`

	// DatasetPath is the CSV file the merged dataset is persisted to.
	DatasetPath string `validate:"required"`

	// HTTPTimeout bounds each outbound API call.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// FetchInterval repeats the collection run when > 0; 0 means run once.
	FetchInterval time.Duration `validate:"gte=0"`

	// Read-only HTTP API over the dataset.
	APIEnabled bool
	Port       string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.Units = getenvDefault("WEATHER_UNITS", "metric")
	cfg.DatasetPath = getenvDefault("DATASET_PATH", "weather_dataset.csv")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.APIEnabled = getenvBool("API_ENABLED", false)

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	intervalStr := getenvDefault("FETCH_INTERVAL", "0")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	cfg.FetchInterval = interval

	cfg.Cities = splitCities(os.Getenv("WEATHER_CITIES"))

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// splitCities parses the comma-separated WEATHER_CITIES value, trimming
// whitespace and dropping empty items.
func splitCities(raw string) []string {
	var cities []string
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return def
}
