package weather

import (
	"fmt"
	"time"
)

// Place is a geocoded location: the coordinates to query forecasts for,
// plus the resolved name/country labels stamped onto stored records.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"` // ISO country code, e.g. "GB"
}

// ForecastRecord is one row of the persisted dataset: a single forecast
// entry (typically a 3-hour slot) for one city.
type ForecastRecord struct {
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperature"`
	WeatherMain string    `json:"weatherMain"`
	Description string    `json:"description"`
	WindSpeed   float64   `json:"windSpeedMs"`
	Humidity    float64   `json:"humidityPercent"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
}

// Key returns the canonical dedup key. Two records with the same
// (timestamp, city, country) describe the same forecast slot.
func (r ForecastRecord) Key() string {
	return fmt.Sprintf("%d|%s|%s", r.Timestamp.UTC().Unix(), r.City, r.Country)
}
