package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-dataset-collector/internal/weather"
)

const (
	defaultGeocodingURL = "http://api.openweathermap.org/geo/1.0/direct"
	defaultForecastURL  = "http://api.openweathermap.org/data/2.5/forecast"
)

// Client talks to the OpenWeatherMap geocoding and 5-day forecast endpoints.
type Client struct {
	apiKey       string
	units        string
	geocodingURL string
	forecastURL  string
	httpClient   *http.Client
}

// NewClient creates an OpenWeatherMap client. Units is one of
// "standard", "metric" or "imperial"; empty defaults to "metric".
func NewClient(httpClient *http.Client, apiKey, units string) *Client {
	if units == "" {
		units = "metric"
	}
	return &Client{
		apiKey:       apiKey,
		units:        units,
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
		httpClient:   httpClient,
	}
}

// Geocode resolves a city name to coordinates and a country code using the
// direct geocoding endpoint. The API may return several candidates; the
// first one wins, in API response order.
func (c *Client) Geocode(ctx context.Context, city string) (weather.Place, error) {
	if c.apiKey == "" {
		return weather.Place{}, fmt.Errorf("openweather api key is not configured: %w", weather.ErrUnauthorized)
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.apiKey)

	body, err := c.get(ctx, c.geocodingURL, values)
	if err != nil {
		return weather.Place{}, err
	}
	defer body.Close()

	var payload []struct {
		Name    string  `json:"name"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Country string  `json:"country"`
	}

	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return weather.Place{}, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	if len(payload) == 0 {
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrCityNotFound, city)
	}

	first := payload[0]
	return weather.Place{
		Latitude:  first.Lat,
		Longitude: first.Lon,
		Name:      first.Name,
		Country:   first.Country,
	}, nil
}

// Forecast fetches the 5-day/3-hour forecast series for the given
// coordinates and maps each entry to a ForecastRecord. The city and country
// labels are passed through from the geocoding result, not re-derived, so
// the label used for the lookup is the one that ends up stored.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, city, country string) ([]weather.ForecastRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured: %w", weather.ErrUnauthorized)
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)
	values.Set("units", c.units)

	body, err := c.get(ctx, c.forecastURL, values)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity float64 `json:"humidity"`
			} `json:"main"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
			} `json:"weather"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}

	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	records := make([]weather.ForecastRecord, 0, len(payload.List))
	for _, entry := range payload.List {
		// A missing weather block makes the entry unusable; drop the
		// slot rather than the whole batch. The next run fills the gap.
		if entry.Dt == 0 || len(entry.Weather) == 0 {
			log.Printf("WARN: skipping malformed forecast entry for %s,%s (dt=%d)", city, country, entry.Dt)
			continue
		}

		records = append(records, weather.ForecastRecord{
			Timestamp:   time.Unix(entry.Dt, 0).UTC(),
			Temperature: entry.Main.Temp,
			WeatherMain: entry.Weather[0].Main,
			Description: entry.Weather[0].Description,
			WindSpeed:   entry.Wind.Speed,
			Humidity:    entry.Main.Humidity,
			City:        city,
			Country:     country,
		})
	}

	return records, nil
}

// get issues one GET request and classifies the response status into the
// shared error taxonomy. The caller owns the returned body.
func (c *Client) get(ctx context.Context, baseURL string, values url.Values) (io.ReadCloser, error) {
	u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", weather.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", weather.ErrUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
}
