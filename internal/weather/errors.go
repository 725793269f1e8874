package weather

import "errors"

var (
	// ErrUnauthorized means the API rejected the configured key.
	// Fatal: nothing downstream can succeed with a bad key.
	ErrUnauthorized = errors.New("weather api rejected the api key")

	// ErrCityNotFound means geocoding returned no candidates for a city.
	// Callers skip the city and continue.
	ErrCityNotFound = errors.New("no geocoding match for city")

	// ErrUnavailable wraps transport-level failures (timeouts, connection
	// errors, 5xx). Callers may skip and retry on the next run.
	ErrUnavailable = errors.New("weather api unavailable")
)
