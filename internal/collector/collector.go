package collector

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/i474232898/weather-dataset-collector/internal/store"
	"github.com/i474232898/weather-dataset-collector/internal/weather"
)

// Source abstracts the upstream weather API (geocoding + forecast).
type Source interface {
	Geocode(ctx context.Context, city string) (weather.Place, error)
	Forecast(ctx context.Context, lat, lon float64, city, country string) ([]weather.ForecastRecord, error)
}

// Service runs the collection pipeline: for each configured city, geocode
// then fetch the forecast series; merge everything into the dataset once at
// the end of the run.
type Service struct {
	source Source
	store  *store.CSVStore
	cities []string
}

// NewService creates a collector over the given source and dataset store.
func NewService(source Source, st *store.CSVStore, cities []string) *Service {
	return &Service{
		source: source,
		store:  st,
		cities: cities,
	}
}

// Run executes one full collection cycle. Cities are processed one at a
// time; a city that cannot be resolved or fetched is logged and skipped so
// partial progress is not lost. A rejected API key or a dataset read/write
// failure aborts the run with an error and nothing is written.
func (s *Service) Run(ctx context.Context) error {
	var fetched []weather.ForecastRecord

	for _, city := range s.cities {
		records, err := s.collectCity(ctx, city)
		if err != nil {
			if errors.Is(err, weather.ErrUnauthorized) {
				return err
			}
			log.Printf("WARN: skipping city %q: %v", city, err)
			continue
		}
		fetched = append(fetched, records...)
	}

	ds, err := s.store.Load()
	if err != nil {
		return err
	}

	added := ds.Merge(fetched)
	ds.Sort()

	if err := s.store.Save(ds); err != nil {
		return err
	}

	if ds.Len() > 0 {
		log.Printf("INFO: dataset updated at %s (%d new records, %d total), including updates till %s",
			time.Now().UTC().Format(time.RFC3339), added, ds.Len(), ds.Latest().Format(time.RFC3339))
	} else {
		log.Printf("INFO: dataset updated at %s, no records collected",
			time.Now().UTC().Format(time.RFC3339))
	}
	return nil
}

func (s *Service) collectCity(ctx context.Context, city string) ([]weather.ForecastRecord, error) {
	place, err := s.source.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	// The resolved name and country, not the raw query string, are what
	// get stamped onto stored rows.
	records, err := s.source.Forecast(ctx, place.Latitude, place.Longitude, place.Name, place.Country)
	if err != nil {
		return nil, err
	}

	log.Printf("INFO: fetched %d forecast entries for %s,%s", len(records), place.Name, place.Country)
	return records, nil
}
