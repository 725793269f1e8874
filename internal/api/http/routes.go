package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dataset-collector/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the read-only dataset handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, st *store.CSVStore) {
	v1 := app.Group("/api/v1")

	v1.Get("/records", func(c *fiber.Ctx) error {
		var req recordsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ds, err := st.Load()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load dataset")
		}

		records, err := ds.Range(req.City, req.Country, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no stored records for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to query dataset")
		}

		return c.JSON(fiber.Map{
			"city":    req.City,
			"country": req.Country,
			"records": records,
		})
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		ds, err := st.Load()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load dataset")
		}
		return c.JSON(fiber.Map{
			"cities": ds.Cities(),
		})
	})
}

// recordsQuery holds query parameters for the records endpoint. From/To are
// optional; zero values mean an open bound.
type recordsQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
	From    time.Time
	To      time.Time
}

func (r *recordsQuery) bind(c *fiber.Ctx) error {
	r.City = c.Query("city")
	r.Country = c.Query("country")

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := parseTime(fromStr)
		if err != nil {
			return err
		}
		r.From = from
	}
	if toStr := c.Query("to"); toStr != "" {
		to, err := parseTime(toStr)
		if err != nil {
			return err
		}
		r.To = to
	}

	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return errors.New("to must not be before from")
	}

	return validate.Struct(r)
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
