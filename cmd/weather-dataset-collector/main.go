package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-dataset-collector/internal/api/http"
	"github.com/i474232898/weather-dataset-collector/internal/collector"
	"github.com/i474232898/weather-dataset-collector/internal/config"
	"github.com/i474232898/weather-dataset-collector/internal/scheduler"
	"github.com/i474232898/weather-dataset-collector/internal/store"
	"github.com/i474232898/weather-dataset-collector/internal/weather/openweather"
)

func main() {
	// Load configuration (reads .env if present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey, cfg.Units)
	datasetStore := store.NewCSVStore(cfg.DatasetPath)

	// Core service: geocode each city, fetch its forecast series, merge
	// everything into the dataset once per run.
	service := collector.NewService(client, datasetStore, cfg.Cities)

	// The first run always happens immediately; a fatal error here (bad
	// key, unwritable dataset) terminates the process non-zero.
	if err := service.Run(context.Background()); err != nil {
		log.Fatalf("collection run failed: %v", err)
	}

	// Default mode is one-shot: collect, persist, exit.
	if cfg.FetchInterval <= 0 && !cfg.APIEnabled {
		return
	}

	// Scheduler that repeats the collection run.
	if cfg.FetchInterval > 0 {
		runTimeout := time.Duration(len(cfg.Cities)) * 2 * cfg.HTTPTimeout
		sched := scheduler.New(service, cfg.FetchInterval, runTimeout)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	var app *fiber.App
	if cfg.APIEnabled {
		app = fiber.New(fiber.Config{
			AppName:               "weather-dataset-collector",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				// Centralized error response
				code := fiber.StatusInternalServerError
				if e, ok := err.(*fiber.Error); ok {
					code = e.Code
				}
				return c.Status(code).JSON(fiber.Map{
					"error":   true,
					"message": err.Error(),
				})
			},
		})

		// Global middleware
		app.Use(logger.New())
		app.Use(recover.New())

		// Basic health endpoint
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":  "ok",
				"service": "weather-dataset-collector",
			})
		})

		// Read-only dataset routes.
		httpapi.RegisterRoutes(app, datasetStore)

		go func() {
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
}
