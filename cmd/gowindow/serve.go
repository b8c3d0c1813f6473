package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/gowindow/internal/api/http"
	"github.com/i474232898/gowindow/internal/config"
	"github.com/i474232898/gowindow/internal/log"
	"github.com/i474232898/gowindow/internal/metrics"
	"github.com/i474232898/gowindow/internal/scheduler"
	"github.com/i474232898/gowindow/internal/store"
)

func serveCommand(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background refresh scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.AppConfig) error {
	if parent == nil {
		parent = context.Background()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	locations, err := store.OpenLocationRepository(cfg.DBPath, cfg.MaxLocations)
	if err != nil {
		return err
	}
	defer func() {
		if err := locations.Close(); err != nil {
			log.Warnf("error closing location database: %v", err)
		}
	}()

	c := newClients(cfg)
	service := newService(cfg, c.forecast, recorder)

	// Scheduler that periodically refreshes saved locations.
	sched := scheduler.New(locations, service, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "gowindow",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:   service,
		Locations: locations,
		Places:    c.places,
		Timezones: c.forecast,
		Gatherer:  reg,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("fiber server stopped: %w", err)
		}
		return nil
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warnf("error during shutdown: %v", err)
	}
	return nil
}
