package main

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/i474232898/gowindow/internal/config"
	"github.com/i474232898/gowindow/internal/store"
	"github.com/i474232898/gowindow/internal/weather"
	"github.com/i474232898/gowindow/internal/weather/providers"
)

// clients are the outbound Open-Meteo clients. They share one HTTP client and
// one rate limiter.
type clients struct {
	forecast *providers.OpenMeteoProvider
	places   *providers.GeocodingClient
}

func newClients(cfg *config.AppConfig) clients {
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	omCfg := providers.DefaultOpenMeteoConfig()
	omCfg.ForecastURL = cfg.ForecastURL
	omCfg.TimezoneURL = cfg.TimezoneURL
	omCfg.PastDays = cfg.PastDays
	omCfg.ForecastDays = cfg.ForecastDays
	omCfg.PastHours = cfg.PastHours
	omCfg.ForecastHours = cfg.ForecastHours

	return clients{
		forecast: providers.NewOpenMeteoProvider(httpClient, limiter, omCfg),
		places:   providers.NewGeocodingClient(httpClient, limiter, cfg.GeocodingURL, cfg.SearchCacheTTL),
	}
}

func newService(cfg *config.AppConfig, provider weather.Provider, recorder weather.Recorder) *weather.Service {
	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	buffer := cfg.DaylightBuffer

	return weather.NewService(memStore, provider, weather.Options{
		StaleThreshold: cfg.StaleThreshold,
		DaylightBuffer: &buffer,
		Recorder:       recorder,
	})
}
