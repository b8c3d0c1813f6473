package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/gowindow/internal/log"
)

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogDebug bool
	DBPath   string `validate:"required"`

	// Open-Meteo endpoints.
	ForecastURL  string `validate:"required,url"`
	TimezoneURL  string `validate:"required,url"`
	GeocodingURL string `validate:"required,url"`

	// Outbound HTTP.
	HTTPTimeout    time.Duration `validate:"gt=0"`
	RateLimitRPS   float64       `validate:"gt=0"`
	RateLimitBurst int           `validate:"gte=1"`

	// RefreshInterval controls how often saved locations are refetched.
	RefreshInterval time.Duration `validate:"gte=1m"`
	// StaleThreshold is the age after which a stored snapshot is refetched on read.
	StaleThreshold time.Duration `validate:"gte=0"`

	// Forecast windows.
	PastDays      int `validate:"gte=0,lte=92"`
	ForecastDays  int `validate:"gte=1,lte=16"`
	PastHours     int `validate:"gte=0"`
	ForecastHours int `validate:"gte=1"`

	DaylightBuffer time.Duration `validate:"gte=0"`
	MaxLocations   int           `validate:"gte=1"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max age of snapshots (0 = unlimited)

	SearchCacheTTL time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warnf("error loading .env file: %v", err)
	}

	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		DBPath:       getenvDefault("DATABASE_PATH", "gowindow.db"),
		ForecastURL:  getenvDefault("OPEN_METEO_FORECAST_URL", "https://api.open-meteo.com/v1/gfs"),
		TimezoneURL:  getenvDefault("OPEN_METEO_TIMEZONE_URL", "https://api.open-meteo.com/v1/forecast"),
		GeocodingURL: getenvDefault("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),

		RateLimitBurst:  getenvInt("RATE_LIMIT_BURST", 5),
		PastDays:        getenvInt("PAST_DAYS", 5),
		ForecastDays:    getenvInt("FORECAST_DAYS", 10),
		PastHours:       getenvInt("PAST_HOURS", 8),
		ForecastHours:   getenvInt("FORECAST_HOURS", 72),
		MaxLocations:    getenvInt("MAX_LOCATIONS", 10),
		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 8),
	}

	var err error
	if cfg.LogDebug, err = getenvBool("LOG_DEBUG", false); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getenvFloat("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"REFRESH_INTERVAL", "30m", &cfg.RefreshInterval},
		{"STALE_THRESHOLD", "15m", &cfg.StaleThreshold},
		{"DAYLIGHT_BUFFER", "30m", &cfg.DaylightBuffer},
		{"STORE_MAX_AGE", "24h", &cfg.StoreMaxAge},
		{"SEARCH_CACHE_TTL", "10m", &cfg.SearchCacheTTL},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
		log.Warnf("ignoring invalid %s=%q, using %d", key, v, def)
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
