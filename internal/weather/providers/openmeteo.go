package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/gowindow/internal/weather"
)

const (
	openMeteoTimeLayout = "2006-01-02T15:04"

	// DefaultTimezone is used when the timezone lookup returns nothing.
	DefaultTimezone = "America/New_York"
)

// OpenMeteoConfig holds endpoints and forecast windows for Open-Meteo.
type OpenMeteoConfig struct {
	ForecastURL   string
	TimezoneURL   string
	PastDays      int
	ForecastDays  int
	PastHours     int
	ForecastHours int
	Backoff       BackoffConfig
}

// DefaultOpenMeteoConfig returns the public GFS endpoint and the standard windows.
func DefaultOpenMeteoConfig() OpenMeteoConfig {
	return OpenMeteoConfig{
		ForecastURL:   "https://api.open-meteo.com/v1/gfs",
		TimezoneURL:   "https://api.open-meteo.com/v1/forecast",
		PastDays:      5,
		ForecastDays:  10,
		PastHours:     8,
		ForecastHours: 72,
		Backoff:       DefaultBackoff,
	}
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	cfg     OpenMeteoConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a provider sharing client and limiter. limiter may be nil.
func NewOpenMeteoProvider(client *http.Client, limiter *rate.Limiter, cfg OpenMeteoConfig) *OpenMeteoProvider {
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	return &OpenMeteoProvider{
		name: "openmeteo",
		cfg:  cfg,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: cfg.Backoff,
			Limiter: limiter,
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// openMeteoPayload mirrors the parallel-array response. Pointers capture JSON nulls.
type openMeteoPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`

	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature2M            []*float64 `json:"temperature_2m"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
		Snowfall                 []*float64 `json:"snowfall"`
		WeatherCode              []*int     `json:"weather_code"`
		WindSpeed10M             []*float64 `json:"wind_speed_10m"`
		WindGusts10M             []*float64 `json:"wind_gusts_10m"`
	} `json:"hourly"`

	Daily struct {
		Time                        []string   `json:"time"`
		Sunrise                     []*string  `json:"sunrise"`
		Sunset                      []*string  `json:"sunset"`
		Temperature2MMax            []*float64 `json:"temperature_2m_max"`
		Temperature2MMin            []*float64 `json:"temperature_2m_min"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
		SnowfallSum                 []*float64 `json:"snowfall_sum"`
		RainSum                     []*float64 `json:"rain_sum"`
		WeatherCode                 []*int     `json:"weather_code"`
	} `json:"daily"`
}

// FetchDaily fetches the daily series together with the hourly data needed for
// daylight aggregation.
func (p *OpenMeteoProvider) FetchDaily(ctx context.Context, loc weather.Location) (weather.RawForecast, error) {
	values := p.baseValues(loc)
	values.Set("hourly", "temperature_2m,precipitation_probability,snowfall,weather_code")
	values.Set("daily", "sunrise,sunset,temperature_2m_max,temperature_2m_min,precipitation_probability_max,snowfall_sum,rain_sum,weather_code")
	values.Set("past_days", strconv.Itoa(p.cfg.PastDays))
	values.Set("forecast_days", strconv.Itoa(p.cfg.ForecastDays))
	return p.fetch(ctx, loc, values)
}

// FetchHourly fetches the hourly series with wind, plus daily sun times.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, loc weather.Location) (weather.RawForecast, error) {
	values := p.baseValues(loc)
	values.Set("hourly", "temperature_2m,precipitation_probability,snowfall,weather_code,wind_speed_10m,wind_gusts_10m")
	values.Set("daily", "sunrise,sunset")
	values.Set("wind_speed_unit", "mph")
	values.Set("past_hours", strconv.Itoa(p.cfg.PastHours))
	values.Set("forecast_hours", strconv.Itoa(p.cfg.ForecastHours))
	return p.fetch(ctx, loc, values)
}

// Timezone resolves the IANA timezone for a coordinate.
func (p *OpenMeteoProvider) Timezone(ctx context.Context, lat, lon float64) (string, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("timezone", "auto")
	values.Set("forecast_days", "1")

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, getRequest(p.cfg.TimezoneURL, values))
	if err != nil {
		return "", fmt.Errorf("failed to fetch timezone: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode timezone response: %w", err)
	}
	if payload.Timezone == "" {
		return DefaultTimezone, nil
	}
	return payload.Timezone, nil
}

func (p *OpenMeteoProvider) baseValues(loc weather.Location) url.Values {
	values := url.Values{}
	values.Set("latitude", formatCoord(loc.Latitude))
	values.Set("longitude", formatCoord(loc.Longitude))
	values.Set("temperature_unit", "fahrenheit")
	tz := loc.Timezone
	if tz == "" {
		tz = "auto"
	}
	values.Set("timezone", tz)
	return values
}

func (p *OpenMeteoProvider) fetch(ctx context.Context, loc weather.Location, values url.Values) (weather.RawForecast, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, getRequest(p.cfg.ForecastURL, values))
	if err != nil {
		return weather.RawForecast{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawForecast{}, fmt.Errorf("decode forecast response: %w", err)
	}

	tz := loc.TimeLocation()
	if payload.Timezone != "" {
		if l, err := time.LoadLocation(payload.Timezone); err == nil {
			tz = l
		}
	}
	return convertPayload(payload, tz)
}

func getRequest(base string, values url.Values) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s?%s", base, values.Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}
}

func convertPayload(p openMeteoPayload, tz *time.Location) (weather.RawForecast, error) {
	fc := weather.RawForecast{
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Elevation: p.Elevation,
		Timezone:  tz.String(),
		Hourly:    make([]weather.RawHourlyPoint, 0, len(p.Hourly.Time)),
		Daily:     make([]weather.RawDailyPoint, 0, len(p.Daily.Time)),
	}

	for i, ts := range p.Hourly.Time {
		t, err := time.ParseInLocation(openMeteoTimeLayout, ts, tz)
		if err != nil {
			return weather.RawForecast{}, fmt.Errorf("parse hourly time %q: %w", ts, err)
		}
		fc.Hourly = append(fc.Hourly, weather.RawHourlyPoint{
			Time:              t,
			Temperature:       at(p.Hourly.Temperature2M, i),
			PrecipProbability: int(at(p.Hourly.PrecipitationProbability, i)),
			Snowfall:          at(p.Hourly.Snowfall, i),
			WeatherCode:       at(p.Hourly.WeatherCode, i),
			WindSpeed:         at(p.Hourly.WindSpeed10M, i),
			WindGusts:         at(p.Hourly.WindGusts10M, i),
		})
	}

	for i, ds := range p.Daily.Time {
		d, err := time.ParseInLocation(time.DateOnly, ds, tz)
		if err != nil {
			return weather.RawForecast{}, fmt.Errorf("parse daily date %q: %w", ds, err)
		}
		fc.Daily = append(fc.Daily, weather.RawDailyPoint{
			Date:                 d,
			Sunrise:              parseOptionalTime(at(p.Daily.Sunrise, i), tz),
			Sunset:               parseOptionalTime(at(p.Daily.Sunset, i), tz),
			TempMax:              at(p.Daily.Temperature2MMax, i),
			TempMin:              at(p.Daily.Temperature2MMin, i),
			PrecipProbabilityMax: int(at(p.Daily.PrecipitationProbabilityMax, i)),
			SnowfallSum:          at(p.Daily.SnowfallSum, i),
			RainSum:              at(p.Daily.RainSum, i),
			WeatherCode:          at(p.Daily.WeatherCode, i),
		})
	}

	return fc, nil
}

// at returns the i-th value, or the zero value when it is missing or null.
func at[T any](vs []*T, i int) T {
	var zero T
	if i >= len(vs) || vs[i] == nil {
		return zero
	}
	return *vs[i]
}

func parseOptionalTime(s string, tz *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(openMeteoTimeLayout, s, tz)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ weather.Provider = (*OpenMeteoProvider)(nil)
