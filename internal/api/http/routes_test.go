package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/gowindow/internal/metrics"
	"github.com/i474232898/gowindow/internal/store"
	"github.com/i474232898/gowindow/internal/weather"
)

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	err error
}

func (p stubProvider) Name() string { return "stub" }

func (p stubProvider) FetchDaily(_ context.Context, _ weather.Location) (weather.RawForecast, error) {
	if p.err != nil {
		return weather.RawForecast{}, p.err
	}
	return testForecast(), nil
}

func (p stubProvider) FetchHourly(_ context.Context, _ weather.Location) (weather.RawForecast, error) {
	if p.err != nil {
		return weather.RawForecast{}, p.err
	}
	return testForecast(), nil
}

// testForecast covers 14..17 Jan with a snowy 16th.
func testForecast() weather.RawForecast {
	fc := weather.RawForecast{Timezone: "UTC"}
	for d := 0; d < 4; d++ {
		date := time.Date(2025, 1, 14+d, 0, 0, 0, 0, time.UTC)
		snow := 0.0
		code := 3
		if d == 2 {
			snow, code = 4, 73
		}
		fc.Daily = append(fc.Daily, weather.RawDailyPoint{
			Date:        date,
			Sunrise:     date.Add(7 * time.Hour),
			Sunset:      date.Add(17 * time.Hour),
			TempMax:     25,
			TempMin:     15,
			SnowfallSum: snow,
			WeatherCode: code,
		})
		for h := 0; h < 24; h++ {
			fc.Hourly = append(fc.Hourly, weather.RawHourlyPoint{
				Time:        date.Add(time.Duration(h) * time.Hour),
				Temperature: 20,
				Snowfall:    snow / 24,
				WeatherCode: code,
				WindSpeed:   5,
			})
		}
	}
	return fc
}

type stubFinder struct {
	places []weather.Place
	err    error
}

func (f stubFinder) Search(context.Context, string) ([]weather.Place, error) {
	return f.places, f.err
}

type stubTimezones struct{}

func (stubTimezones) Timezone(context.Context, float64, float64) (string, error) {
	return "America/Denver", nil
}

func newTestApp(t *testing.T, provider weather.Provider, finder PlaceFinder) *fiber.App {
	t.Helper()

	repo, err := store.OpenLocationRepository(filepath.Join(t.TempDir(), "locations.db"), 3)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	svc := weather.NewService(store.NewMemoryStore(10, time.Hour), provider, weather.Options{
		Recorder: m,
		Now:      func() time.Time { return testNow },
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{
		Service:   svc,
		Locations: repo,
		Places:    finder,
		Timezones: stubTimezones{},
		Gatherer:  reg,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func addVail(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations",
		`{"name":"Vail","lat":39.64,"lon":-106.37}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["slug"].(string)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownActivity(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/activities/surfing/locations", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, true, body["error"])
}

func TestAddLocationValidation(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"lat":40,"lon":-105}`},
		{"missing latitude", `{"name":"Somewhere","lon":-105}`},
		{"latitude out of range", `{"name":"Somewhere","lat":91,"lon":-105}`},
		{"longitude out of range", `{"name":"Somewhere","lat":40,"lon":-181}`},
		{"bad timezone", `{"name":"Somewhere","lat":40,"lon":-105,"timezone":"Mars/Olympus"}`},
		{"malformed", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestLocationLifecycle(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations",
		`{"name":"Vail","lat":39.64,"lon":-106.37}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "vail", body["slug"])
	assert.Equal(t, "America/Denver", body["timezone"])
	assert.Equal(t, "39.6400, -106.3700", body["location"])

	// within 0.01° of Vail
	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations",
		`{"name":"Vail Village","lat":39.645,"lon":-106.372}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Location already in list", body["message"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations",
		`{"name":"Stowe","lat":44.53,"lon":-72.78,"timezone":"America/New_York"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations/stowe/move", `{"direction":-1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	locs := body["locations"].([]any)
	require.Len(t, locs, 2)
	assert.Equal(t, "stowe", locs[0].(map[string]any)["slug"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/activities/skiing/locations/stowe/move", `{"direction":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// dog-walk list is independent
	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/activities/dogwalk/locations", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["locations"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/activities/skiing/locations/vail", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/activities/skiing/locations/vail", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/activities/skiing/locations", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, body = doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations", "")
	assert.Empty(t, body["locations"])
}

func TestMaxLocations(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	for i, coords := range []string{`"lat":10,"lon":10`, `"lat":20,"lon":20`, `"lat":30,"lon":30`} {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/activities/dogwalk/locations",
			`{"name":"Park `+string(rune('A'+i))+`",`+coords+`}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/activities/dogwalk/locations",
		`{"name":"Park D","lat":40,"lon":40}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Maximum locations reached", body["message"])
}

func TestDailyForecast(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)
	slug := addVail(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/daily", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	days := body["days"].([]any)
	require.Len(t, days, 4)
	snowy := days[2].(map[string]any)
	assert.Equal(t, "powder", snowy["quality"])
	assert.Equal(t, "Powder", snowy["qualityLabel"])
	assert.Equal(t, true, days[0].(map[string]any)["isHistorical"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/daily?compact=true", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["days"].([]any), 3)
}

func TestHourlyForecast(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)
	slug := addVail(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/hourly", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hours := body["hours"].([]any)
	require.Len(t, hours, 96)
	assert.Equal(t, "night", hours[0].(map[string]any)["quality"])
}

func TestForecastUpstreamFailure(t *testing.T) {
	app := newTestApp(t, stubProvider{err: errors.New("upstream down")}, nil)
	slug := addVail(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/daily", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, true, body["error"])
}

func TestForecastUnknownLocation(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/nowhere/hourly", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSnapshotsValidation(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)
	slug := addVail(t, app)
	base := "/api/v1/activities/skiing/locations/" + slug + "/snapshots"

	// Missing range should return 400.
	resp, _ := doJSON(t, app, http.MethodGet, base, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Inverted range should also return 400.
	resp, _ = doJSON(t, app, http.MethodGet, base+"?from=2025-01-16T00:00:00Z&to=2025-01-15T00:00:00Z", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Nothing fetched yet.
	resp, _ = doJSON(t, app, http.MethodGet, base+"?from=2025-01-15T00:00:00Z&to=2025-01-16T00:00:00Z", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/daily", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, base+"?from=2025-01-15T00:00:00Z&to=2025-01-16T00:00:00Z", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["snapshots"].([]any), 1)
}

func TestSearch(t *testing.T) {
	finder := stubFinder{places: []weather.Place{{Name: "Stowe", Admin1: "Vermont"}}}
	app := newTestApp(t, stubProvider{}, finder)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/search?q=stowe,%20vt", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["results"].([]any), 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/search?q=s", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchNoResultsRendersEmptyList(t *testing.T) {
	app := newTestApp(t, stubProvider{}, stubFinder{})

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/search?q=atlantis", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["results"])
}

func TestSearchUnavailable(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/search?q=stowe", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSuggestions(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/suggestions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resorts := body["resorts"].([]any)
	require.Len(t, resorts, len(weather.SuggestedResorts))
	first := resorts[0].(map[string]any)
	assert.Equal(t, "whistler-blackcomb", first["slug"])
	assert.Equal(t, "Whistler, BC, Canada", first["location"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, stubProvider{}, nil)
	slug := addVail(t, app)
	_, _ = doJSON(t, app, http.MethodGet, "/api/v1/activities/skiing/locations/"+slug+"/daily", "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "gowindow_classified_records_total")
}
