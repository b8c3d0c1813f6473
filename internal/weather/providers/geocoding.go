package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/gowindow/internal/weather"
)

const (
	geocodingFetchCount = 50
	maxSearchResults    = 10
)

var stateAbbrev = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
}

var abbrevToState = func() map[string]string {
	m := make(map[string]string, len(stateAbbrev))
	for name, abbr := range stateAbbrev {
		m[strings.ToLower(abbr)] = name
	}
	return m
}()

var cityStatePattern = regexp.MustCompile(`^(.+?),\s*(.+)$`)

// ParseCityState splits "city, state" input. state is the lowercase full US state
// name, or empty when the suffix is not a recognised state.
func ParseCityState(query string) (city, state string) {
	city = strings.TrimSpace(query)
	m := cityStatePattern.FindStringSubmatch(query)
	if m == nil {
		return city, ""
	}

	city = strings.TrimSpace(m[1])
	input := strings.ToLower(strings.TrimSpace(m[2]))
	if _, ok := stateAbbrev[input]; ok {
		return city, input
	}
	if name, ok := abbrevToState[input]; ok {
		return city, name
	}
	return city, ""
}

// GeocodingClient searches places through the Open-Meteo geocoding API.
type GeocodingClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	cache   *cache.Cache
}

// NewGeocodingClient creates a client whose results are cached for ttl.
func NewGeocodingClient(client *http.Client, limiter *rate.Limiter, baseURL string, ttl time.Duration) *GeocodingClient {
	return &GeocodingClient{
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
			Limiter: limiter,
		},
		circuit: newCircuitBreaker("openmeteo-geocoding"),
		cache:   cache.New(ttl, 2*ttl),
	}
}

// Search returns up to 10 places matching query. With a "city, state" query the
// results are narrowed to that US state when any of them match.
func (g *GeocodingClient) Search(ctx context.Context, query string) ([]weather.Place, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	if cached, ok := g.cache.Get(key); ok {
		return cached.([]weather.Place), nil
	}

	city, state := ParseCityState(query)

	values := url.Values{}
	values.Set("name", city)
	values.Set("count", fmt.Sprint(geocodingFetchCount))
	values.Set("language", "en")
	values.Set("format", "json")

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, getRequest(g.baseURL, values))
	if err != nil {
		return nil, fmt.Errorf("geocoding search: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Results []weather.Place `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	results := filterByState(payload.Results, state)
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	g.cache.Set(key, results, cache.DefaultExpiration)
	return results, nil
}

func filterByState(places []weather.Place, state string) []weather.Place {
	if state == "" || len(places) == 0 {
		return places
	}
	filtered := make([]weather.Place, 0, len(places))
	for _, p := range places {
		if strings.ToLower(p.Admin1) == state {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return places
	}
	return filtered
}
