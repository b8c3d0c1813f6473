package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const geocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

func TestParseCityState(t *testing.T) {
	tests := []struct {
		query string
		city  string
		state string
	}{
		{"Denver", "Denver", ""},
		{"  Denver  ", "Denver", ""},
		{"Denver, CO", "Denver", "colorado"},
		{"Portland,maine", "Portland", "maine"},
		{"Springfield, new york", "Springfield", "new york"},
		{"Paris, France", "Paris", ""},
		{"Portland, or", "Portland", "oregon"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			city, state := ParseCityState(tt.query)
			assert.Equal(t, tt.city, city)
			assert.Equal(t, tt.state, state)
		})
	}
}

func newTestGeocoder() (*GeocodingClient, *httpmock.MockTransport) {
	mock := httpmock.NewMockTransport()
	return NewGeocodingClient(&http.Client{Transport: mock}, nil, geocodingURL, time.Minute), mock
}

func TestSearchFiltersByState(t *testing.T) {
	g, mock := newTestGeocoder()

	mock.RegisterResponder(http.MethodGet, geocodingURL,
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			if q.Get("name") != "Portland" || q.Get("count") != "50" || q.Get("format") != "json" {
				return httpmock.NewStringResponse(http.StatusBadRequest, "bad query"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"results":[
				{"name":"Portland","latitude":45.52,"longitude":-122.68,"timezone":"America/Los_Angeles","country_code":"US","admin1":"Oregon"},
				{"name":"Portland","latitude":43.66,"longitude":-70.26,"timezone":"America/New_York","country_code":"US","admin1":"Maine"}
			]}`), nil
		})

	places, err := g.Search(context.Background(), "Portland, ME")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Maine", places[0].Admin1)
	assert.Equal(t, "America/New_York", places[0].Timezone)

	// An unmatched state keeps every result.
	places, err = g.Search(context.Background(), "Portland, TX")
	require.NoError(t, err)
	assert.Len(t, places, 2)
}

func TestSearchLimitsAndCachesResults(t *testing.T) {
	g, mock := newTestGeocoder()

	var results []string
	for i := 0; i < 25; i++ {
		results = append(results, fmt.Sprintf(`{"name":"Springfield %d","latitude":%d,"longitude":-90}`, i, i))
	}
	mock.RegisterResponder(http.MethodGet, geocodingURL,
		httpmock.NewStringResponder(http.StatusOK, `{"results":[`+strings.Join(results, ",")+`]}`))

	places, err := g.Search(context.Background(), "Springfield")
	require.NoError(t, err)
	require.Len(t, places, 10)
	assert.Equal(t, "Springfield 0", places[0].Name)

	again, err := g.Search(context.Background(), "  springfield ")
	require.NoError(t, err)
	assert.Equal(t, places, again)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}

func TestSearchNoResults(t *testing.T) {
	g, mock := newTestGeocoder()
	mock.RegisterResponder(http.MethodGet, geocodingURL,
		httpmock.NewStringResponder(http.StatusOK, `{"generationtime_ms":0.5}`))

	places, err := g.Search(context.Background(), "Nowhereville")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestSearchClientError(t *testing.T) {
	g, mock := newTestGeocoder()
	mock.RegisterResponder(http.MethodGet, geocodingURL,
		httpmock.NewStringResponder(http.StatusBadRequest, `{"error":true}`))

	_, err := g.Search(context.Background(), "Denver")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}
