package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	tests := []struct {
		q       Quality
		skiing  string
		dogWalk string
	}{
		{QualityPowder, "Powder", "Good"},
		{QualityGood, "Good", "Good"},
		{QualityFair, "Fair", "Fair"},
		{QualityIcy, "Icy", "Icy"},
		{QualityNoGo, "No-Go", "No-Go"},
		{QualityNight, "Night", "Night"},
		{Quality("slushy"), "slushy", "slushy"},
	}

	for _, tt := range tests {
		t.Run(string(tt.q), func(t *testing.T) {
			assert.Equal(t, tt.skiing, Label(tt.q, ActivitySkiing))
			assert.Equal(t, tt.dogWalk, Label(tt.q, ActivityDogWalk))
		})
	}
}

func TestIconTable(t *testing.T) {
	icons := DefaultIconTable()

	assert.Equal(t, "13", icons.Icon(75))
	assert.Equal(t, "10", icons.Icon(61))
	assert.Equal(t, "03", icons.Icon(12345))
	assert.Equal(t, "https://openweathermap.org/img/wn/13d@2x.png", icons.URL(73, true))
	assert.Equal(t, "https://openweathermap.org/img/wn/01n@2x.png", icons.URL(0, false))
}

func TestParseActivity(t *testing.T) {
	a, err := ParseActivity(" Skiing ")
	require.NoError(t, err)
	assert.Equal(t, ActivitySkiing, a)

	a, err = ParseActivity("dogwalk")
	require.NoError(t, err)
	assert.Equal(t, ActivityDogWalk, a)

	_, err = ParseActivity("surfing")
	assert.ErrorIs(t, err, ErrUnknownActivity)
}

func TestDefaultCodeTable(t *testing.T) {
	codes := DefaultCodeTable()

	assert.True(t, codes.Snow.Has(86))
	assert.True(t, codes.HeavySnow.Has(75))
	assert.False(t, codes.HeavySnow.Has(73))
	assert.True(t, codes.Freezing.Has(67))
	assert.True(t, codes.Drizzle.Any([]int{0, 55}))
	assert.False(t, codes.Rain.Any(nil))
	assert.True(t, codes.Rain.Union(codes.Drizzle).Has(51))
	assert.False(t, codes.Rain.Has(51), "union must not modify its receiver")
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "39.6400,-106.3700", Location{Slug: "vail", Latitude: 39.64, Longitude: -106.37}.Key())
	assert.Equal(t, "39.6400,-106.3700@America/Denver",
		Location{Latitude: 39.64, Longitude: -106.37, Timezone: "America/Denver"}.Key())

	// Same slug in two activities, different places.
	home := Location{Slug: "home", Latitude: 39.64, Longitude: -106.37}
	otherHome := Location{Slug: "home", Latitude: 44.53, Longitude: -72.78}
	assert.NotEqual(t, home.Key(), otherHome.Key())
	assert.Equal(t, "UTC", Location{Timezone: "Nowhere/Special"}.TimeLocation().String())
}
