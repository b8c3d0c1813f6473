package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	assert.InDelta(t, 3, roundHalfUp(2.5), 0)
	assert.InDelta(t, -2, roundHalfUp(-2.5), 0)
	assert.InDelta(t, 32, roundHalfUp(32.4), 0)
	assert.InDelta(t, -3, roundHalfUp(-2.6), 0)
}

func TestBuildDays(t *testing.T) {
	tz, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	days := []AggregatedDay{
		{Date: time.Date(2025, 1, 14, 0, 0, 0, 0, tz), Daylight: DaylightStats{TempMax: 32.5, TempMin: -2.5}},
		{Date: time.Date(2025, 1, 15, 0, 0, 0, 0, tz), Daylight: DaylightStats{TempMax: 20.4, TempMin: 10}},
	}
	// 03:00 UTC on the 15th is still the 14th in New York.
	now := time.Date(2025, 1, 15, 3, 0, 0, 0, time.UTC)

	out := BuildDays(days, now)
	require.Len(t, out, 2)

	assert.Equal(t, "Tue 14", out[0].Label)
	assert.Equal(t, "Wed 15", out[1].Label)
	assert.InDelta(t, 33, out[0].DaylightTempMax, 0)
	assert.InDelta(t, -2, out[0].DaylightTempMin, 0)
	assert.InDelta(t, 20, out[1].DaylightTempMax, 0)
	assert.False(t, out[0].IsHistorical)
	assert.False(t, out[1].IsHistorical)

	out = BuildDays(days, time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))
	assert.True(t, out[0].IsHistorical)
	assert.False(t, out[1].IsHistorical)
}

func TestBuildHours(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	daily := []RawDailyPoint{{Date: date, Sunrise: date.Add(7 * time.Hour), Sunset: date.Add(17 * time.Hour)}}
	hourly := []RawHourlyPoint{
		{Time: date, Temperature: 20.5, WindSpeed: 14.5, WindGusts: 24.4, WeatherCode: 3},
		{Time: date.Add(12 * time.Hour), Temperature: -0.5, PrecipProbability: 40},
		// No sun times for the 16th.
		{Time: date.Add(26 * time.Hour), Temperature: 10},
	}
	now := date.Add(6 * time.Hour)

	out := BuildHours(hourly, daily, now, DefaultDaylightBuffer)
	require.Len(t, out, 3)

	assert.Equal(t, 21, out[0].Temperature)
	assert.Equal(t, 15, out[0].Wind)
	assert.Equal(t, 24, out[0].Gusts)
	assert.False(t, out[0].Daylight)
	assert.True(t, out[0].IsNewDay)
	assert.True(t, out[0].IsHistorical)
	assert.Equal(t, "Wed", out[0].DayName)
	assert.Equal(t, 15, out[0].DayNum)

	assert.Equal(t, 0, out[1].Temperature)
	assert.True(t, out[1].Daylight)
	assert.False(t, out[1].IsNewDay)
	assert.False(t, out[1].IsHistorical)
	assert.Equal(t, 12, out[1].Hour)

	assert.True(t, out[2].Daylight, "hours without sun times default to daylight")
	assert.Equal(t, "Thu", out[2].DayName)
}

func TestWithinHorizon(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	var hours []HourRecord
	for h := -8; h < 72; h++ {
		hours = append(hours, HourRecord{Time: now.Add(time.Duration(h) * time.Hour)})
	}

	out := WithinHorizon(hours, now, DogWalkHorizon)
	require.Len(t, out, 8+25)
	assert.Equal(t, now.Add(DogWalkHorizon), out[len(out)-1].Time)
	assert.Len(t, hours, 80)
}

func TestVisibleDays(t *testing.T) {
	var days []DayRecord
	for i := 0; i < 15; i++ {
		days = append(days, DayRecord{Label: string(rune('a' + i)), IsHistorical: i < 5})
	}

	assert.Len(t, VisibleDays(days, false), 15)

	compact := VisibleDays(days, true)
	require.Len(t, compact, CompactDayLimit)
	assert.Equal(t, "f", compact[0].Label)
	assert.Equal(t, "o", compact[9].Label)

	assert.Len(t, VisibleDays(days[:8], true), 3)
}
