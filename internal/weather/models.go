package weather

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Activity selects which rule sets and labels apply to a forecast.
type Activity string

const (
	ActivitySkiing  Activity = "skiing"
	ActivityDogWalk Activity = "dogwalk"
)

// ErrUnknownActivity is returned when parsing an activity outside the closed set.
var ErrUnknownActivity = errors.New("unknown activity")

// Activities lists every supported activity.
var Activities = []Activity{ActivitySkiing, ActivityDogWalk}

// ParseActivity validates s against the supported activities.
func ParseActivity(s string) (Activity, error) {
	switch a := Activity(strings.ToLower(strings.TrimSpace(s))); a {
	case ActivitySkiing, ActivityDogWalk:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownActivity, s)
	}
}

// Quality is the classification output for a day or an hour.
type Quality string

const (
	QualityPowder Quality = "powder"
	QualityGood   Quality = "good"
	QualityFair   Quality = "fair"
	QualityIcy    Quality = "icy"
	QualityNoGo   Quality = "nogo"
	QualityNight  Quality = "night"
)

// Location is a geographic point whose forecast we classify.
// Timezone is an IANA zone name; forecast timestamps are interpreted in it.
type Location struct {
	Slug      string  `json:"slug"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timezone  string  `json:"timezone"`
	Label     string  `json:"location,omitempty"`
}

// Key identifies the forecast a location needs: its coordinates to four
// decimals and, when set, the timezone timestamps are requested in.
// Slugs are only unique within an activity, so they are not part of it.
func (l Location) Key() string {
	key := fmt.Sprintf("%.4f,%.4f", l.Latitude, l.Longitude)
	if l.Timezone != "" {
		key += "@" + l.Timezone
	}
	return key
}

// TimeLocation resolves the location's timezone, falling back to UTC.
func (l Location) TimeLocation() *time.Location {
	if l.Timezone == "" {
		return time.UTC
	}
	tz, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return tz
}

// Place is a geocoding search result.
type Place struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Elevation   float64 `json:"elevation"`
	Timezone    string  `json:"timezone"`
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Admin1      string  `json:"admin1"`
}

// RawHourlyPoint is one forecast hour as delivered by the upstream API.
// Absent snowfall, wind and gusts are carried as 0.
type RawHourlyPoint struct {
	Time              time.Time `json:"time"`
	Temperature       float64   `json:"temperature"`
	PrecipProbability int       `json:"precipProbability"`
	Snowfall          float64   `json:"snowfall"`
	WeatherCode       int       `json:"weatherCode"`
	WindSpeed         float64   `json:"windSpeed"`
	WindGusts         float64   `json:"windGusts"`
}

// RawDailyPoint is one calendar day as delivered by the upstream API.
// A zero Sunrise or Sunset means the value was absent.
type RawDailyPoint struct {
	Date                 time.Time `json:"date"`
	Sunrise              time.Time `json:"sunrise"`
	Sunset               time.Time `json:"sunset"`
	TempMax              float64   `json:"tempMax"`
	TempMin              float64   `json:"tempMin"`
	PrecipProbabilityMax int       `json:"precipProbabilityMax"`
	SnowfallSum          float64   `json:"snowfallSum"`
	RainSum              float64   `json:"rainSum"`
	WeatherCode          int       `json:"weatherCode"`
}

// HasSunTimes reports whether both sunrise and sunset are known for the day.
func (d RawDailyPoint) HasSunTimes() bool {
	return !d.Sunrise.IsZero() && !d.Sunset.IsZero()
}

// RawForecast is the parsed upstream payload for a single location.
type RawForecast struct {
	Latitude  float64          `json:"latitude"`
	Longitude float64          `json:"longitude"`
	Elevation float64          `json:"elevation"`
	Timezone  string           `json:"timezone"`
	Hourly    []RawHourlyPoint `json:"hourly"`
	Daily     []RawDailyPoint  `json:"daily"`
}

// DayRecord is the derived per-day view that the daily classifier consumes.
type DayRecord struct {
	Date        time.Time `json:"date"`
	Label       string    `json:"label"`
	TempMax     float64   `json:"tempMax"`
	TempMin     float64   `json:"tempMin"`
	PrecipMax   int       `json:"precip"`
	SnowSum     float64   `json:"snow"`
	RainSum     float64   `json:"rain"`
	WeatherCode int       `json:"weatherCode"`

	DaylightTempMax   float64 `json:"daylightTempMax"`
	DaylightTempMin   float64 `json:"daylightTempMin"`
	DaylightPrecipMax int     `json:"daylightPrecipMax"`
	DaylightSnowSum   float64 `json:"daylightSnowSum"`
	DaylightCodes     []int   `json:"daylightWeatherCodes"`
	HourlyTemps       []int   `json:"hourlyTemps"`
	HourlyPrecips     []int   `json:"hourlyPrecips"`

	IsHistorical bool    `json:"isHistorical"`
	Quality      Quality `json:"quality"`
}

// HourRecord is the derived per-hour view that the hourly classifiers consume.
type HourRecord struct {
	Time         time.Time `json:"time"`
	Hour         int       `json:"hour"`
	DayName      string    `json:"dayName"`
	DayNum       int       `json:"dayNum"`
	Temperature  int       `json:"temp"`
	Precip       int       `json:"precip"`
	Snowfall     float64   `json:"snow"`
	WeatherCode  int       `json:"weatherCode"`
	Wind         int       `json:"wind"`
	Gusts        int       `json:"gusts"`
	Daylight     bool      `json:"daylight"`
	IsHistorical bool      `json:"isHistorical"`
	IsNewDay     bool      `json:"isNewDay"`
	Quality      Quality   `json:"quality"`
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -2.5 becomes -2 and 2.5 becomes 3.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
