package weather

import (
	"fmt"
	"time"
)

// DogWalkHorizon limits dog-walk hourly forecasts to the next day.
const DogWalkHorizon = 24 * time.Hour

// CompactDayLimit is the number of upcoming days kept by VisibleDays in compact mode.
const CompactDayLimit = 10

// BuildDays turns aggregated days into DayRecords ready for classification.
// Temperatures are rounded half-up before the classifier sees them.
func BuildDays(days []AggregatedDay, now time.Time) []DayRecord {
	out := make([]DayRecord, 0, len(days))
	for _, d := range days {
		today := dateKey(now.In(d.Date.Location()))
		out = append(out, DayRecord{
			Date:              d.Date,
			Label:             fmt.Sprintf("%s %d", d.Date.Weekday().String()[:3], d.Date.Day()),
			TempMax:           roundHalfUp(d.TempMax),
			TempMin:           roundHalfUp(d.TempMin),
			PrecipMax:         d.PrecipMax,
			SnowSum:           d.SnowSum,
			RainSum:           d.RainSum,
			WeatherCode:       d.WeatherCode,
			DaylightTempMax:   roundHalfUp(d.Daylight.TempMax),
			DaylightTempMin:   roundHalfUp(d.Daylight.TempMin),
			DaylightPrecipMax: d.Daylight.PrecipMax,
			DaylightSnowSum:   d.Daylight.SnowSum,
			DaylightCodes:     d.Daylight.Codes,
			HourlyTemps:       d.Daylight.HourlyTemps,
			HourlyPrecips:     d.Daylight.HourlyPrecips,
			IsHistorical:      dateKey(d.Date) < today,
		})
	}
	return out
}

// BuildHours turns raw hourly points into HourRecords. An hour whose date has no
// sunrise/sunset in daily counts as daylight.
func BuildHours(hourly []RawHourlyPoint, daily []RawDailyPoint, now time.Time, buffer time.Duration) []HourRecord {
	sun := newSunTable(daily)
	out := make([]HourRecord, 0, len(hourly))
	for _, h := range hourly {
		daylight := true
		if d, ok := sun.lookup(h.Time); ok {
			daylight = IsDaylight(h.Time, d.Sunrise, d.Sunset, buffer)
		}
		out = append(out, HourRecord{
			Time:         h.Time,
			Hour:         h.Time.Hour(),
			DayName:      h.Time.Weekday().String()[:3],
			DayNum:       h.Time.Day(),
			Temperature:  int(roundHalfUp(h.Temperature)),
			Precip:       h.PrecipProbability,
			Snowfall:     h.Snowfall,
			WeatherCode:  h.WeatherCode,
			Wind:         int(roundHalfUp(h.WindSpeed)),
			Gusts:        int(roundHalfUp(h.WindGusts)),
			Daylight:     daylight,
			IsHistorical: h.Time.Before(now),
			IsNewDay:     h.Time.Hour() == 0,
		})
	}
	return out
}

// WithinHorizon keeps the hours no later than now+horizon. The input is not modified.
func WithinHorizon(hours []HourRecord, now time.Time, horizon time.Duration) []HourRecord {
	cutoff := now.Add(horizon)
	out := make([]HourRecord, 0, len(hours))
	for _, h := range hours {
		if h.Time.After(cutoff) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// VisibleDays returns the days to display. Compact mode keeps only the first
// CompactDayLimit upcoming days. Classification must already have run.
func VisibleDays(days []DayRecord, compact bool) []DayRecord {
	if !compact {
		return days
	}
	out := make([]DayRecord, 0, CompactDayLimit)
	for _, d := range days {
		if d.IsHistorical {
			continue
		}
		out = append(out, d)
		if len(out) == CompactDayLimit {
			break
		}
	}
	return out
}
