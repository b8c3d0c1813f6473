package weather

import "time"

// DaylightStats are the statistics of one day restricted to the daylight window.
type DaylightStats struct {
	TempMax       float64 `json:"tempMax"`
	TempMin       float64 `json:"tempMin"`
	PrecipMax     int     `json:"precipMax"`
	SnowSum       float64 `json:"snowSum"`
	Codes         []int   `json:"weatherCodes"`
	HourlyTemps   []int   `json:"hourlyTemps"`
	HourlyPrecips []int   `json:"hourlyPrecips"`
}

// AggregatedDay merges the API's full-day statistics with daylight statistics.
// FromHourly is false when no daylight hour matched and the full-day values were copied.
type AggregatedDay struct {
	Date        time.Time     `json:"date"`
	TempMax     float64       `json:"tempMax"`
	TempMin     float64       `json:"tempMin"`
	PrecipMax   int           `json:"precipMax"`
	SnowSum     float64       `json:"snowSum"`
	RainSum     float64       `json:"rainSum"`
	WeatherCode int           `json:"weatherCode"`
	Daylight    DaylightStats `json:"daylight"`
	FromHourly  bool          `json:"fromHourly"`
}

// Aggregator folds hourly forecast points into per-day daylight statistics.
type Aggregator struct {
	buffer time.Duration
}

// NewAggregator creates an Aggregator using the given daylight buffer.
func NewAggregator(buffer time.Duration) *Aggregator {
	return &Aggregator{buffer: buffer}
}

type daylightBucket struct {
	temps         []float64
	precips       []int
	snowfall      float64
	codes         []int
	hourlyTemps   []int
	hourlyPrecips []int
}

// Aggregate returns one AggregatedDay per entry of daily, in the same order.
// Hourly points whose date has no sun times, or that fall outside the daylight
// window, contribute to no day.
func (a *Aggregator) Aggregate(daily []RawDailyPoint, hourly []RawHourlyPoint) []AggregatedDay {
	sun := newSunTable(daily)
	buckets := make(map[string]*daylightBucket)

	for _, h := range hourly {
		day, ok := sun.lookup(h.Time)
		if !ok {
			continue
		}
		if !IsDaylight(h.Time, day.Sunrise, day.Sunset, a.buffer) {
			continue
		}

		key := dateKey(h.Time)
		b, ok := buckets[key]
		if !ok {
			b = &daylightBucket{}
			buckets[key] = b
		}
		b.temps = append(b.temps, h.Temperature)
		b.precips = append(b.precips, h.PrecipProbability)
		b.snowfall += h.Snowfall
		b.codes = append(b.codes, h.WeatherCode)
		b.hourlyTemps = append(b.hourlyTemps, int(roundHalfUp(h.Temperature)))
		b.hourlyPrecips = append(b.hourlyPrecips, h.PrecipProbability)
	}

	out := make([]AggregatedDay, 0, len(daily))
	for _, d := range daily {
		day := AggregatedDay{
			Date:        d.Date,
			TempMax:     d.TempMax,
			TempMin:     d.TempMin,
			PrecipMax:   d.PrecipProbabilityMax,
			SnowSum:     d.SnowfallSum,
			RainSum:     d.RainSum,
			WeatherCode: d.WeatherCode,
		}

		if b, ok := buckets[dateKey(d.Date)]; ok && len(b.temps) > 0 {
			day.Daylight = DaylightStats{
				TempMax:       maxFloat(b.temps),
				TempMin:       minFloat(b.temps),
				PrecipMax:     maxInt(b.precips),
				SnowSum:       b.snowfall,
				Codes:         b.codes,
				HourlyTemps:   b.hourlyTemps,
				HourlyPrecips: b.hourlyPrecips,
			}
			day.FromHourly = true
		} else {
			day.Daylight = DaylightStats{
				TempMax:       d.TempMax,
				TempMin:       d.TempMin,
				PrecipMax:     d.PrecipProbabilityMax,
				SnowSum:       d.SnowfallSum,
				Codes:         []int{d.WeatherCode},
				HourlyTemps:   []int{int(roundHalfUp(d.TempMax))},
				HourlyPrecips: []int{d.PrecipProbabilityMax},
			}
		}

		out = append(out, day)
	}

	return out
}

func maxFloat(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minFloat(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxInt(vs []int) int {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
