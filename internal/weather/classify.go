package weather

// Thresholds shared by the rule sets. Temperatures are °F, rain is mm,
// precipitation is a probability in percent, wind is mph.
const (
	rainThresholdMM = 2.5
	snowThreshold   = 2.0
	lookbackHours   = 6
)

// DayFacts are the inputs of the daily-skiing rules, derived from a day and
// its two predecessors.
type DayFacts struct {
	TempMax   float64
	TempMin   float64
	PrecipMax int
	SnowSum   float64

	HasSnowCode     bool
	HasRainCode     bool
	HasFreezingCode bool

	ActualRain     float64
	YesterdayRain  bool
	FrozeOvernight bool
	WarmsDuringDay bool
	WarmWetStretch bool
}

// HourFacts are the inputs of the hourly rules, derived from an hour and its
// lookback window.
type HourFacts struct {
	Temp   float64
	Precip int

	Snowing   bool
	HeavySnow bool
	Raining   bool
	HeavyRain bool
	Freezing  bool
	Drizzle   bool
	Dry       bool

	RecentRain         bool
	RecentSnow         bool
	HadFreezeAfterRain bool

	Windy     bool
	VeryWindy bool
}

// Classifier assigns quality tags using a code table fixed at construction.
type Classifier struct {
	codes     CodeTable
	rainLike  CodeSet
	daily     RuleSet[DayFacts]
	hourlySki RuleSet[HourFacts]
	dogWalk   RuleSet[HourFacts]
}

// NewClassifier builds the three rule sets over codes.
func NewClassifier(codes CodeTable) *Classifier {
	return &Classifier{
		codes:     codes,
		rainLike:  codes.Rain.Union(codes.Drizzle),
		daily:     dailySkiRules(),
		hourlySki: hourlySkiRules(),
		dogWalk:   dogWalkRules(),
	}
}

// DailyRules exposes the daily-skiing rule set.
func (c *Classifier) DailyRules() RuleSet[DayFacts] { return c.daily }

// HourlySkiRules exposes the hourly-skiing rule set.
func (c *Classifier) HourlySkiRules() RuleSet[HourFacts] { return c.hourlySki }

// DogWalkRules exposes the hourly dog-walk rule set.
func (c *Classifier) DogWalkRules() RuleSet[HourFacts] { return c.dogWalk }

func rainQualifies(d *DayRecord) bool {
	return d.RainSum >= rainThresholdMM && d.DaylightTempMax > 34
}

// DayFacts derives the daily rule inputs. prev is yesterday and prev2 the day
// before; either may be nil at the start of a series.
func (c *Classifier) DayFacts(day DayRecord, prev, prev2 *DayRecord) DayFacts {
	f := DayFacts{
		TempMax:         day.DaylightTempMax,
		TempMin:         day.DaylightTempMin,
		PrecipMax:       day.DaylightPrecipMax,
		SnowSum:         day.DaylightSnowSum,
		HasSnowCode:     c.codes.Snow.Any(day.DaylightCodes),
		HasRainCode:     c.codes.Rain.Any(day.DaylightCodes),
		HasFreezingCode: c.codes.Freezing.Any(day.DaylightCodes),
		WarmsDuringDay:  day.DaylightTempMax >= 37,
	}

	if rainQualifies(&day) {
		f.ActualRain = day.RainSum
	}
	if prev != nil {
		f.YesterdayRain = rainQualifies(prev)
		f.FrozeOvernight = prev.DaylightTempMin < 32
	}
	if prev != nil && prev2 != nil {
		f.WarmWetStretch = (rainQualifies(prev) || rainQualifies(prev2)) &&
			(prev.DaylightTempMax > 38 || prev2.DaylightTempMax > 38)
	}
	return f
}

// EvaluateDay classifies a day and reports which rule fired.
func (c *Classifier) EvaluateDay(day DayRecord, prev, prev2 *DayRecord) (Quality, string) {
	return c.daily.Evaluate(c.DayFacts(day, prev, prev2))
}

// ClassifyDay returns the daily-skiing quality of day.
func (c *Classifier) ClassifyDay(day DayRecord, prev, prev2 *DayRecord) Quality {
	q, _ := c.EvaluateDay(day, prev, prev2)
	return q
}

// ClassifyDays returns a copy of days with Quality set, looking back at the two
// preceding records in construction order.
func (c *Classifier) ClassifyDays(days []DayRecord) []DayRecord {
	out := make([]DayRecord, len(days))
	copy(out, days)
	for i := range out {
		var prev, prev2 *DayRecord
		if i > 0 {
			prev = &days[i-1]
		}
		if i > 1 {
			prev2 = &days[i-2]
		}
		out[i].Quality = c.ClassifyDay(days[i], prev, prev2)
	}
	return out
}

func (c *Classifier) hourFacts(hours []HourRecord, index int, rainLike CodeSet) HourFacts {
	h := hours[index]
	f := HourFacts{
		Temp:      float64(h.Temperature),
		Precip:    h.Precip,
		Snowing:   c.codes.Snow.Has(h.WeatherCode),
		HeavySnow: c.codes.HeavySnow.Has(h.WeatherCode),
		Raining:   c.codes.Rain.Has(h.WeatherCode),
		HeavyRain: c.codes.HeavyRain.Has(h.WeatherCode),
		Freezing:  c.codes.Freezing.Has(h.WeatherCode),
		Drizzle:   c.codes.Drizzle.Has(h.WeatherCode),
		Dry:       c.codes.Dry.Has(h.WeatherCode),
		Windy:     h.Wind >= 15 || h.Gusts >= 25,
		VeryWindy: h.Wind >= 25 || h.Gusts >= 35,
	}

	for i := max(0, index-lookbackHours); i < index; i++ {
		p := hours[i]
		if rainLike.Has(p.WeatherCode) {
			f.RecentRain = true
		}
		if c.codes.Snow.Has(p.WeatherCode) || p.Snowfall > 0 {
			f.RecentSnow = true
		}
		if f.RecentRain && p.Temperature < 32 {
			f.HadFreezeAfterRain = true
		}
	}
	return f
}

// SkiHourFacts derives the hourly-skiing inputs; only hours[:index+1] are read.
func (c *Classifier) SkiHourFacts(hours []HourRecord, index int) HourFacts {
	return c.hourFacts(hours, index, c.codes.Rain)
}

// DogWalkHourFacts derives the dog-walk inputs; drizzle counts as recent rain.
func (c *Classifier) DogWalkHourFacts(hours []HourRecord, index int) HourFacts {
	return c.hourFacts(hours, index, c.rainLike)
}

// ClassifyHourSki applies the hourly-skiing rules. Callers tag non-daylight
// hours as night instead of calling this.
func (c *Classifier) ClassifyHourSki(hours []HourRecord, index int) Quality {
	q, _ := c.hourlySki.Evaluate(c.SkiHourFacts(hours, index))
	return q
}

// ClassifyHourDogWalk applies the dog-walk rules.
func (c *Classifier) ClassifyHourDogWalk(hours []HourRecord, index int) Quality {
	q, _ := c.dogWalk.Evaluate(c.DogWalkHourFacts(hours, index))
	return q
}

// ClassifyHours returns a copy of hours with Quality set for activity.
// Lookback always reads the unmodified input, so a record never depends on a
// later one.
func (c *Classifier) ClassifyHours(hours []HourRecord, activity Activity) []HourRecord {
	out := make([]HourRecord, len(hours))
	copy(out, hours)
	for i := range out {
		switch {
		case activity == ActivityDogWalk:
			out[i].Quality = c.ClassifyHourDogWalk(hours, i)
		case !hours[i].Daylight:
			out[i].Quality = QualityNight
		default:
			out[i].Quality = c.ClassifyHourSki(hours, i)
		}
	}
	return out
}

func dailySkiRules() RuleSet[DayFacts] {
	return NewRuleSet(QualityIcy,
		Rule[DayFacts]{Name: "freezing-precip", Tag: QualityIcy, When: func(f DayFacts) bool {
			return f.HasFreezingCode
		}},
		Rule[DayFacts]{Name: "fresh-snow", Tag: QualityPowder, When: func(f DayFacts) bool {
			return (f.SnowSum >= snowThreshold || f.HasSnowCode) && f.TempMax <= 34
		}},
		Rule[DayFacts]{Name: "rain-above-freezing", Tag: QualityNoGo, When: func(f DayFacts) bool {
			return f.HasRainCode && f.TempMax > 34
		}},
		Rule[DayFacts]{Name: "warm-and-wet", Tag: QualityNoGo, When: func(f DayFacts) bool {
			return f.TempMax > 38 && f.PrecipMax > 40
		}},
		Rule[DayFacts]{Name: "hot-and-damp", Tag: QualityNoGo, When: func(f DayFacts) bool {
			return f.TempMax > 45 && f.PrecipMax > 25
		}},
		Rule[DayFacts]{Name: "measured-rain", Tag: QualityNoGo, When: func(f DayFacts) bool {
			return f.ActualRain >= rainThresholdMM && f.TempMax > 36
		}},
		Rule[DayFacts]{Name: "rain-then-freeze-softens", Tag: QualityFair, When: func(f DayFacts) bool {
			return f.YesterdayRain && f.FrozeOvernight && f.WarmsDuringDay
		}},
		Rule[DayFacts]{Name: "rain-then-freeze", Tag: QualityIcy, When: func(f DayFacts) bool {
			return f.YesterdayRain && f.FrozeOvernight
		}},
		Rule[DayFacts]{Name: "rain-yesterday", Tag: QualityFair, When: func(f DayFacts) bool {
			return f.YesterdayRain
		}},
		Rule[DayFacts]{Name: "warm-wet-stretch-refrozen", Tag: QualityIcy, When: func(f DayFacts) bool {
			return f.WarmWetStretch && f.FrozeOvernight && !f.WarmsDuringDay
		}},
		Rule[DayFacts]{Name: "warm-wet-stretch", Tag: QualityFair, When: func(f DayFacts) bool {
			return f.WarmWetStretch
		}},
		Rule[DayFacts]{Name: "cold-and-settled", Tag: QualityGood, When: func(f DayFacts) bool {
			return f.TempMax <= 32 && f.PrecipMax <= 50
		}},
		Rule[DayFacts]{Name: "cold-night-dry", Tag: QualityGood, When: func(f DayFacts) bool {
			return f.TempMin < 30 && f.PrecipMax <= 30
		}},
		Rule[DayFacts]{Name: "near-freezing-wet", Tag: QualityIcy, When: func(f DayFacts) bool {
			return f.TempMax > 32 && f.TempMax <= 40 && f.PrecipMax > 40
		}},
		Rule[DayFacts]{Name: "mostly-dry", Tag: QualityFair, When: func(f DayFacts) bool {
			return f.PrecipMax <= 20
		}},
		Rule[DayFacts]{Name: "cool-and-moderate", Tag: QualityFair, When: func(f DayFacts) bool {
			return f.TempMax <= 40 && f.PrecipMax <= 50
		}},
	)
}

func hourlySkiRules() RuleSet[HourFacts] {
	return NewRuleSet(QualityIcy,
		Rule[HourFacts]{Name: "freezing-precip", Tag: QualityIcy, When: func(f HourFacts) bool {
			return f.Freezing
		}},
		Rule[HourFacts]{Name: "snowing", Tag: QualityPowder, When: func(f HourFacts) bool {
			return f.Snowing && f.Temp <= 34
		}},
		Rule[HourFacts]{Name: "recent-snow-dry", Tag: QualityPowder, When: func(f HourFacts) bool {
			return f.RecentSnow && f.Temp <= 32 && f.Dry && f.Precip <= 30
		}},
		Rule[HourFacts]{Name: "rain-above-freezing", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.Raining && f.Temp > 34
		}},
		Rule[HourFacts]{Name: "warm-and-wet", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.Temp > 38 && f.Precip > 50 && !f.Snowing
		}},
		Rule[HourFacts]{Name: "refrozen-rain", Tag: QualityIcy, When: func(f HourFacts) bool {
			return f.RecentRain && f.HadFreezeAfterRain && f.Temp < 34
		}},
		Rule[HourFacts]{Name: "recent-rain-frozen", Tag: QualityIcy, When: func(f HourFacts) bool {
			return f.RecentRain && f.Temp <= 32
		}},
		Rule[HourFacts]{Name: "recent-rain-slush", Tag: QualityIcy, When: func(f HourFacts) bool {
			return f.RecentRain && f.Temp > 32 && f.Temp < 37
		}},
		Rule[HourFacts]{Name: "recent-rain-soft", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.RecentRain && f.Temp >= 37
		}},
		Rule[HourFacts]{Name: "dry-and-cold", Tag: QualityGood, When: func(f HourFacts) bool {
			return f.Dry && f.Temp >= 15 && f.Temp < 40 && f.Precip <= 20
		}},
		Rule[HourFacts]{Name: "dry-and-cool", Tag: QualityGood, When: func(f HourFacts) bool {
			return f.Dry && f.Temp < 40 && f.Precip <= 40
		}},
		Rule[HourFacts]{Name: "near-freezing-wet", Tag: QualityIcy, When: func(f HourFacts) bool {
			return !f.Snowing && f.Temp >= 28 && f.Temp <= 35 && f.Precip > 40
		}},
		Rule[HourFacts]{Name: "dry-low-precip", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Dry && f.Precip <= 30
		}},
		Rule[HourFacts]{Name: "cool-and-moderate", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Temp <= 40 && f.Precip <= 50
		}},
	)
}

func dogWalkRules() RuleSet[HourFacts] {
	return NewRuleSet(QualityFair,
		Rule[HourFacts]{Name: "freezing-precip", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.Freezing
		}},
		Rule[HourFacts]{Name: "heavy-rain", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.HeavyRain
		}},
		Rule[HourFacts]{Name: "windy-rain", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return (f.Raining || f.Drizzle) && f.Windy
		}},
		Rule[HourFacts]{Name: "windy-heavy-snow", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.HeavySnow && f.Windy
		}},
		Rule[HourFacts]{Name: "very-windy", Tag: QualityNoGo, When: func(f HourFacts) bool {
			return f.VeryWindy
		}},
		Rule[HourFacts]{Name: "refrozen-rain", Tag: QualityIcy, When: func(f HourFacts) bool {
			return f.HadFreezeAfterRain && f.Temp < 35
		}},
		Rule[HourFacts]{Name: "calm-rain", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Raining && !f.Windy
		}},
		Rule[HourFacts]{Name: "calm-drizzle", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Drizzle && !f.Windy
		}},
		Rule[HourFacts]{Name: "windy-snow", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Snowing && f.Windy
		}},
		Rule[HourFacts]{Name: "windy-dry", Tag: QualityFair, When: func(f HourFacts) bool {
			return f.Windy && f.Dry
		}},
		Rule[HourFacts]{Name: "calm-snow", Tag: QualityGood, When: func(f HourFacts) bool {
			return f.Snowing && !f.Windy
		}},
		Rule[HourFacts]{Name: "calm-dry", Tag: QualityGood, When: func(f HourFacts) bool {
			return f.Dry && !f.Windy
		}},
	)
}
