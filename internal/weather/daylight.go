package weather

import "time"

// DefaultDaylightBuffer widens the sunrise/sunset interval on both ends.
const DefaultDaylightBuffer = 30 * time.Minute

// IsDaylight reports whether t falls inside [sunrise-buffer, sunset+buffer].
// All three timestamps must share the location's timezone; nothing is converted here.
func IsDaylight(t, sunrise, sunset time.Time, buffer time.Duration) bool {
	start := sunrise.Add(-buffer)
	end := sunset.Add(buffer)
	return !t.Before(start) && !t.After(end)
}

// sunTable indexes sunrise/sunset pairs by calendar date.
type sunTable map[string]RawDailyPoint

func newSunTable(daily []RawDailyPoint) sunTable {
	st := make(sunTable, len(daily))
	for _, d := range daily {
		if !d.HasSunTimes() {
			continue
		}
		st[dateKey(d.Date)] = d
	}
	return st
}

// lookup returns the day carrying sun times for t's calendar date.
func (st sunTable) lookup(t time.Time) (RawDailyPoint, bool) {
	d, ok := st[dateKey(t)]
	return d, ok
}
