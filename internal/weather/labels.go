package weather

import "fmt"

var skiingLabels = map[Quality]string{
	QualityPowder: "Powder",
	QualityGood:   "Good",
	QualityFair:   "Fair",
	QualityIcy:    "Icy",
	QualityNoGo:   "No-Go",
	QualityNight:  "Night",
}

var dogWalkLabels = map[Quality]string{
	QualityPowder: "Good",
	QualityGood:   "Good",
	QualityFair:   "Fair",
	QualityIcy:    "Icy",
	QualityNoGo:   "No-Go",
	QualityNight:  "Night",
}

// Label maps a quality tag to its display label for activity.
// Unknown tags are returned unchanged.
func Label(q Quality, activity Activity) string {
	labels := skiingLabels
	if activity == ActivityDogWalk {
		labels = dogWalkLabels
	}
	if l, ok := labels[q]; ok {
		return l
	}
	return string(q)
}

// IconTable maps weather codes to OpenWeatherMap icon identifiers.
type IconTable struct {
	icons    map[int]string
	fallback string
}

// DefaultIconTable returns the standard WMO code to icon mapping.
func DefaultIconTable() IconTable {
	return IconTable{
		icons: map[int]string{
			0: "01", 1: "01", 2: "02", 3: "03",
			45: "50", 48: "50",
			51: "09", 53: "09", 55: "09", 56: "09", 57: "09",
			61: "10", 63: "10", 65: "10", 66: "10", 67: "10",
			71: "13", 73: "13", 75: "13", 77: "13",
			80: "09", 81: "09", 82: "09",
			85: "13", 86: "13",
			95: "11", 96: "11", 99: "11",
		},
		fallback: "03",
	}
}

// Icon returns the icon identifier for code, or the fallback for unknown codes.
func (t IconTable) Icon(code int) string {
	if icon, ok := t.icons[code]; ok {
		return icon
	}
	return t.fallback
}

// URL returns the day or night icon URL for code.
func (t IconTable) URL(code int, daylight bool) string {
	suffix := "n"
	if daylight {
		suffix = "d"
	}
	return fmt.Sprintf("https://openweathermap.org/img/wn/%s%s@2x.png", t.Icon(code), suffix)
}
