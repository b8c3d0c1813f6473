package common

import (
	"math"
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of non-alphanumerics into a dash.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// SameSpot reports whether two coordinates are within 0.01° on both axes.
func SameSpot(lat1, lon1, lat2, lon2 float64) bool {
	return math.Abs(lat1-lat2) < 0.01 && math.Abs(lon1-lon2) < 0.01
}
