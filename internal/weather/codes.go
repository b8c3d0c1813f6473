package weather

// CodeSet is an immutable set of WMO weather codes.
type CodeSet struct {
	codes map[int]struct{}
}

// NewCodeSet builds a set from the given codes.
func NewCodeSet(codes ...int) CodeSet {
	m := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return CodeSet{codes: m}
}

// Has reports whether code is a member of the set.
func (s CodeSet) Has(code int) bool {
	_, ok := s.codes[code]
	return ok
}

// Any reports whether at least one of codes is a member of the set.
func (s CodeSet) Any(codes []int) bool {
	for _, c := range codes {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Union returns a new set holding the members of both sets.
func (s CodeSet) Union(other CodeSet) CodeSet {
	m := make(map[int]struct{}, len(s.codes)+len(other.codes))
	for c := range s.codes {
		m[c] = struct{}{}
	}
	for c := range other.codes {
		m[c] = struct{}{}
	}
	return CodeSet{codes: m}
}

// CodeTable groups weather codes into the categories the classifiers reason about.
// It is configuration data: classifiers receive it at construction.
type CodeTable struct {
	Snow      CodeSet
	HeavySnow CodeSet
	Rain      CodeSet
	HeavyRain CodeSet
	Freezing  CodeSet
	Drizzle   CodeSet
	Dry       CodeSet
}

// DefaultCodeTable returns the Open-Meteo (WMO) code taxonomy.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		Snow:      NewCodeSet(71, 73, 75, 77, 85, 86),
		HeavySnow: NewCodeSet(75, 86),
		Rain:      NewCodeSet(61, 63, 65, 80, 81, 82),
		HeavyRain: NewCodeSet(65, 82),
		Freezing:  NewCodeSet(56, 57, 66, 67),
		Drizzle:   NewCodeSet(51, 53, 55),
		Dry:       NewCodeSet(0, 1, 2, 3, 45, 48),
	}
}
