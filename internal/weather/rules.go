package weather

// Rule maps facts F to a quality tag when its predicate holds.
type Rule[F any] struct {
	Name string
	Tag  Quality
	When func(F) bool
}

// RuleSet is an ordered list of rules; the first matching rule wins.
type RuleSet[F any] struct {
	rules    []Rule[F]
	fallback Quality
}

// NewRuleSet creates a rule set that yields fallback when no rule matches.
func NewRuleSet[F any](fallback Quality, rules ...Rule[F]) RuleSet[F] {
	return RuleSet[F]{rules: rules, fallback: fallback}
}

// Evaluate returns the tag and name of the first rule that matches f.
// The name is "default" when the fallback applied.
func (rs RuleSet[F]) Evaluate(f F) (Quality, string) {
	for _, r := range rs.rules {
		if r.When(f) {
			return r.Tag, r.Name
		}
	}
	return rs.fallback, "default"
}

// Names lists rule names in evaluation order.
func (rs RuleSet[F]) Names() []string {
	names := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		names = append(names, r.Name)
	}
	return names
}
