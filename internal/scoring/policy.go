package scoring

import "strings"

// MatchRule is one substring pattern with the weight it contributes when the
// inspected text contains it. Rules sharing a Tag form a group that fires at
// most once, so three synonyms for the same risk concept do not triple-count.
//
// The built-in rule sets reproduce what used to be hardcoded string literals
// inside the scorer; callers may extend or replace them through configuration
// while the scoring functions stay pure.
type MatchRule struct {
	Tag     string
	Pattern string
	Weight  int
}

// Policy bundles the injectable match rules consumed by both scorers.
type Policy struct {
	// GeoRules score a customer's city against watch-listed districts.
	GeoRules []MatchRule
	// SectorRules score a legal entity's sector text.
	SectorRules []MatchRule
}

// DefaultGeoRules returns the built-in geographic watch-list: districts under
// enhanced monitoring, matched as lower-cased substrings of the city field.
func DefaultGeoRules() []MatchRule {
	const tag = "watchlist-district"
	const weight = 10
	return []MatchRule{
		{Tag: tag, Pattern: "mohmand", Weight: weight},
		{Tag: tag, Pattern: "bajaur", Weight: weight},
		{Tag: tag, Pattern: "north waziristan", Weight: weight},
		{Tag: tag, Pattern: "south waziristan", Weight: weight},
		{Tag: tag, Pattern: "chaman", Weight: weight},
		{Tag: tag, Pattern: "turbat", Weight: weight},
	}
}

// DefaultSectorRules returns the built-in sector keyword rules. Real estate
// and precious goods are distinct groups: an entity active in both
// accumulates both weights.
func DefaultSectorRules() []MatchRule {
	return []MatchRule{
		{Tag: "real-estate", Pattern: "real estate", Weight: 10},
		{Tag: "real-estate", Pattern: "property", Weight: 10},
		{Tag: "precious-goods", Pattern: "jew", Weight: 15},
		{Tag: "precious-goods", Pattern: "gold", Weight: 15},
		{Tag: "precious-goods", Pattern: "precious", Weight: 15},
	}
}

// DefaultPolicy returns the built-in rule sets.
func DefaultPolicy() Policy {
	return Policy{
		GeoRules:    DefaultGeoRules(),
		SectorRules: DefaultSectorRules(),
	}
}

// WithExtraGeoPatterns appends additional watch-list patterns (from
// configuration) using the standard district weight.
func (p Policy) WithExtraGeoPatterns(patterns []string) Policy {
	for _, pattern := range patterns {
		trimmed := strings.ToLower(strings.TrimSpace(pattern))
		if trimmed == "" {
			continue
		}
		p.GeoRules = append(p.GeoRules, MatchRule{
			Tag:     "watchlist-district",
			Pattern: trimmed,
			Weight:  10,
		})
	}
	return p
}

// firedRule records one rule group that matched.
type firedRule struct {
	Tag    string
	Weight int
}

// applyRules evaluates rules against text (lower-cased substring containment)
// and returns the fired groups in rule order. Empty text fires nothing.
func applyRules(text string, rules []MatchRule) []firedRule {
	if text == "" {
		return nil
	}
	lowered := strings.ToLower(text)

	var fired []firedRule
	seen := make(map[string]bool, len(rules))
	for _, rule := range rules {
		if seen[rule.Tag] {
			continue
		}
		if strings.Contains(lowered, rule.Pattern) {
			seen[rule.Tag] = true
			fired = append(fired, firedRule{Tag: rule.Tag, Weight: rule.Weight})
		}
	}
	return fired
}
