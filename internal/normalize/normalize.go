// Package normalize cleans the noisy free-text columns of a lead export.
//
// Two rules live here: collapsing placeholder organization values to
// "absent", and deriving a country from the free-text location column.
// Both are pure functions, so the same export always normalizes the same
// way. RulesVersion must be bumped whenever either rule changes; the
// snapshot cache keys on it.
package normalize

import (
	"strings"

	"github.com/oppkey/leadboard/internal/model"
)

// RulesVersion identifies the current normalization rule set. Cached
// snapshots built under a different version are discarded.
const RulesVersion = "v1"

// orgSentinels are placeholder strings users typed instead of leaving the
// organization field blank. Matching is case-sensitive and exact: real
// organization names must never be collapsed, even if that means "None"
// and "none" are treated differently.
var orgSentinels = map[string]struct{}{
	"x":         {},
	"a":         {},
	"no":        {},
	"tests":     {},
	"none":      {},
	" ":         {},
	"--":        {},
	"none none": {},
}

// Organization returns the cleaned organization value. The second return
// is false when the raw value is blank, whitespace-only, or one of the
// known sentinels. Legitimate values pass through unchanged: no trimming
// or case-folding, so differently-cased variants of the same company stay
// distinct.
func Organization(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	if _, ok := orgSentinels[raw]; ok {
		return "", false
	}
	return raw, true
}

// Country derives a country from a free-text location such as
// "San Francisco, California, United States". The source stores the
// country as the LAST comma-separated token; the result is trimmed of
// surrounding whitespace. A single token passes through as-is. Returns
// false for a blank location.
func Country(location string) (string, bool) {
	if location == "" {
		return "", false
	}
	parts := strings.Split(location, ",")
	country := strings.TrimSpace(parts[len(parts)-1])
	if country == "" {
		return "", false
	}
	return country, true
}

// Apply returns a working copy of records with Organization cleaned and
// Country derived. The input slice is never mutated.
func Apply(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		org, _ := Organization(r.Organization)
		r.Organization = org
		country, _ := Country(r.LocationRaw)
		r.Country = country
		out[i] = r
	}
	return out
}
