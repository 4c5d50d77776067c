// Package analytics computes the dashboard's metrics and chart series.
//
// Every function here is a pure function over a normalized record slice:
// no I/O, no mutation of the input, same output for the same input. The
// service layer decides what to compute per request; this package only
// knows how to count.
//
// Absent values never contribute to a count. A record with no username
// does not raise the user metric, a sentinel organization does not raise
// the organization metric, and a record with no derivable country is
// excluded from every per-country grouping.
package analytics

import (
	"sort"

	"github.com/oppkey/leadboard/internal/model"
)

// CountryUsers is one row of the users-per-country ranking.
type CountryUsers struct {
	Country string `json:"country"`
	Users   int    `json:"users"`
}

// CountryTally is a per-country row count (registration density).
type CountryTally struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// CountryMean is the average engagement for one country.
type CountryMean struct {
	Country string  `json:"country"`
	Mean    float64 `json:"mean"`
}

// EUSplit partitions records by the IP-derived EU membership flag.
type EUSplit struct {
	EU      int `json:"eu"`
	NonEU   int `json:"nonEu"`
	Unknown int `json:"unknown"`
}

// StateTally is a per-US-state row count.
type StateTally struct {
	State string `json:"state"`
	Count int    `json:"count"`
}

// UniqueUserCount counts distinct non-absent usernames.
func UniqueUserCount(records []model.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Username != "" {
			seen[r.Username] = struct{}{}
		}
	}
	return len(seen)
}

// UniqueOrgCount counts distinct organizations among records that still
// carry one after sentinel cleaning. Absent values are excluded before the
// distinct count, so an all-sentinel record set yields 0.
func UniqueOrgCount(records []model.Record) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.HasOrganization() {
			seen[r.Organization] = struct{}{}
		}
	}
	return len(seen)
}

// UsersPerCountry groups records by derived country and counts distinct
// user IDs per group. Records without a country are dropped. The result
// preserves first-appearance order, which is what makes the descending
// sort in TopCountries stable for ties.
func UsersPerCountry(records []model.Record) []CountryUsers {
	users := make(map[string]map[string]struct{})
	var order []string
	for _, r := range records {
		if r.Country == "" {
			continue
		}
		if _, ok := users[r.Country]; !ok {
			users[r.Country] = make(map[string]struct{})
			order = append(order, r.Country)
		}
		users[r.Country][r.UserID] = struct{}{}
	}

	out := make([]CountryUsers, 0, len(order))
	for _, c := range order {
		out = append(out, CountryUsers{Country: c, Users: len(users[c])})
	}
	return out
}

// CountryCount is the number of countries with at least one record.
func CountryCount(records []model.Record) int {
	return len(UsersPerCountry(records))
}

// TopCountries returns the n countries with the most distinct users,
// descending. Ties keep input order (stable sort).
func TopCountries(records []model.Record, n int) []CountryUsers {
	ranked := UsersPerCountry(records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Users > ranked[j].Users
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// EngagementByCountry returns mean posts read per country, descending,
// limited to the top n. Records without a country are excluded.
func EngagementByCountry(records []model.Record, n int) []CountryMean {
	sums := make(map[string]int)
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Country == "" {
			continue
		}
		if _, ok := counts[r.Country]; !ok {
			order = append(order, r.Country)
		}
		sums[r.Country] += r.PostsRead
		counts[r.Country]++
	}

	out := make([]CountryMean, 0, len(order))
	for _, c := range order {
		out = append(out, CountryMean{Country: c, Mean: float64(sums[c]) / float64(counts[c])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mean > out[j].Mean
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// RegistrationDensity counts rows (not distinct users) per country,
// descending, limited to the top n.
func RegistrationDensity(records []model.Record, n int) []CountryTally {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Country == "" {
			continue
		}
		if _, ok := counts[r.Country]; !ok {
			order = append(order, r.Country)
		}
		counts[r.Country]++
	}

	out := make([]CountryTally, 0, len(order))
	for _, c := range order {
		out = append(out, CountryTally{Country: c, Count: counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// EUDistribution splits records by the EU membership flag. Records where
// the flag is absent land in Unknown.
func EUDistribution(records []model.Record) EUSplit {
	var s EUSplit
	for _, r := range records {
		switch {
		case r.EUMember == nil:
			s.Unknown++
		case *r.EUMember:
			s.EU++
		default:
			s.NonEU++
		}
	}
	return s
}

// TopUSStates counts United States rows per state, descending, top n.
// Rows without a state are excluded.
func TopUSStates(records []model.Record, n int) []StateTally {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		if r.Country != "United States" || r.State == "" {
			continue
		}
		if _, ok := counts[r.State]; !ok {
			order = append(order, r.State)
		}
		counts[r.State]++
	}

	out := make([]StateTally, 0, len(order))
	for _, s := range order {
		out = append(out, StateTally{State: s, Count: counts[s]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// TotalPostsRead sums the engagement counter across all records.
func TotalPostsRead(records []model.Record) int {
	total := 0
	for _, r := range records {
		total += r.PostsRead
	}
	return total
}
