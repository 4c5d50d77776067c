// Package filter narrows the unified record set down to a view subset.
//
// Filters are independent predicates combined with AND; each one is
// skipped when its input is unset, so the zero Filters value passes every
// record through. Predicate order never affects the result.
package filter

import (
	"strings"
	"time"

	"github.com/oppkey/leadboard/internal/model"
)

// Region is the coarse geographic selector offered by the dashboard.
type Region string

const (
	RegionAll           Region = "All"
	RegionUnitedStates  Region = "United States"
	RegionEuropeanUnion Region = "European Union"
	RegionJapan         Region = "Japan"
	RegionIndia         Region = "India"
)

// MatchPolicy controls how country and organization text is matched.
//
// The dashboard historically flip-flopped between exact equality and
// substring containment for the region and known-account filters. The
// current behaviour is substring containment (case-insensitive), kept
// selectable so the older exact behaviour remains one config change away.
type MatchPolicy int

const (
	MatchSubstring MatchPolicy = iota // default: case-insensitive containment
	MatchExact                        // legacy: case-insensitive equality
)

// knownAccountOrgs are the vendor organizations dropped by the
// exclude-known-accounts toggle.
var knownAccountOrgs = []string{"ricoh", "oppkey"}

// Filters holds every predicate the leads view accepts. Zero values mean
// "not active".
type Filters struct {
	Region               Region
	DateStart            time.Time // inclusive lower bound on created_at
	DateEnd              time.Time // inclusive upper bound on created_at
	CountryText          string    // case-insensitive substring of derived country
	UsernameText         string    // case-insensitive substring of username
	OrgPresentOnly       bool      // keep only records with an organization
	ExcludeKnownAccounts bool      // drop Ricoh/Oppkey records
	Policy               MatchPolicy
}

// Apply returns the records satisfying every active predicate.
func (f Filters) Apply(records []model.Record) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single record passes all active predicates.
func (f Filters) Match(r model.Record) bool {
	if !f.matchRegion(r) {
		return false
	}
	if !f.DateStart.IsZero() && (r.CreatedAt.IsZero() || r.CreatedAt.Before(f.DateStart)) {
		return false
	}
	if !f.DateEnd.IsZero() && (r.CreatedAt.IsZero() || r.CreatedAt.After(f.DateEnd)) {
		return false
	}
	if f.CountryText != "" && !containsFold(r.Country, f.CountryText) {
		return false
	}
	if f.UsernameText != "" && !containsFold(r.Username, f.UsernameText) {
		return false
	}
	if f.OrgPresentOnly && !r.HasOrganization() {
		return false
	}
	if f.ExcludeKnownAccounts && f.isKnownAccount(r) {
		return false
	}
	return true
}

func (f Filters) matchRegion(r model.Record) bool {
	switch f.Region {
	case "", RegionAll:
		return true
	case RegionEuropeanUnion:
		return r.EUMember != nil && *r.EUMember
	default:
		return f.matchText(r.Country, string(f.Region))
	}
}

func (f Filters) isKnownAccount(r model.Record) bool {
	if !r.HasOrganization() {
		return false
	}
	for _, org := range knownAccountOrgs {
		if f.matchText(r.Organization, org) {
			return true
		}
	}
	return false
}

// matchText applies the configured policy: containment by default, exact
// equality under MatchExact. Both fold case.
func (f Filters) matchText(value, query string) bool {
	if f.Policy == MatchExact {
		return strings.EqualFold(value, query)
	}
	return containsFold(value, query)
}

func containsFold(value, query string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(query))
}

// MapPoint is one plottable location for the geo view.
type MapPoint struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Country      string  `json:"country"`
	Organization string  `json:"organization,omitempty"`
}

// MapPoints extracts plottable coordinates from records. Records without
// both coordinates are dropped here, and only here; metric and chart
// computations never lose rows to a missing lat/lon.
func MapPoints(records []model.Record) []MapPoint {
	out := make([]MapPoint, 0, len(records))
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		out = append(out, MapPoint{
			Latitude:     *r.Latitude,
			Longitude:    *r.Longitude,
			Country:      r.Country,
			Organization: r.Organization,
		})
	}
	return out
}
