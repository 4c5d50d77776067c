// Package model defines the data structures used throughout the application.
package model

import (
	"fmt"
	"time"
)

// ProfileBaseURL is the community site that hosts user profiles. Lead rows
// link back to it so a sales person can jump from the table to the profile.
const ProfileBaseURL = "https://community.theta360.guide"

// Record is one user-registration row from the exported lead spreadsheets.
//
// The three source exports share one schema but are noisy: most columns can
// be blank, and organization values include placeholder junk. An empty
// string means "absent" for the string columns. Latitude, Longitude and
// EUMember use pointers because 0 and false are valid values; only a nil
// pointer means the cell was blank.
//
// Organization and Country hold the cleaned, derived values. The raw
// location string is kept in LocationRaw so derivation stays repeatable;
// no raw column is ever overwritten.
type Record struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`              // may be absent
	Organization string    `json:"organization"`          // normalized; empty = absent
	LocationRaw  string    `json:"locationRaw,omitempty"` // raw last_ip_country column
	Country      string    `json:"country"`               // derived from LocationRaw
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	EUMember     *bool     `json:"euMember,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	CreatedAt    time.Time `json:"createdAt"` // stored in UTC
	PostsRead    int       `json:"postsRead"`
}

// HasOrganization reports whether the record carries a real organization
// after sentinel cleaning.
func (r Record) HasOrganization() bool {
	return r.Organization != ""
}

// HasCoordinates reports whether the record can be placed on a map.
func (r Record) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// ProfileLink builds the community profile URL for a username. Returns ""
// when the username is absent.
func ProfileLink(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("%s/u/%s/summary", ProfileBaseURL, username)
}
