package analytics

import (
	"time"

	"github.com/oppkey/leadboard/internal/apperror"
	"github.com/oppkey/leadboard/internal/model"
)

// WeekdayCount is one bar of the day-of-week histogram.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// weekdayOrder is the canonical display order. Days with no registrations
// still appear, with a zero count, in their canonical position.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// TimezoneOption is one entry of the fixed timezone menu.
type TimezoneOption struct {
	Label string `json:"label"`
	TZ    string `json:"tz"` // IANA zone name
}

// TimezoneOptions is the menu offered for registration-pattern charts.
// The set is fixed; arbitrary zone input is rejected by LoadTimezone.
var TimezoneOptions = []TimezoneOption{
	{Label: "UTC", TZ: "UTC"},
	{Label: "United States (Pacific)", TZ: "America/Los_Angeles"},
	{Label: "United States (Mountain)", TZ: "America/Denver"},
	{Label: "United States (Central)", TZ: "America/Chicago"},
	{Label: "United States (Eastern)", TZ: "America/New_York"},
	{Label: "Japan", TZ: "Asia/Tokyo"},
	{Label: "India", TZ: "Asia/Kolkata"},
	{Label: "United Kingdom", TZ: "Europe/London"},
	{Label: "European Union (Central)", TZ: "Europe/Paris"},
	{Label: "Australia (Sydney)", TZ: "Australia/Sydney"},
}

// LoadTimezone resolves a zone name from the fixed menu. An empty name
// means UTC.
func LoadTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	for _, opt := range TimezoneOptions {
		if opt.TZ == tz {
			return time.LoadLocation(opt.TZ)
		}
	}
	return nil, apperror.ValidationFailed("tz", "unknown timezone "+tz)
}

// RegistrationsByHour converts each registration time (stored as UTC) to
// the given location and counts per local hour of day. The result always
// has 24 entries, index = hour.
func RegistrationsByHour(records []model.Record, loc *time.Location) []int {
	counts := make([]int, 24)
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		counts[r.CreatedAt.In(loc).Hour()]++
	}
	return counts
}

// RegistrationsByWeekday converts each registration time to the given
// location and counts per local weekday, reindexed onto the canonical
// Monday..Sunday order.
func RegistrationsByWeekday(records []model.Record, loc *time.Location) []WeekdayCount {
	counts := make(map[time.Weekday]int)
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		counts[r.CreatedAt.In(loc).Weekday()]++
	}

	out := make([]WeekdayCount, 0, len(weekdayOrder))
	for _, d := range weekdayOrder {
		out = append(out, WeekdayCount{Weekday: d.String(), Count: counts[d]})
	}
	return out
}
