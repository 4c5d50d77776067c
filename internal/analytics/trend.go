package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/oppkey/leadboard/internal/apperror"
	"github.com/oppkey/leadboard/internal/model"
)

// Granularity selects the registration-trend bucket size.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// ParseGranularity validates a user-supplied granularity string.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case Daily, Monthly:
		return Granularity(s), nil
	case "":
		return Monthly, nil // dashboard default
	}
	return "", apperror.ValidationFailed("granularity", "granularity must be daily or monthly")
}

// Bucket is one point of a time-bucketed count series.
type Bucket struct {
	Label string `json:"label"` // YYYY-MM-DD (daily) or YYYY-MM (monthly)
	Count int    `json:"count"`
}

// EngagementPoint is one point of the cumulative posts-read series.
type EngagementPoint struct {
	Date       string `json:"date"`
	Cumulative int    `json:"cumulative"`
}

// TrendSummary are the scalar metrics shown next to the trend chart.
type TrendSummary struct {
	Total          int     `json:"total"`          // registrations in the selected range
	AverageMonthly float64 `json:"averageMonthly"` // 30-day-month approximation
	Peak           int     `json:"peak"`           // highest single bucket
}

// RegistrationTrend buckets registrations whose created_at falls within
// [start, end] inclusive. Daily buckets are labeled YYYY-MM-DD, monthly
// buckets YYYY-MM. Monthly keys are built from the year and month
// components directly, never by truncating a formatted timestamp, which
// is how off-by-one-month bugs happen near zone boundaries. The series is
// ordered ascending by period; both label formats sort chronologically as
// strings.
func RegistrationTrend(records []model.Record, g Granularity, start, end time.Time) []Bucket {
	counts := make(map[string]int)
	for _, r := range records {
		if !inRange(r.CreatedAt, start, end) {
			continue
		}
		t := r.CreatedAt.UTC()
		var label string
		if g == Daily {
			label = t.Format("2006-01-02")
		} else {
			label = monthLabel(t.Year(), t.Month())
		}
		counts[label]++
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	out := make([]Bucket, 0, len(labels))
	for _, l := range labels {
		out = append(out, Bucket{Label: l, Count: counts[l]})
	}
	return out
}

// SummarizeTrend computes the scalar metrics for a bucketed series.
// spanDays is the full dataset's min-to-max span in days; the average
// divides the in-range count by spanDays/30, a 30-day-month approximation
// that matches the numbers the dashboard has always shown. Rounded to one
// decimal.
func SummarizeTrend(series []Bucket, spanDays float64) TrendSummary {
	var s TrendSummary
	for _, b := range series {
		s.Total += b.Count
		if b.Count > s.Peak {
			s.Peak = b.Count
		}
	}
	if spanDays > 0 {
		s.AverageMonthly = math.Round(float64(s.Total)/(spanDays/30)*10) / 10
	}
	return s
}

// DateSpan returns the earliest and latest created_at across all records.
// ok is false when no record carries a timestamp.
func DateSpan(records []model.Record) (min, max time.Time, ok bool) {
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		if !ok {
			min, max, ok = r.CreatedAt, r.CreatedAt, true
			continue
		}
		if r.CreatedAt.Before(min) {
			min = r.CreatedAt
		}
		if r.CreatedAt.After(max) {
			max = r.CreatedAt
		}
	}
	return min, max, ok
}

// CumulativeEngagement sums posts_read per calendar day, then produces a
// running total across days in chronological order.
func CumulativeEngagement(records []model.Record) []EngagementPoint {
	daily := make(map[string]int)
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			continue
		}
		daily[r.CreatedAt.UTC().Format("2006-01-02")] += r.PostsRead
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)

	out := make([]EngagementPoint, 0, len(days))
	running := 0
	for _, d := range days {
		running += daily[d]
		out = append(out, EngagementPoint{Date: d, Cumulative: running})
	}
	return out
}

func inRange(t, start, end time.Time) bool {
	if t.IsZero() {
		return false
	}
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}
