package analytics

import (
	"testing"
	"time"

	"github.com/oppkey/leadboard/internal/model"
)

func rec(userID, username, org, country string, created time.Time, postsRead int) model.Record {
	return model.Record{
		UserID:       userID,
		Username:     username,
		Organization: org,
		Country:      country,
		CreatedAt:    created,
		PostsRead:    postsRead,
	}
}

func TestUniqueUserCount(t *testing.T) {
	records := []model.Record{
		rec("1", "alice", "", "", time.Time{}, 0),
		rec("2", "bob", "", "", time.Time{}, 0),
		rec("3", "alice", "", "", time.Time{}, 0), // duplicate username across sources
		rec("4", "", "", "", time.Time{}, 0),      // absent username never counts
	}
	if got := UniqueUserCount(records); got != 2 {
		t.Errorf("UniqueUserCount = %d, want 2", got)
	}
}

func TestUniqueOrgCountExcludesAbsent(t *testing.T) {
	// Post-normalization, sentinel organizations are empty strings.
	records := []model.Record{
		rec("1", "a", "", "", time.Time{}, 0),
		rec("2", "b", "", "", time.Time{}, 0),
	}
	if got := UniqueOrgCount(records); got != 0 {
		t.Errorf("UniqueOrgCount over all-absent set = %d, want 0", got)
	}

	records = append(records,
		rec("3", "c", "Ricoh", "", time.Time{}, 0),
		rec("4", "d", "Ricoh", "", time.Time{}, 0),
		rec("5", "e", "Oppkey", "", time.Time{}, 0),
	)
	if got := UniqueOrgCount(records); got != 2 {
		t.Errorf("UniqueOrgCount = %d, want 2", got)
	}
}

func TestUsersPerCountryDistinct(t *testing.T) {
	records := []model.Record{
		rec("1", "", "", "Japan", time.Time{}, 0),
		rec("1", "", "", "Japan", time.Time{}, 0), // same user twice
		rec("2", "", "", "Japan", time.Time{}, 0),
		rec("3", "", "", "United States", time.Time{}, 0),
		rec("4", "", "", "", time.Time{}, 0), // no country: dropped
	}
	got := UsersPerCountry(records)
	if len(got) != 2 {
		t.Fatalf("UsersPerCountry returned %d groups, want 2", len(got))
	}
	if got[0].Country != "Japan" || got[0].Users != 2 {
		t.Errorf("group 0 = %+v, want Japan/2", got[0])
	}
	if CountryCount(records) != 2 {
		t.Errorf("CountryCount = %d, want 2", CountryCount(records))
	}
}

func TestTopCountries(t *testing.T) {
	records := []model.Record{
		rec("1", "", "", "Japan", time.Time{}, 0),
		rec("2", "", "", "Japan", time.Time{}, 0),
		rec("3", "", "", "India", time.Time{}, 0),
		rec("4", "", "", "Germany", time.Time{}, 0),
		rec("5", "", "", "Germany", time.Time{}, 0),
		rec("6", "", "", "Germany", time.Time{}, 0),
	}

	got := TopCountries(records, 2)
	if len(got) != 2 {
		t.Fatalf("TopCountries(2) returned %d entries", len(got))
	}
	if got[0].Country != "Germany" || got[1].Country != "Japan" {
		t.Errorf("order = [%s %s], want [Germany Japan]", got[0].Country, got[1].Country)
	}

	// Ties keep input order: Japan appeared before India.
	tied := TopCountries(records[:4], 3)
	if tied[0].Country != "Japan" || tied[1].Country != "India" {
		t.Errorf("tie order = [%s %s], want [Japan India]", tied[0].Country, tied[1].Country)
	}

	// n larger than the group count returns everything.
	if all := TopCountries(records, 20); len(all) != 3 {
		t.Errorf("TopCountries(20) returned %d entries, want 3", len(all))
	}
}

func TestRegistrationTrendMonthly(t *testing.T) {
	records := []model.Record{
		rec("1", "", "", "", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), 0),
		rec("2", "", "", "", time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), 0),
		rec("3", "", "", "", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 0),
	}
	got := RegistrationTrend(records, Monthly, time.Time{}, time.Time{})
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(got), got)
	}
	if got[0].Label != "2024-01" || got[0].Count != 2 {
		t.Errorf("bucket 0 = %+v, want 2024-01/2", got[0])
	}
	if got[1].Label != "2024-02" || got[1].Count != 1 {
		t.Errorf("bucket 1 = %+v, want 2024-02/1", got[1])
	}
}

func TestRegistrationTrendDailyRangeInclusive(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	records := []model.Record{
		rec("1", "", "", "", day(1), 0),
		rec("2", "", "", "", day(2), 0),
		rec("3", "", "", "", day(2), 0),
		rec("4", "", "", "", day(5), 0),
	}
	got := RegistrationTrend(records, Daily, day(2), day(5))
	if len(got) != 2 {
		t.Fatalf("got %d buckets, want 2: %+v", len(got), got)
	}
	if got[0].Label != "2024-03-02" || got[0].Count != 2 {
		t.Errorf("bucket 0 = %+v", got[0])
	}
	if got[1].Label != "2024-03-05" || got[1].Count != 1 {
		t.Errorf("bucket 1 = %+v", got[1])
	}
}

func TestSummarizeTrend(t *testing.T) {
	series := []Bucket{{Label: "2024-01", Count: 30}, {Label: "2024-02", Count: 60}}
	got := SummarizeTrend(series, 60)
	if got.Total != 90 {
		t.Errorf("Total = %d, want 90", got.Total)
	}
	if got.Peak != 60 {
		t.Errorf("Peak = %d, want 60", got.Peak)
	}
	// 90 registrations over 60 days = 45 per 30-day "month".
	if got.AverageMonthly != 45.0 {
		t.Errorf("AverageMonthly = %v, want 45.0", got.AverageMonthly)
	}

	if zero := SummarizeTrend(series, 0); zero.AverageMonthly != 0 {
		t.Errorf("zero span AverageMonthly = %v, want 0", zero.AverageMonthly)
	}
}

func TestCumulativeEngagement(t *testing.T) {
	records := []model.Record{
		rec("1", "", "", "", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC), 10),
		rec("2", "", "", "", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 5),
		rec("3", "", "", "", time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC), 3),
	}
	got := CumulativeEngagement(records)
	want := []EngagementPoint{
		{Date: "2024-01-01", Cumulative: 5},
		{Date: "2024-01-02", Cumulative: 18},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEngagementByCountry(t *testing.T) {
	records := []model.Record{
		rec("1", "", "", "Japan", time.Time{}, 10),
		rec("2", "", "", "Japan", time.Time{}, 20),
		rec("3", "", "", "India", time.Time{}, 40),
	}
	got := EngagementByCountry(records, 10)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Country != "India" || got[0].Mean != 40 {
		t.Errorf("entry 0 = %+v, want India/40", got[0])
	}
	if got[1].Country != "Japan" || got[1].Mean != 15 {
		t.Errorf("entry 1 = %+v, want Japan/15", got[1])
	}
}

func TestEUDistribution(t *testing.T) {
	tr, fa := true, false
	records := []model.Record{
		{UserID: "1", EUMember: &tr},
		{UserID: "2", EUMember: &fa},
		{UserID: "3", EUMember: &fa},
		{UserID: "4"},
	}
	got := EUDistribution(records)
	if got.EU != 1 || got.NonEU != 2 || got.Unknown != 1 {
		t.Errorf("EUDistribution = %+v, want 1/2/1", got)
	}
}

func TestTopUSStates(t *testing.T) {
	records := []model.Record{
		{UserID: "1", Country: "United States", State: "California"},
		{UserID: "2", Country: "United States", State: "California"},
		{UserID: "3", Country: "United States", State: "Texas"},
		{UserID: "4", Country: "Japan", State: "Tokyo"}, // not US: excluded
		{UserID: "5", Country: "United States"},         // no state: excluded
	}
	got := TopUSStates(records, 15)
	if len(got) != 2 {
		t.Fatalf("got %d states, want 2", len(got))
	}
	if got[0].State != "California" || got[0].Count != 2 {
		t.Errorf("state 0 = %+v, want California/2", got[0])
	}
}
