package analytics

import (
	"testing"
	"time"

	"github.com/oppkey/leadboard/internal/model"
)

func TestRegistrationsByHourTimezone(t *testing.T) {
	tokyo, err := LoadTimezone("Asia/Tokyo")
	if err != nil {
		t.Fatalf("LoadTimezone: %v", err)
	}

	// 23:00 UTC is 08:00 the next day in Tokyo.
	records := []model.Record{
		{UserID: "1", CreatedAt: time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)},
	}

	utcCounts := RegistrationsByHour(records, time.UTC)
	if utcCounts[23] != 1 {
		t.Errorf("UTC hour 23 = %d, want 1", utcCounts[23])
	}

	tokyoCounts := RegistrationsByHour(records, tokyo)
	if tokyoCounts[8] != 1 {
		t.Errorf("Tokyo hour 8 = %d, want 1", tokyoCounts[8])
	}
	if tokyoCounts[23] != 0 {
		t.Errorf("Tokyo hour 23 = %d, want 0", tokyoCounts[23])
	}
	if len(tokyoCounts) != 24 {
		t.Errorf("histogram has %d entries, want 24", len(tokyoCounts))
	}
}

func TestRegistrationsByWeekdayReindex(t *testing.T) {
	// 2024-05-06 is a Monday, 2024-05-07 a Tuesday. No Wednesdays.
	records := []model.Record{
		{UserID: "1", CreatedAt: time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)},
		{UserID: "2", CreatedAt: time.Date(2024, 5, 7, 12, 0, 0, 0, time.UTC)},
		{UserID: "3", CreatedAt: time.Date(2024, 5, 7, 13, 0, 0, 0, time.UTC)},
	}
	got := RegistrationsByWeekday(records, time.UTC)

	wantOrder := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if len(got) != 7 {
		t.Fatalf("got %d entries, want 7", len(got))
	}
	for i, w := range wantOrder {
		if got[i].Weekday != w {
			t.Errorf("position %d = %s, want %s", i, got[i].Weekday, w)
		}
	}
	if got[0].Count != 1 || got[1].Count != 2 {
		t.Errorf("Monday/Tuesday counts = %d/%d, want 1/2", got[0].Count, got[1].Count)
	}
	if got[2].Count != 0 {
		t.Errorf("Wednesday count = %d, want 0 (still present)", got[2].Count)
	}
}

func TestRegistrationsByWeekdayCrossesDateLine(t *testing.T) {
	sydney, err := LoadTimezone("Australia/Sydney")
	if err != nil {
		t.Fatalf("LoadTimezone: %v", err)
	}
	// Saturday 20:00 UTC is already Sunday in Sydney.
	records := []model.Record{
		{UserID: "1", CreatedAt: time.Date(2024, 5, 4, 20, 0, 0, 0, time.UTC)},
	}
	got := RegistrationsByWeekday(records, sydney)
	if got[6].Weekday != "Sunday" || got[6].Count != 1 {
		t.Errorf("Sunday = %+v, want count 1", got[6])
	}
	if got[5].Count != 0 {
		t.Errorf("Saturday count = %d, want 0", got[5].Count)
	}
}

func TestLoadTimezone(t *testing.T) {
	if _, err := LoadTimezone("America/Chicago"); err != nil {
		t.Errorf("menu zone rejected: %v", err)
	}
	if loc, err := LoadTimezone(""); err != nil || loc != time.UTC {
		t.Errorf("empty zone = (%v, %v), want UTC", loc, err)
	}
	if _, err := LoadTimezone("Mars/Olympus"); err == nil {
		t.Error("off-menu zone accepted, want validation error")
	}
}

func TestDateSpan(t *testing.T) {
	records := []model.Record{
		{UserID: "1", CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{UserID: "2"}, // zero timestamp ignored
		{UserID: "3", CreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	min, max, ok := DateSpan(records)
	if !ok {
		t.Fatal("DateSpan ok = false")
	}
	if min.Year() != 2023 || max.Year() != 2024 {
		t.Errorf("span = %v..%v", min, max)
	}

	if _, _, ok := DateSpan(nil); ok {
		t.Error("DateSpan(nil) ok = true, want false")
	}
}
