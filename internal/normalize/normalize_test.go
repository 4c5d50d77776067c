package normalize

import (
	"testing"
	"time"

	"github.com/oppkey/leadboard/internal/model"
)

func TestOrganizationSentinels(t *testing.T) {
	sentinels := []string{"x", "a", "no", "tests", "none", " ", "--", "none none"}
	for _, s := range sentinels {
		t.Run("sentinel "+s, func(t *testing.T) {
			if got, ok := Organization(s); ok {
				t.Errorf("Organization(%q) = (%q, true), want absent", s, got)
			}
		})
	}
}

func TestOrganizationPassThrough(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"real company", "Ricoh Company, Ltd."},
		{"cased variant of sentinel", "None"},
		{"sentinel as substring", "nones"},
		{"sentinel with padding", " x "},
		{"single letter other than sentinels", "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Organization(tt.raw)
			if !ok || got != tt.raw {
				t.Errorf("Organization(%q) = (%q, %v), want value unchanged", tt.raw, got, ok)
			}
		})
	}
}

func TestOrganizationBlank(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t"} {
		if got, ok := Organization(raw); ok {
			t.Errorf("Organization(%q) = (%q, true), want absent", raw, got)
		}
	}
}

func TestCountry(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
		wantOK   bool
	}{
		{"city state country", "San Francisco, California, United States", "United States", true},
		{"two tokens", "Tokyo, Japan", "Japan", true},
		{"single token", "Germany", "Germany", true},
		{"trailing whitespace trimmed", "USA, California,  United States ", "United States", true},
		{"absent", "", "", false},
		{"trailing comma", "Paris,", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Country(tt.location)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Country(%q) = (%q, %v), want (%q, %v)", tt.location, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := []model.Record{
		{UserID: "1", Organization: "none", LocationRaw: "Osaka, Japan", CreatedAt: time.Now()},
		{UserID: "2", Organization: "Oppkey", LocationRaw: "United States"},
	}
	out := Apply(in)

	if in[0].Organization != "none" || in[0].Country != "" {
		t.Fatalf("Apply mutated its input: %+v", in[0])
	}
	if out[0].Organization != "" {
		t.Errorf("record 0 organization = %q, want absent", out[0].Organization)
	}
	if out[0].Country != "Japan" {
		t.Errorf("record 0 country = %q, want Japan", out[0].Country)
	}
	if out[1].Organization != "Oppkey" || out[1].Country != "United States" {
		t.Errorf("record 1 = %+v", out[1])
	}
}
