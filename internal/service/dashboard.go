// Package service holds the dashboard's business logic, between the HTTP
// handlers and the loader/cache.
//
// The pipeline is load → normalize → aggregate/filter. The first two
// stages depend only on the three source locators and the normalization
// rules, so their output is memoized in-process and persisted in the
// snapshot store; aggregation and filtering re-run per request from the
// memoized set, which is what makes a filter change cheap.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oppkey/leadboard/internal/analytics"
	"github.com/oppkey/leadboard/internal/filter"
	"github.com/oppkey/leadboard/internal/loader"
	"github.com/oppkey/leadboard/internal/model"
	"github.com/oppkey/leadboard/internal/normalize"
	"github.com/oppkey/leadboard/internal/repository"
)

const (
	topCountriesShown  = 20
	topEngagementShown = 10
	topDensityShown    = 15
	topUSStatesShown   = 15
)

// Dashboard computes every view the presentation layer renders.
type Dashboard struct {
	loader   *loader.Loader
	store    repository.SnapshotStore // nil disables the persistent cache
	locators []string
	logger   *slog.Logger

	mu      sync.Mutex
	memoKey string
	memo    []model.Record
}

// NewDashboard wires the pipeline. store may be nil, in which case every
// process restart re-fetches the sources.
func NewDashboard(l *loader.Loader, store repository.SnapshotStore, locators []string, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		loader:   l,
		store:    store,
		locators: locators,
		logger:   logger,
	}
}

// Dataset returns the normalized unified record set, fetching it at most
// once per cache key. The key covers the source locators and the
// normalization rule-set version; a deploy that changes the sentinel set
// ignores every existing snapshot.
func (s *Dashboard) Dataset(ctx context.Context) ([]model.Record, error) {
	key := repository.SnapshotKey(s.locators, normalize.RulesVersion)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.memoKey == key && s.memo != nil {
		return s.memo, nil
	}

	if s.store != nil {
		records, ok, err := s.store.Load(ctx, key)
		if err != nil {
			s.logger.Warn("snapshot load failed, refetching",
				slog.String("error", err.Error()))
		} else if ok {
			s.logger.Debug("dataset served from snapshot cache",
				slog.Int("rows", len(records)))
			s.memoKey, s.memo = key, records
			return records, nil
		}
	}

	raw, err := s.loader.LoadAll(ctx, s.locators)
	if err != nil {
		return nil, err
	}
	records := normalize.Apply(raw)

	if s.store != nil {
		if err := s.store.Save(ctx, key, records); err != nil {
			// Cache failures degrade performance, not correctness.
			s.logger.Warn("snapshot save failed",
				slog.String("error", err.Error()))
		}
	}

	s.logger.Info("dataset loaded",
		slog.Int("rows", len(records)),
		slog.Int("sources", len(s.locators)),
	)
	s.memoKey, s.memo = key, records
	return records, nil
}

// Overview is the header block: three scalar metrics plus the top-country
// ranking.
type Overview struct {
	Developers     int                      `json:"developers"`
	Organizations  int                      `json:"organizations"`
	Countries      int                      `json:"countries"`
	TotalPostsRead int                      `json:"totalPostsRead"`
	TopCountries   []analytics.CountryUsers `json:"topCountries"`
}

func (s *Dashboard) Overview(ctx context.Context) (*Overview, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Developers:     analytics.UniqueUserCount(records),
		Organizations:  analytics.UniqueOrgCount(records),
		Countries:      analytics.CountryCount(records),
		TotalPostsRead: analytics.TotalPostsRead(records),
		TopCountries:   analytics.TopCountries(records, topCountriesShown),
	}, nil
}

// MapView is the geo view: plottable points for the selected region.
type MapView struct {
	Region string            `json:"region"`
	Points []filter.MapPoint `json:"points"`
	Shown  int               `json:"shown"`
}

func (s *Dashboard) Map(ctx context.Context, region filter.Region) (*MapView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if region == "" {
		region = filter.RegionAll
	}
	subset := filter.Filters{Region: region}.Apply(records)
	points := filter.MapPoints(subset)
	return &MapView{Region: string(region), Points: points, Shown: len(points)}, nil
}

// TrendsView is the registration-trend chart plus its summary metrics.
type TrendsView struct {
	Granularity string                 `json:"granularity"`
	DataStart   time.Time              `json:"dataStart"` // slider bounds
	DataEnd     time.Time              `json:"dataEnd"`
	Series      []analytics.Bucket     `json:"series"`
	Summary     analytics.TrendSummary `json:"summary"`
}

// Trends buckets registrations in [start, end] (zero bounds widen to the
// full dataset). The summary's monthly average always divides by the full
// dataset span, matching the numbers the dashboard has historically
// shown.
func (s *Dashboard) Trends(ctx context.Context, g analytics.Granularity, start, end time.Time) (*TrendsView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	min, max, ok := analytics.DateSpan(records)
	var spanDays float64
	if ok {
		spanDays = max.Sub(min).Hours() / 24
	}

	series := analytics.RegistrationTrend(records, g, start, end)
	return &TrendsView{
		Granularity: string(g),
		DataStart:   min,
		DataEnd:     max,
		Series:      series,
		Summary:     analytics.SummarizeTrend(series, spanDays),
	}, nil
}

// EngagementView backs the "Developer Engagement" tab.
type EngagementView struct {
	TotalPostsRead int                         `json:"totalPostsRead"`
	Cumulative     []analytics.EngagementPoint `json:"cumulative"`
	ByCountry      []analytics.CountryMean     `json:"byCountry"`
}

func (s *Dashboard) Engagement(ctx context.Context) (*EngagementView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &EngagementView{
		TotalPostsRead: analytics.TotalPostsRead(records),
		Cumulative:     analytics.CumulativeEngagement(records),
		ByCountry:      analytics.EngagementByCountry(records, topEngagementShown),
	}, nil
}

// GeographicView backs the "Geographic Distribution" tab.
type GeographicView struct {
	Density  []analytics.CountryTally `json:"density"`
	EU       analytics.EUSplit        `json:"eu"`
	USStates []analytics.StateTally   `json:"usStates"`
}

func (s *Dashboard) Geographic(ctx context.Context) (*GeographicView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return &GeographicView{
		Density:  analytics.RegistrationDensity(records, topDensityShown),
		EU:       analytics.EUDistribution(records),
		USStates: analytics.TopUSStates(records, topUSStatesShown),
	}, nil
}

// PatternsView backs the "Registration Patterns" tab.
type PatternsView struct {
	Timezone string                   `json:"timezone"`
	Hourly   []int                    `json:"hourly"`
	Weekdays []analytics.WeekdayCount `json:"weekdays"`
}

func (s *Dashboard) Patterns(ctx context.Context, tz string) (*PatternsView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	loc, err := analytics.LoadTimezone(tz)
	if err != nil {
		return nil, err
	}
	return &PatternsView{
		Timezone: loc.String(),
		Hourly:   analytics.RegistrationsByHour(records, loc),
		Weekdays: analytics.RegistrationsByWeekday(records, loc),
	}, nil
}

// LeadRow is one row of the filterable leads table. Identifiers and raw
// coordinates are omitted; organization and country lead, matching the
// table's column order. ProfileLink is the one identifier-derived field
// the table keeps.
type LeadRow struct {
	Organization string    `json:"organization"`
	Country      string    `json:"country"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	EUMember     *bool     `json:"euMember,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	PostsRead    int       `json:"postsRead"`
	ProfileLink  string    `json:"profileLink,omitempty"`
}

// LeadsView is the filtered table.
type LeadsView struct {
	Total int       `json:"total"` // rows after filtering
	Rows  []LeadRow `json:"rows"`
}

func (s *Dashboard) Leads(ctx context.Context, f filter.Filters) (*LeadsView, error) {
	records, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}

	subset := f.Apply(records)
	rows := make([]LeadRow, 0, len(subset))
	for _, r := range subset {
		rows = append(rows, LeadRow{
			Organization: r.Organization,
			Country:      r.Country,
			City:         r.City,
			State:        r.State,
			EUMember:     r.EUMember,
			CreatedAt:    r.CreatedAt,
			PostsRead:    r.PostsRead,
			ProfileLink:  model.ProfileLink(r.Username),
		})
	}
	return &LeadsView{Total: len(rows), Rows: rows}, nil
}

// Timezones returns the fixed timezone menu.
func (s *Dashboard) Timezones() []analytics.TimezoneOption {
	return analytics.TimezoneOptions
}

// Refresh drops the in-process memo so the next request reloads. The
// snapshot cache is keyed, not expired, so refreshing overwrites the
// current key's snapshot.
func (s *Dashboard) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	s.memoKey, s.memo = "", nil
	s.mu.Unlock()

	raw, err := s.loader.LoadAll(ctx, s.locators)
	if err != nil {
		return 0, err
	}
	records := normalize.Apply(raw)

	key := repository.SnapshotKey(s.locators, normalize.RulesVersion)
	if s.store != nil {
		if err := s.store.Save(ctx, key, records); err != nil {
			s.logger.Warn("snapshot save failed", slog.String("error", err.Error()))
		}
	}

	s.mu.Lock()
	s.memoKey, s.memo = key, records
	s.mu.Unlock()

	s.logger.Info("dataset refreshed", slog.Int("rows", len(records)))
	return len(records), nil
}
