package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oppkey/leadboard/internal/analytics"
	"github.com/oppkey/leadboard/internal/apperror"
	"github.com/oppkey/leadboard/internal/filter"
	"github.com/oppkey/leadboard/internal/service"
)

// DashboardHandler exposes the computed views as JSON. Every route here
// sits behind the session middleware; the handler itself never checks
// authentication.
type DashboardHandler struct {
	svc    *service.Dashboard
	logger *slog.Logger
}

func NewDashboardHandler(svc *service.Dashboard, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

// HandleOverview returns the header metrics and top-country ranking.
//
// HTTP: GET /api/overview
func (h *DashboardHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleMap returns plottable points for the selected region.
//
// HTTP: GET /api/map?region=United+States
func (h *DashboardHandler) HandleMap(w http.ResponseWriter, r *http.Request) {
	region, err := parseRegion(r.URL.Query().Get("region"))
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.svc.Map(r.Context(), region)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleTrends returns the registration-trend series and summary.
//
// HTTP: GET /api/trends?granularity=monthly&start=2024-01-01&end=2024-06-30
func (h *DashboardHandler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	granularity, err := analytics.ParseGranularity(q.Get("granularity"))
	if err != nil {
		writeError(w, err)
		return
	}
	start, err := parseDate(q.Get("start"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := parseDate(q.Get("end"), true)
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := h.svc.Trends(r.Context(), granularity, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleEngagement returns the cumulative and per-country engagement
// series.
//
// HTTP: GET /api/engagement
func (h *DashboardHandler) HandleEngagement(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Engagement(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleGeographic returns registration density, the EU split, and top
// US states.
//
// HTTP: GET /api/geographic
func (h *DashboardHandler) HandleGeographic(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Geographic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandlePatterns returns hour-of-day and day-of-week histograms in the
// requested timezone.
//
// HTTP: GET /api/patterns?tz=Asia/Tokyo
func (h *DashboardHandler) HandlePatterns(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Patterns(r.Context(), r.URL.Query().Get("tz"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleTimezones returns the fixed timezone menu.
//
// HTTP: GET /api/timezones
func (h *DashboardHandler) HandleTimezones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Timezones())
}

// HandleLeads returns the filtered leads table.
//
// HTTP: GET /api/leads?region=...&start=...&end=...&country=...&username=...
//       &org_only=true&exclude_known=true&policy=exact
func (h *DashboardHandler) HandleLeads(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.svc.Leads(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRefresh drops the memoized dataset and refetches the sources.
//
// HTTP: POST /api/refresh
func (h *DashboardHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"rows": rows})
}

func parseFilters(r *http.Request) (filter.Filters, error) {
	q := r.URL.Query()

	region, err := parseRegion(q.Get("region"))
	if err != nil {
		return filter.Filters{}, err
	}
	start, err := parseDate(q.Get("start"), false)
	if err != nil {
		return filter.Filters{}, err
	}
	end, err := parseDate(q.Get("end"), true)
	if err != nil {
		return filter.Filters{}, err
	}
	policy, err := parsePolicy(q.Get("policy"))
	if err != nil {
		return filter.Filters{}, err
	}

	return filter.Filters{
		Region:               region,
		DateStart:            start,
		DateEnd:              end,
		CountryText:          q.Get("country"),
		UsernameText:         q.Get("username"),
		OrgPresentOnly:       parseFlag(q.Get("org_only")),
		ExcludeKnownAccounts: parseFlag(q.Get("exclude_known")),
		Policy:               policy,
	}, nil
}

func parseRegion(s string) (filter.Region, error) {
	switch filter.Region(s) {
	case "", filter.RegionAll, filter.RegionUnitedStates,
		filter.RegionEuropeanUnion, filter.RegionJapan, filter.RegionIndia:
		return filter.Region(s), nil
	}
	return "", apperror.ValidationFailed("region", "unknown region "+s)
}

func parsePolicy(s string) (filter.MatchPolicy, error) {
	switch s {
	case "", "substring":
		return filter.MatchSubstring, nil
	case "exact":
		return filter.MatchExact, nil
	}
	return 0, apperror.ValidationFailed("policy", "policy must be substring or exact")
}

// parseDate accepts YYYY-MM-DD or RFC3339. A date-only END bound extends
// to the last instant of that day, keeping the range inclusive the way
// the date slider behaves.
func parseDate(s string, isEnd bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, apperror.ValidationFailed("date", "dates must be YYYY-MM-DD or RFC3339")
	}
	if isEnd {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func parseFlag(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}
