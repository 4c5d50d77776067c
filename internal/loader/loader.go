// Package loader retrieves the three user-registration exports and turns
// them into one unified record slice.
//
// The three sources share a column contract but not a column order, so
// parsing is header-driven. The unified set is a plain row concatenation
// in source order: no deduplication, no merge by key. A user present in
// two exports appears twice, and downstream distinct counts are what
// de-duplicate.
//
// Records come out raw. Sentinel organizations and country derivation are
// normalize.Apply's job.
package loader

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/oppkey/leadboard/internal/apperror"
	"github.com/oppkey/leadboard/internal/model"
)

// requiredColumns is the minimal column contract every source must carry.
// A missing column fails the whole load with the column named; silently
// rendering a wrong chart is worse than not rendering.
var requiredColumns = []string{
	"user_id",
	"username",
	"organization",
	"last_ip_country",
	"last_ip_latitude",
	"last_ip_longitude",
	"last_ip_is_eu_member",
	"last_ip_city",
	"last_ip_state",
	"created_at",
	"posts_read",
}

// timeLayouts are tried in order when parsing created_at. Layouts without
// a zone are interpreted as UTC.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Loader fetches and parses the configured sources.
type Loader struct {
	provider Provider
	logger   *slog.Logger
}

func New(provider Provider, logger *slog.Logger) *Loader {
	return &Loader{provider: provider, logger: logger}
}

// LoadAll fetches every locator and concatenates the parsed rows in
// locator order. Any failure aborts the whole load: the dashboard shows
// complete data or an error, never a silently partial view.
func (l *Loader) LoadAll(ctx context.Context, locators []string) ([]model.Record, error) {
	var all []model.Record
	for _, locator := range locators {
		records, err := l.loadOne(ctx, locator)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("source loaded",
			slog.String("locator", locator),
			slog.Int("rows", len(records)),
		)
		all = append(all, records...)
	}
	return all, nil
}

func (l *Loader) loadOne(ctx context.Context, locator string) ([]model.Record, error) {
	body, err := l.provider.Fetch(ctx, locator)
	if err != nil {
		return nil, apperror.SourceUnavailable(locator, err)
	}
	defer body.Close()

	records, err := parseCSV(locator, body)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// parseCSV decodes one export. The first row is the header; all lookups
// go through a header-index map so column order is free.
func parseCSV(locator string, r io.Reader) ([]model.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, missing cells read as blank

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperror.SourceUnavailable(locator, fmt.Errorf("parsing CSV: %w", err))
	}
	if len(rows) == 0 {
		return nil, apperror.SourceUnavailable(locator, fmt.Errorf("empty export"))
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, apperror.SchemaMismatch(locator, col)
		}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, model.Record{
			UserID:       cell(row, "user_id"),
			Username:     cell(row, "username"),
			Organization: cell(row, "organization"),
			LocationRaw:  cell(row, "last_ip_country"),
			Latitude:     parseFloat(cell(row, "last_ip_latitude")),
			Longitude:    parseFloat(cell(row, "last_ip_longitude")),
			EUMember:     parseBool(cell(row, "last_ip_is_eu_member")),
			City:         cell(row, "last_ip_city"),
			State:        cell(row, "last_ip_state"),
			CreatedAt:    parseTime(cell(row, "created_at")),
			PostsRead:    parseCount(cell(row, "posts_read")),
		})
	}
	return records, nil
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseBool(s string) *bool {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return nil
	}
	return &v
}

// parseTime tries the known layouts; zoned values convert to UTC,
// unzoned values are assumed UTC. An unparsable value yields the zero
// time, which every time-based aggregation skips.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseCount(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
