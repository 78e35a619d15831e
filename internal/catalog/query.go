// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/markets-geojson/internal/market"
)

// QueryOptions holds parameters for catalog searches.
type QueryOptions struct {
	// Query is matched against market names and addresses. Each
	// whitespace-separated term must appear.
	Query string

	// Borough restricts results to one borough.
	Borough string

	// EBTOnly keeps markets whose Accepts EBT column is "Yes".
	EBTOnly bool

	// YearRoundOnly keeps markets whose Open Year-Round column is "Yes".
	YearRoundOnly bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is a cataloged market with the run it came from.
type Entry struct {
	market.Record `yaml:",inline"`

	RunID string   `json:"run_id" yaml:"run_id"`
	Lng   *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
	Lat   *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
}

// Run is one recorded conversion.
type Run struct {
	ID         string `json:"id" yaml:"id"`
	SourcePath string `json:"source_path" yaml:"source_path"`
	SourceHash string `json:"source_hash" yaml:"source_hash"`
	Borough    string `json:"borough" yaml:"borough"`
	Split      string `json:"split" yaml:"split"`
	DestPath   string `json:"dest_path" yaml:"dest_path"`
	Total      int    `json:"total" yaml:"total"`
	Accepted   int    `json:"accepted" yaml:"accepted"`
	Written    int    `json:"written" yaml:"written"`
	Skipped    int    `json:"skipped" yaml:"skipped"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

const marketColumns = `m.run_id, m.borough, m.name, m.address, m.community_district,
	m.latitude, m.longitude, m.lat, m.lng, m.days, m.hours, m.season_begin, m.season_end,
	m.accepts_ebt, m.health_bucks, m.year_round, m.cooking_demos, m.location_point, m.zip`

// Search returns cataloged markets matching opts, ordered by name. An empty
// QueryOptions lists every market up to the result limit.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	match := ftsQuery(opts.Query)
	if match != "" {
		qb.WriteString(`SELECT ` + marketColumns + `
			FROM markets m
			JOIN markets_fts ON markets_fts.docid = m.rowid
			WHERE markets_fts MATCH ?`)
		args = append(args, match)
	} else {
		qb.WriteString(`SELECT ` + marketColumns + ` FROM markets m WHERE 1=1`)
	}

	if opts.Borough != "" {
		qb.WriteString(` AND m.borough = ?`)
		args = append(args, opts.Borough)
	}
	if opts.EBTOnly {
		qb.WriteString(` AND lower(m.accepts_ebt) = 'yes'`)
	}
	if opts.YearRoundOnly {
		qb.WriteString(` AND lower(m.year_round) = 'yes'`)
	}

	qb.WriteString(` ORDER BY m.name, m.rowid LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			lat, lng sql.NullFloat64
			r        = &e.Record
		)
		if err := rows.Scan(
			&e.RunID, &r.Borough, &r.MarketName, &r.StreetAddress, &r.CommunityDistrict,
			&r.Latitude, &r.Longitude, &lat, &lng, &r.DaysOfOperation, &r.HoursOfOperations,
			&r.SeasonBegin, &r.SeasonEnd, &r.AcceptsEBT, &r.DistributesHealthBucks,
			&r.OpenYearRound, &r.CookingDemonstrations, &r.LocationPoint, &r.ZipCode,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if lat.Valid && lng.Valid {
			e.Lat, e.Lng = &lat.Float64, &lng.Float64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ftsQuery quotes each term so punctuation in user input is not parsed as
// FTS syntax. Terms are ANDed.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, "") + `"`
	}
	return strings.Join(terms, " ")
}

// Runs returns every recorded run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_path, source_hash, borough, split, COALESCE(dest_path, ''),
			total, accepted, written, skipped, created_at
		 FROM runs ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SourcePath, &r.SourceHash, &r.Borough, &r.Split, &r.DestPath,
			&r.Total, &r.Accepted, &r.Written, &r.Skipped, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
