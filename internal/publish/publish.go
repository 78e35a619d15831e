// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish copies converted market features into a Postgres table.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb/geojson"

	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

// DefaultTable is used when PublishConfig.Table is empty.
const DefaultTable = "farmers_markets"

// Columns are the target table columns in COPY order.
var Columns = []string{
	"borough", "name", "address", "days", "hours",
	"accepts_ebt", "year_round", "lng", "lat",
}

// Publisher writes feature collections to Postgres.
type Publisher struct {
	pool  *pgxpool.Pool
	table pgx.Identifier
}

// NewPublisher opens a connection pool for cfg.DSN.
func NewPublisher(ctx context.Context, cfg types.PublishConfig) (*Publisher, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("no Postgres DSN configured")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Publisher{pool: pool, table: pgx.Identifier{table}}, nil
}

// Close releases the pool.
func (p *Publisher) Close() {
	p.pool.Close()
}

// Publish replaces the rows for borough with the point features of fc in
// one transaction and returns the number of rows copied.
func (p *Publisher) Publish(ctx context.Context, borough string, fc *geojson.FeatureCollection, w io.Writer) (int64, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	name := p.table.Sanitize()
	if _, err := tx.Exec(ctx, createTableSQL(name)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE borough = $1", name), borough); err != nil {
		return 0, fmt.Errorf("delete previous rows: %w", err)
	}

	n, err := tx.CopyFrom(ctx, p.table, Columns, pgx.CopyFromRows(Rows(borough, fc)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return 0, fmt.Errorf("copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return 0, fmt.Errorf("copy: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	fmt.Fprintf(w, "published %d markets to %s\n", n, name)
	return n, nil
}

func createTableSQL(name string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		borough text NOT NULL,
		name text NOT NULL,
		address text,
		days text,
		hours text,
		accepts_ebt text,
		year_round text,
		lng double precision NOT NULL,
		lat double precision NOT NULL
	)`, name)
}

// Rows converts the point features of fc into COPY rows ordered as
// Columns. Features without a point geometry are dropped.
func Rows(borough string, fc *geojson.FeatureCollection) [][]any {
	if fc == nil {
		return nil
	}
	rows := make([][]any, 0, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := feature.Point(f)
		if !ok {
			continue
		}
		props := f.Properties
		rows = append(rows, []any{
			borough,
			props.MustString(feature.PropMarketName, ""),
			props.MustString(feature.PropStreetAddress, ""),
			props.MustString(feature.PropDaysOfOperation, ""),
			props.MustString(feature.PropHoursOfOperations, ""),
			props.MustString(feature.PropAcceptsEBT, ""),
			props.MustString(feature.PropOpenYearRound, ""),
			pt.Lon(),
			pt.Lat(),
		})
	}
	return rows
}
