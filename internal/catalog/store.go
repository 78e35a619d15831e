// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a local SQLite record of converted markets and the
// runs that produced them, with full-text search over names and addresses.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/xxh3"

	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/internal/pipeline"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

const (
	dbFile            = "markets.db"
	defaultMaxResults = 20
)

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates dir/markets.db and its schema.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = types.DefaultCatalogDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the catalog directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source_path TEXT NOT NULL,
			source_hash TEXT NOT NULL,
			borough TEXT NOT NULL,
			split TEXT NOT NULL DEFAULT 'comma',
			dest_path TEXT,
			total INTEGER,
			accepted INTEGER,
			written INTEGER,
			skipped INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS markets (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			borough TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			community_district TEXT,
			latitude TEXT,
			longitude TEXT,
			lat REAL,
			lng REAL,
			days TEXT,
			hours TEXT,
			season_begin TEXT,
			season_end TEXT,
			accepts_ebt TEXT,
			health_bucks TEXT,
			year_round TEXT,
			cooking_demos TEXT,
			location_point TEXT,
			zip TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_markets_run_id ON markets(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_markets_borough ON markets(borough)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source_path, borough)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// Catalogs created before runs recorded the split mode lack the column.
	var hasSplit int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM pragma_table_info('runs') WHERE name = 'split'`,
	).Scan(&hasSplit); err != nil {
		return fmt.Errorf("checking runs columns: %w", err)
	}
	if hasSplit == 0 {
		if _, err := s.db.Exec(`ALTER TABLE runs ADD COLUMN split TEXT NOT NULL DEFAULT 'comma'`); err != nil {
			return fmt.Errorf("adding split column: %w", err)
		}
	}

	// FTS4 external-content table kept in sync by triggers.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='markets_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE markets_fts USING fts4(content="markets", name, address)`,
		`CREATE TRIGGER markets_bd BEFORE DELETE ON markets BEGIN
			DELETE FROM markets_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER markets_bu BEFORE UPDATE ON markets BEGIN
			DELETE FROM markets_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER markets_au AFTER UPDATE ON markets BEGIN
			INSERT INTO markets_fts(docid, name, address) VALUES (new.rowid, new.name, new.address);
		END`,
		`CREATE TRIGGER markets_ai AFTER INSERT ON markets BEGIN
			INSERT INTO markets_fts(docid, name, address) VALUES (new.rowid, new.name, new.address);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// IngestSummary reports the outcome of cataloging one conversion run.
type IngestSummary struct {
	RunID   string
	Markets int
	Skipped bool
}

// HashFile returns the xxh3 digest of the file at path as 16 hex digits.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Ingest records a conversion run and the accepted markets it produced.
// When the source file's content hash and split mode equal those of the
// latest run for the same source and borough, nothing is written and the
// summary is marked Skipped. Otherwise the markets from earlier runs of
// that source and borough are replaced in one transaction.
func (s *Store) Ingest(ctx context.Context, cfg types.PipelineConfig, sum pipeline.Summary, w io.Writer) (IngestSummary, error) {
	cfg = cfg.WithDefaults()

	hash, err := HashFile(cfg.SourcePath)
	if err != nil {
		return IngestSummary{}, err
	}

	var lastHash, lastID, lastSplit string
	err = s.db.QueryRowContext(ctx,
		`SELECT id, source_hash, split FROM runs WHERE source_path = ? AND borough = ?
		 ORDER BY rowid DESC LIMIT 1`,
		cfg.SourcePath, cfg.BoroughFilter,
	).Scan(&lastID, &lastHash, &lastSplit)
	switch {
	case err == nil && lastHash == hash && lastSplit == string(cfg.Split):
		fmt.Fprintf(w, "catalog unchanged for %s (run %s)\n", cfg.SourcePath, lastID)
		return IngestSummary{RunID: lastID, Skipped: true}, nil
	case err != nil && err != sql.ErrNoRows:
		return IngestSummary{}, fmt.Errorf("looking up previous run: %w", err)
	}

	runID := uuid.New().String()
	if err := s.ingestRun(ctx, runID, hash, cfg, sum); err != nil {
		return IngestSummary{}, err
	}

	fmt.Fprintf(w, "cataloged %d markets (run %s)\n", len(sum.Records), runID)
	return IngestSummary{RunID: runID, Markets: len(sum.Records)}, nil
}

func (s *Store) ingestRun(ctx context.Context, runID, hash string, cfg types.PipelineConfig, sum pipeline.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM markets WHERE run_id IN (
			SELECT id FROM runs WHERE source_path = ? AND borough = ?)`,
		cfg.SourcePath, cfg.BoroughFilter,
	); err != nil {
		return fmt.Errorf("deleting previous markets: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source_path, source_hash, borough, split, dest_path,
			total, accepted, written, skipped, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, cfg.SourcePath, hash, cfg.BoroughFilter, string(cfg.Split), cfg.DestPath,
		sum.Total, sum.Accepted, sum.Written, sum.Skipped,
		time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO markets (run_id, position, borough, name, address, community_district,
			latitude, longitude, lat, lng, days, hours, season_begin, season_end,
			accepts_ebt, health_bucks, year_round, cooking_demos, location_point, zip)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range sum.Records {
		var lat, lng sql.NullFloat64
		if f, err := feature.NewPoint(rec); err == nil {
			p, _ := feature.Point(f)
			lng = sql.NullFloat64{Float64: p.Lon(), Valid: true}
			lat = sql.NullFloat64{Float64: p.Lat(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			runID, i, rec.Borough, rec.MarketName, rec.StreetAddress, rec.CommunityDistrict,
			rec.Latitude, rec.Longitude, lat, lng, rec.DaysOfOperation, rec.HoursOfOperations,
			rec.SeasonBegin, rec.SeasonEnd, rec.AcceptsEBT, rec.DistributesHealthBucks,
			rec.OpenYearRound, rec.CookingDemonstrations, rec.LocationPoint, rec.ZipCode,
		); err != nil {
			return fmt.Errorf("inserting market %q: %w", rec.MarketName, err)
		}
	}

	return tx.Commit()
}
