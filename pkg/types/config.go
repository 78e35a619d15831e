// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines configuration shared by the markets-geojson stages.
package types

import "time"

// Defaults reproduce the standard Manhattan conversion run.
const (
	DefaultSourcePath    = "data/NYC_Farmers_Markets_20250719.csv"
	DefaultDestPath      = "manhattan_farmers_markets.geojson"
	DefaultBoroughFilter = "Manhattan"
	DefaultSourceURL     = "https://data.cityofnewyork.us/api/views/8vwk-6iz2/rows.csv?accessType=DOWNLOAD"
	DefaultUserAgent     = "markets-geojson/0.1"
	DefaultCatalogDir    = "catalog"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SplitMode selects how a source line is split into fields.
type SplitMode string

const (
	// SplitFaithful splits on every comma with no quote handling.
	SplitFaithful SplitMode = "comma"

	// SplitCSV parses each line as an RFC 4180 record so quoted commas
	// stay inside their field.
	SplitCSV SplitMode = "csv"
)

// PipelineConfig holds the inputs of one CSV-to-GeoJSON conversion.
type PipelineConfig struct {
	// SourcePath is the farmers market CSV to read.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DestPath is the GeoJSON file to create or overwrite.
	DestPath string `json:"dest_path" yaml:"dest_path"`

	// BoroughFilter is the exact Borough value a row must carry to be kept.
	BoroughFilter string `json:"borough_filter" yaml:"borough_filter"`

	// Split selects the line splitter (default: comma).
	Split SplitMode `json:"split" yaml:"split"`
}

// WithDefaults returns a copy of c with empty fields set to the defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.SourcePath == "" {
		c.SourcePath = DefaultSourcePath
	}
	if c.DestPath == "" {
		c.DestPath = DefaultDestPath
	}
	if c.BoroughFilter == "" {
		c.BoroughFilter = DefaultBoroughFilter
	}
	if c.Split == "" {
		c.Split = SplitFaithful
	}
	return c
}

// FetchConfig holds settings for downloading the source CSV.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the CSV export endpoint.
	URL string `json:"url" yaml:"url"`

	// DestPath is where the downloaded CSV is written.
	DestPath string `json:"dest_path" yaml:"dest_path"`

	// AppToken is an optional Socrata application token sent as X-App-Token.
	AppToken string `json:"app_token,omitempty" yaml:"app_token,omitempty"`

	// MaxRetries bounds the retries on HTTP 429 (0 = default).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// CatalogConfig holds settings for the SQLite market catalog.
type CatalogConfig struct {
	// Dir is the directory holding markets.db and exports.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Enabled records every conversion in the catalog.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// PublishConfig holds settings for publishing features to Postgres.
type PublishConfig struct {
	// DSN is the Postgres connection string.
	DSN string `json:"dsn,omitempty" yaml:"dsn,omitempty"`

	// Table is the target table (default "farmers_markets").
	Table string `json:"table" yaml:"table"`
}

// WatchConfig holds settings for re-running the conversion on source changes.
type WatchConfig struct {
	// Debounce collapses bursts of file events into one run (default 500ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`

	// RunOnStart runs once as soon as the watch is registered.
	RunOnStart bool `json:"run_on_start" yaml:"run_on_start"`
}

// Config groups all stage configurations, as read from markets-geojson.yaml.
type Config struct {
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
	Publish  PublishConfig  `json:"publish" yaml:"publish"`
	Watch    WatchConfig    `json:"watch" yaml:"watch"`
}
