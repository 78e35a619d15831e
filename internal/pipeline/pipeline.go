// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the farmers market CSV-to-GeoJSON conversion:
// read lines, map and filter rows, build and write point features.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"

	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/internal/market"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

// Summary holds the counts of one conversion run.
type Summary struct {
	// Total is the number of data lines read.
	Total int

	// Accepted is the number of records matching the borough filter.
	Accepted int

	// Skipped is the number of accepted records with unusable coordinates.
	Skipped int

	// Written is the number of features written to the output file.
	Written int

	// Records and Collection hold the stage outputs for callers that
	// persist or publish them after the run.
	Records    []market.Record            `json:"-"`
	Collection *geojson.FeatureCollection `json:"-"`
}

// Run executes the three stages in order, each completing before the next
// starts, and writes progress to w. Any I/O error aborts the run.
func Run(ctx context.Context, cfg types.PipelineConfig, w io.Writer) (Summary, error) {
	cfg = cfg.WithDefaults()

	lines, err := market.ReadLines(cfg.SourcePath)
	if err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	mapped := market.MapRows(lines, market.MapOptions{
		Borough: cfg.BoroughFilter,
		Split:   cfg.Split,
	})
	market.Report(w, mapped)
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	built := feature.Build(mapped.Accepted, w)
	if err := feature.WriteFile(cfg.DestPath, built.Collection); err != nil {
		return Summary{}, fmt.Errorf("writing geojson: %w", err)
	}

	fmt.Fprintf(w, "\ncreated %d farmers market points\n", built.Written())
	fmt.Fprintf(w, "GeoJSON saved to: %s\n", cfg.DestPath)

	return Summary{
		Total:      mapped.Total,
		Accepted:   len(mapped.Accepted),
		Skipped:    built.Skipped,
		Written:    built.Written(),
		Records:    mapped.Accepted,
		Collection: built.Collection,
	}, nil
}
