// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feature turns market records into GeoJSON point features and
// writes the resulting FeatureCollection.
package feature

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/pdiddy/markets-geojson/internal/market"
)

// Property keys carried on every feature.
const (
	PropMarketName        = "market_name"
	PropStreetAddress     = "street_address"
	PropDaysOfOperation   = "days_of_operation"
	PropHoursOfOperations = "hours_of_operations"
	PropAcceptsEBT        = "accepts_ebt"
	PropOpenYearRound     = "open_year_round"
)

// BuildResult holds the features built from a batch of records.
type BuildResult struct {
	Collection *geojson.FeatureCollection
	Skipped    int
}

// Written returns the number of features in the collection.
func (r BuildResult) Written() int {
	return len(r.Collection.Features)
}

// Build converts records into point features in input order. A record
// whose latitude or longitude does not parse as a finite number is
// skipped with a message on w.
func Build(records []market.Record, w io.Writer) BuildResult {
	result := BuildResult{Collection: geojson.NewFeatureCollection()}
	for _, rec := range records {
		f, err := NewPoint(rec)
		if err != nil {
			fmt.Fprintf(w, "skipping invalid coordinates: %s - %v\n", rec.MarketName, err)
			result.Skipped++
			continue
		}
		result.Collection.Append(f)
	}
	return result
}

// NewPoint builds the feature for one record with coordinates ordered
// [longitude, latitude].
func NewPoint(rec market.Record) (*geojson.Feature, error) {
	lat, err := parseCoord(rec.Latitude)
	if err != nil {
		return nil, err
	}
	lng, err := parseCoord(rec.Longitude)
	if err != nil {
		return nil, err
	}

	f := geojson.NewFeature(orb.Point{lng, lat})
	f.Properties[PropMarketName] = rec.MarketName
	f.Properties[PropStreetAddress] = rec.StreetAddress
	f.Properties[PropDaysOfOperation] = rec.DaysOfOperation
	f.Properties[PropHoursOfOperations] = rec.HoursOfOperations
	f.Properties[PropAcceptsEBT] = rec.AcceptsEBT
	f.Properties[PropOpenYearRound] = rec.OpenYearRound
	return f, nil
}

func parseCoord(s string) (float64, error) {
	text := strings.TrimSpace(s)
	if isHexFloat(text) {
		return 0, fmt.Errorf("could not convert string to float: %q", s)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("could not convert string to float: %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("coordinate is not finite: %q", s)
	}
	return v, nil
}

// isHexFloat reports whether s uses hexadecimal float syntax, which
// ParseFloat accepts but coordinate text never carries.
func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Point returns the feature's point geometry, or false if it has none.
func Point(f *geojson.Feature) (orb.Point, bool) {
	if f == nil || f.Geometry == nil {
		return orb.Point{}, false
	}
	p, ok := f.Geometry.(orb.Point)
	return p, ok
}
