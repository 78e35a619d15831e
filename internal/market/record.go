// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package market reads the farmers market CSV and maps its rows into
// typed records filtered by borough.
package market

// MinFields is the number of leading fields a row needs (Borough through
// Longitude) to be mapped at all.
const MinFields = 6

// Columns lists the source column names in positional order.
var Columns = []string{
	"Borough",
	"Market Name",
	"Street Address",
	"Community District",
	"Latitude",
	"Longitude",
	"Days of Operation",
	"Hours of Operations",
	"Season Begin",
	"Season End",
	"Accepts EBT",
	"Distributes Health Bucks?",
	"Open Year-Round",
	"Cooking Demonstrations",
	"Location Point",
	"Zip Code",
}

// Record is one market row. All values are kept as source text.
type Record struct {
	Borough                string `json:"borough" yaml:"borough"`
	MarketName             string `json:"market_name" yaml:"market_name"`
	StreetAddress          string `json:"street_address" yaml:"street_address"`
	CommunityDistrict      string `json:"community_district" yaml:"community_district"`
	Latitude               string `json:"latitude" yaml:"latitude"`
	Longitude              string `json:"longitude" yaml:"longitude"`
	DaysOfOperation        string `json:"days_of_operation" yaml:"days_of_operation"`
	HoursOfOperations      string `json:"hours_of_operations" yaml:"hours_of_operations"`
	SeasonBegin            string `json:"season_begin" yaml:"season_begin"`
	SeasonEnd              string `json:"season_end" yaml:"season_end"`
	AcceptsEBT             string `json:"accepts_ebt" yaml:"accepts_ebt"`
	DistributesHealthBucks string `json:"distributes_health_bucks" yaml:"distributes_health_bucks"`
	OpenYearRound          string `json:"open_year_round" yaml:"open_year_round"`
	CookingDemonstrations  string `json:"cooking_demonstrations" yaml:"cooking_demonstrations"`
	LocationPoint          string `json:"location_point" yaml:"location_point"`
	ZipCode                string `json:"zip_code" yaml:"zip_code"`
}

// FromRow maps a split row into a Record by position. Fields past the end
// of the row are left empty. It reports false when the row has fewer than
// MinFields fields.
func FromRow(row []string) (Record, bool) {
	if len(row) < MinFields {
		return Record{}, false
	}
	at := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return Record{
		Borough:                at(0),
		MarketName:             at(1),
		StreetAddress:          at(2),
		CommunityDistrict:      at(3),
		Latitude:               at(4),
		Longitude:              at(5),
		DaysOfOperation:        at(6),
		HoursOfOperations:      at(7),
		SeasonBegin:            at(8),
		SeasonEnd:              at(9),
		AcceptsEBT:             at(10),
		DistributesHealthBucks: at(11),
		OpenYearRound:          at(12),
		CookingDemonstrations:  at(13),
		LocationPoint:          at(14),
		ZipCode:                at(15),
	}, true
}

// Field returns the value stored under a source column name, or "" with
// false for an unknown column.
func (r Record) Field(column string) (string, bool) {
	vals := r.values()
	for i, c := range Columns {
		if c == column {
			return vals[i], true
		}
	}
	return "", false
}

func (r Record) values() []string {
	return []string{
		r.Borough, r.MarketName, r.StreetAddress, r.CommunityDistrict,
		r.Latitude, r.Longitude, r.DaysOfOperation, r.HoursOfOperations,
		r.SeasonBegin, r.SeasonEnd, r.AcceptsEBT, r.DistributesHealthBucks,
		r.OpenYearRound, r.CookingDemonstrations, r.LocationPoint, r.ZipCode,
	}
}
