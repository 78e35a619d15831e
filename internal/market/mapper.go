// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/markets-geojson/pkg/types"
)

// Delimiter separates fields in a source line.
const Delimiter = ","

// MapOptions controls row mapping.
type MapOptions struct {
	// Borough is the exact Borough value a record must carry to be kept.
	Borough string

	// Split selects the line splitter. Empty means types.SplitFaithful.
	Split types.SplitMode
}

// MapResult holds the outcome of mapping a batch of lines.
type MapResult struct {
	// Borough is the filter the records were accepted under.
	Borough string

	// Total counts every input line, including short and rejected ones.
	Total int

	// Accepted holds the kept records in input order.
	Accepted []Record
}

// MapRows splits each line, maps rows with at least MinFields fields into
// Records, and keeps those whose Borough equals opts.Borough exactly.
// Short rows are dropped silently; they still count toward Total.
func MapRows(lines []string, opts MapOptions) MapResult {
	split := splitter(opts.Split)
	result := MapResult{Borough: opts.Borough}

	for _, line := range lines {
		result.Total++
		rec, ok := FromRow(split(strings.TrimSpace(line)))
		if !ok {
			continue
		}
		if rec.Borough == opts.Borough {
			result.Accepted = append(result.Accepted, rec)
		}
	}
	return result
}

// Report writes the row counts followed by one name/address line per
// accepted record.
func Report(w io.Writer, r MapResult) {
	fmt.Fprintf(w, "total rows: %d\n", r.Total)
	fmt.Fprintf(w, "%s rows: %d\n", r.Borough, len(r.Accepted))
	fmt.Fprintf(w, "\n%s farmers markets:\n", r.Borough)
	for _, rec := range r.Accepted {
		fmt.Fprintf(w, "  %s - %s\n", rec.MarketName, rec.StreetAddress)
	}
}

func splitter(mode types.SplitMode) func(string) []string {
	if mode == types.SplitCSV {
		return splitCSV
	}
	return splitFaithful
}

// splitFaithful splits on every delimiter. A comma inside a quoted field
// produces extra columns.
func splitFaithful(line string) []string {
	return strings.Split(line, Delimiter)
}

// splitCSV parses line as a single CSV record. Malformed quoting falls back
// to the plain split.
func splitCSV(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	fields, err := r.Read()
	if err == io.EOF {
		return []string{""}
	}
	if err != nil {
		return splitFaithful(line)
	}
	return fields
}
