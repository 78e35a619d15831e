// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markets-geojson/internal/catalog"
	"github.com/pdiddy/markets-geojson/internal/market"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the local market catalog (search, runs, export)",
	Long: `Catalog manages the local SQLite record of converted markets. Runs are
added by convert --catalog. Use subcommands to search markets, list runs, or
export the catalog.`,
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search cataloged markets by name, address, and filters",
	Long: `Search matches every query word against market names and addresses
and applies the borough, EBT, and year-round filters. With no query and no
filters it lists markets by name.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	fields, _ := cmd.Flags().GetStringSlice("field")
	if err := checkFields(fields); err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Search(cmd.Context(), queryOptsFromFlags(cmd, args))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(os.Stdout, entries, jsonOutput, fields)
}

// checkFields rejects names that are not source column names.
func checkFields(fields []string) error {
	for _, f := range fields {
		if _, ok := (market.Record{}).Field(f); !ok {
			return fmt.Errorf("unknown field %q: want one of %s", f, strings.Join(market.Columns, ", "))
		}
	}
	return nil
}

// formatSearchOutput prints entries as a table, or as JSON. Each extra
// source column named in fields is appended to the table row.
func formatSearchOutput(w io.Writer, entries []catalog.Entry, jsonOutput bool, fields []string) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	header := fmt.Sprintf("%-4s  %-40s  %-36s  %-3s  %-3s  %-16s", "#", "Market", "Address", "EBT", "YR", "Days")
	for _, f := range fields {
		header += "  " + f
	}
	fmt.Fprintln(w, strings.TrimRight(header, " "))
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, e := range entries {
		row := fmt.Sprintf("%-4d  %-40s  %-36s  %-3s  %-3s  %-16s",
			i+1, truncate(e.MarketName, 40), truncate(e.StreetAddress, 36),
			e.AcceptsEBT, e.OpenYearRound, e.DaysOfOperation)
		for _, f := range fields {
			v, _ := e.Field(f)
			row += "  " + v
		}
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}

	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

// --- runs subcommand ---

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded conversion runs, newest first",
	RunE:  runCatalogRuns,
}

func runCatalogRuns(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Printf("No runs recorded in %s.\n", store.Dir())
		return nil
	}
	fmt.Printf("%d runs in %s\n", len(runs), store.Dir())
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%s  %s  %-10s  total=%d accepted=%d written=%d skipped=%d  %s\n",
			r.ID, r.CreatedAt, r.Borough, r.Total, r.Accepted, r.Written, r.Skipped, r.SourcePath)
	}
	return nil
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the cataloged markets (or a filtered subset) to
catalog/export.yaml or export.json, or to --output. Supports the same filter
flags as search.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(cmd.Context(), output, opts)
	case "json":
		path, err = store.ExportJSON(cmd.Context(), output, opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	borough, _ := cmd.Flags().GetString("borough")
	ebt, _ := cmd.Flags().GetBool("ebt")
	yearRound, _ := cmd.Flags().GetBool("year-round")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:         queryText,
		Borough:       borough,
		EBTOnly:       ebt,
		YearRoundOnly: yearRound,
		MaxResults:    limit,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "catalog directory (contains markets.db)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	for _, c := range []*cobra.Command{catalogSearchCmd, catalogExportCmd} {
		c.Flags().String("query", "", "full-text search over names and addresses")
		c.Flags().String("borough", "", "filter by borough")
		c.Flags().Bool("ebt", false, "only markets that accept EBT")
		c.Flags().Bool("year-round", false, "only markets open year-round")
	}
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")
	catalogSearchCmd.Flags().StringSlice("field", nil, `extra source columns to show, e.g. "Hours of Operations"`)
	catalogRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	catalogExportCmd.Flags().String("output", "", "output path (default: <catalog-dir>/export.<format>)")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogRunsCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
