// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/markets-geojson/internal/catalog"
	"github.com/pdiddy/markets-geojson/internal/pipeline"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the market CSV into a GeoJSON FeatureCollection",
	Long: `Convert reads the source CSV, skips its two header lines, keeps rows
whose Borough matches exactly, and writes one Point feature per market with
valid coordinates. Rows with unparsable coordinates are reported and skipped.

With --catalog the run and its accepted markets are also recorded in the
local SQLite catalog.`,
	RunE: runConvert,
}

func init() {
	addConvertFlags(convertCmd)
	rootCmd.AddCommand(convertCmd)
}

// addConvertFlags registers the conversion flags. The root command carries
// them too so a bare invocation converts.
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", types.DefaultSourcePath, "source CSV path")
	cmd.Flags().String("dest", types.DefaultDestPath, "output GeoJSON path")
	cmd.Flags().String("borough", types.DefaultBoroughFilter, "borough to keep (exact match)")
	cmd.Flags().Bool("csv-quotes", false, "parse quoted fields instead of splitting on every comma")
	cmd.Flags().Bool("catalog", false, "record the run in the local catalog")
	cmd.Flags().String("catalog-dir", types.DefaultCatalogDir, "catalog directory (contains markets.db)")
}

func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.PipelineConfig{
		SourcePath:    stringSetting(cmd, "source", "pipeline.source_path"),
		DestPath:      stringSetting(cmd, "dest", "pipeline.dest_path"),
		BoroughFilter: stringSetting(cmd, "borough", "pipeline.borough_filter"),
		Split:         types.SplitMode(viper.GetString("pipeline.split")),
	}
	if cmd.Flags().Changed("csv-quotes") {
		cfg.Split = types.SplitFaithful
		if quotes, _ := cmd.Flags().GetBool("csv-quotes"); quotes {
			cfg.Split = types.SplitCSV
		}
	}
	return cfg.WithDefaults()
}

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	return types.CatalogConfig{
		Dir:        stringSetting(cmd, "catalog-dir", "catalog.dir"),
		MaxResults: intSetting(cmd, "max-results", "catalog.max_results"),
		Enabled:    boolSetting(cmd, "catalog", "catalog.enabled"),
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	return convertOnce(cmd.Context(), pipelineConfig(cmd), catalogConfig(cmd))
}

// convertOnce runs the pipeline and, when enabled, catalogs the result.
func convertOnce(ctx context.Context, cfg types.PipelineConfig, catCfg types.CatalogConfig) error {
	summary, err := pipeline.Run(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if !catCfg.Enabled {
		return nil
	}

	store, err := catalog.NewStore(catCfg)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(ctx, cfg, summary, os.Stdout)
	return err
}
