// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/internal/publish"
	"github.com/pdiddy/markets-geojson/internal/secrets"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Copy the GeoJSON markets into a Postgres table",
	Long: `Publish loads the GeoJSON written by convert and replaces the borough's
rows in a Postgres table using COPY. The DSN comes from --dsn, the
publish.dsn config key, or .secrets/postgres-dsn.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("dsn", "", "Postgres connection string")
	publishCmd.Flags().String("table", publish.DefaultTable, "target table")
	publishCmd.Flags().String("geojson", types.DefaultDestPath, "GeoJSON file to publish")
	publishCmd.Flags().String("borough", types.DefaultBoroughFilter, "borough the rows belong to")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg := types.PublishConfig{
		DSN:   loadedSecrets.Or(secrets.PostgresDSN, stringSetting(cmd, "dsn", "publish.dsn")),
		Table: stringSetting(cmd, "table", "publish.table"),
	}

	fc, err := feature.ReadFile(stringSetting(cmd, "geojson", "pipeline.dest_path"))
	if err != nil {
		return err
	}

	p, err := publish.NewPublisher(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	_, err = p.Publish(cmd.Context(), stringSetting(cmd, "borough", "pipeline.borough_filter"), fc, os.Stdout)
	return err
}
