// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markets-geojson/internal/watch"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert now and again whenever the source CSV changes",
	Long: `Watch runs convert once, then watches the source CSV and converts again
after each change. Failed runs are reported and watching continues until
interrupted.`,
	RunE: runWatch,
}

func init() {
	addConvertFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before re-running")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	catCfg := catalogConfig(cmd)
	watchCfg := types.WatchConfig{
		Debounce:   durationSetting(cmd, "debounce", "watch.debounce"),
		RunOnStart: true,
	}

	run := func(ctx context.Context) error {
		return convertOnce(ctx, cfg, catCfg)
	}
	return watch.Run(cmd.Context(), cfg.SourcePath, watchCfg, run, os.Stdout)
}
