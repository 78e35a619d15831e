// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the markets-geojson CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/markets-geojson/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

// rootCmd is the base command. Invoked bare, it runs the conversion.
var rootCmd = &cobra.Command{
	Use:   "markets-geojson",
	Short: "Convert the NYC farmers market CSV into GeoJSON",
	Long: `markets-geojson reads the NYC farmers market CSV export, keeps the rows
for one borough (Manhattan by default), and writes them as a GeoJSON
FeatureCollection of points.

Run with no subcommand to convert using the configured paths. Subcommands
download the source, query the local catalog, find nearby markets, publish
to Postgres, and watch the source for changes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
	RunE:         runConvert,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./markets-geojson.yaml or ~/.config/markets-geojson/config.yaml)")
	addConvertFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("markets-geojson")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "markets-geojson"))
		}
	}

	viper.SetEnvPrefix("MARKETS_GEOJSON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// stringSetting resolves a setting from the flag when set, then the config
// key, then the flag default.
func stringSetting(cmd *cobra.Command, flag, key string) string {
	v, _ := cmd.Flags().GetString(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if c := viper.GetString(key); c != "" {
		return c
	}
	return v
}

func intSetting(cmd *cobra.Command, flag, key string) int {
	v, _ := cmd.Flags().GetInt(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return v
}

func durationSetting(cmd *cobra.Command, flag, key string) time.Duration {
	v, _ := cmd.Flags().GetDuration(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	return v
}

func boolSetting(cmd *cobra.Command, flag, key string) bool {
	v, _ := cmd.Flags().GetBool(flag)
	if cmd.Flags().Changed(flag) {
		return v
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return v
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
