// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/markets-geojson/pkg/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the settings read from the config file",
	Long: `Config decodes markets-geojson.yaml (or --config) into the full set of
stage settings, fills in defaults, and prints the result as YAML. Credentials
are redacted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return writeConfig(os.Stdout, cfg)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// loadConfig decodes the viper settings into types.Config using the yaml
// field names the config file is written with.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.SquashTagOption = "inline"
	})
	if err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Pipeline = cfg.Pipeline.WithDefaults()
	if cfg.Fetch.URL == "" {
		cfg.Fetch.URL = types.DefaultSourceURL
	}
	if cfg.Fetch.DestPath == "" {
		cfg.Fetch.DestPath = cfg.Pipeline.SourcePath
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = types.DefaultUserAgent
	}
	if cfg.Catalog.Dir == "" {
		cfg.Catalog.Dir = types.DefaultCatalogDir
	}
	return cfg, nil
}

func writeConfig(w io.Writer, cfg types.Config) error {
	if cfg.Publish.DSN != "" {
		cfg.Publish.DSN = "<redacted>"
	}
	if cfg.Fetch.AppToken != "" {
		cfg.Fetch.AppToken = "<redacted>"
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
