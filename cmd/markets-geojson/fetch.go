// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/markets-geojson/internal/fetch"
	"github.com/pdiddy/markets-geojson/internal/secrets"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

const defaultTimeout = 60 * time.Second

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the farmers market CSV from NYC Open Data",
	Long: `Fetch downloads the current farmers market CSV export to the source path
used by convert. The existing file is replaced only after a complete
download. A Socrata app token is read from .secrets/socrata-app-token when
present.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("url", types.DefaultSourceURL, "CSV export URL")
	fetchCmd.Flags().String("dest", types.DefaultSourcePath, "where to write the CSV")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().String("user-agent", types.DefaultUserAgent, "User-Agent header")
	fetchCmd.Flags().Int("max-retries", 0, "retries on HTTP 429/503 (0 = default)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	timeout := durationSetting(cmd, "timeout", "fetch.timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: stringSetting(cmd, "user-agent", "fetch.user_agent"),
		},
		URL:        stringSetting(cmd, "url", "fetch.url"),
		DestPath:   fetchDest(cmd),
		AppToken:   loadedSecrets.Or(secrets.SocrataAppToken, viper.GetString("fetch.app_token")),
		MaxRetries: intSetting(cmd, "max-retries", "fetch.max_retries"),
	}

	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	_, err := fetch.Download(cmd.Context(), client, cfg, os.Stdout)
	return err
}

// fetchDest defaults to the conversion source so fetch and convert agree.
func fetchDest(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("dest") && viper.GetString("fetch.dest_path") == "" {
		if src := viper.GetString("pipeline.source_path"); src != "" {
			return src
		}
	}
	return stringSetting(cmd, "dest", "fetch.dest_path")
}
