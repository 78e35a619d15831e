// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/markets-geojson/internal/catalog"
	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/internal/market"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

func TestParseBound(t *testing.T) {
	tests := []struct {
		in      string
		want    orb.Bound
		wantErr string
	}{
		{"-74.05,40.70,-73.98,40.75", orb.Bound{Min: orb.Point{-74.05, 40.70}, Max: orb.Point{-73.98, 40.75}}, ""},
		{" -74 , 40 , -73 , 41 ", orb.Bound{Min: orb.Point{-74, 40}, Max: orb.Point{-73, 41}}, ""},
		{"-74,40,-73", orb.Bound{}, "want minLng,minLat,maxLng,maxLat"},
		{"-74,north,-73,41", orb.Bound{}, "invalid syntax"},
		{"-73,40,-74,41", orb.Bound{}, "min exceeds max"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBound(tt.in)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Greenma...", truncate("Greenmarket at Union", 10))
	assert.Equal(t, "Café Cr...", truncate("Café Crêpes Market", 10))
}

// resetCommands restores every flag to its default and clears the args so
// rootCmd can be executed again by the next test.
func resetCommands(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		var reset func(c *cobra.Command)
		reset = func(c *cobra.Command) {
			for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
				fs.VisitAll(func(f *pflag.Flag) {
					if sv, ok := f.Value.(pflag.SliceValue); ok {
						_ = sv.Replace(nil)
					} else {
						_ = f.Value.Set(f.DefValue)
					}
					f.Changed = false
				})
			}
			for _, sub := range c.Commands() {
				reset(sub)
			}
		}
		reset(rootCmd)
		rootCmd.SetArgs(nil)
	})
}

func writeMarketsCSV(t *testing.T) (src, dest string) {
	t.Helper()
	dir := t.TempDir()
	src = filepath.Join(dir, "markets.csv")
	dest = filepath.Join(dir, "out.geojson")
	csv := "Borough,Market Name\nLatitude,Longitude\n" +
		"Manhattan,Union Square,E 17th St,MN05,40.737,-73.990,Sat,8am-6pm,,,Yes,No,Yes\n" +
		"Bronx,Poe Park,Grand Concourse,BX07,40.865,-73.894,Tue\n"
	require.NoError(t, os.WriteFile(src, []byte(csv), 0o644))
	return src, dest
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"convert subcommand", []string{"convert"}},
		{"bare root", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetCommands(t)
			src, dest := writeMarketsCSV(t)

			rootCmd.SetArgs(append(tt.args, "--source", src, "--dest", dest))
			require.NoError(t, rootCmd.Execute())

			fc, err := feature.ReadFile(dest)
			require.NoError(t, err)
			require.Len(t, fc.Features, 1)
			assert.Equal(t, "Union Square", fc.Features[0].Properties.MustString(feature.PropMarketName))
		})
	}
}

func TestConvertCommandBoroughFlag(t *testing.T) {
	resetCommands(t)
	src, dest := writeMarketsCSV(t)

	rootCmd.SetArgs([]string{"--source", src, "--dest", dest, "--borough", "Bronx"})
	require.NoError(t, rootCmd.Execute())

	fc, err := feature.ReadFile(dest)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Poe Park", fc.Features[0].Properties.MustString(feature.PropMarketName))
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("pipeline.borough_filter", "Bronx")
	viper.Set("pipeline.split", "csv")
	viper.Set("fetch.user_agent", "tester/1.0")
	viper.Set("fetch.timeout", "45s")
	viper.Set("watch.debounce", "2s")
	viper.Set("publish.dsn", "postgres://user:pw@localhost/markets")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "Bronx", cfg.Pipeline.BoroughFilter)
	assert.Equal(t, types.SplitCSV, cfg.Pipeline.Split)
	assert.Equal(t, types.DefaultSourcePath, cfg.Pipeline.SourcePath)
	assert.Equal(t, "tester/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 45*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, types.DefaultSourcePath, cfg.Fetch.DestPath)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	assert.Equal(t, types.DefaultCatalogDir, cfg.Catalog.Dir)

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, cfg))
	out := buf.String()
	assert.Contains(t, out, "borough_filter: Bronx")
	assert.Contains(t, out, "user_agent: tester/1.0")
	assert.Contains(t, out, "dsn: <redacted>")
	assert.NotContains(t, out, "pw@localhost")
}

func TestCheckFields(t *testing.T) {
	assert.NoError(t, checkFields(nil))
	assert.NoError(t, checkFields([]string{"Hours of Operations", "Zip Code"}))
	assert.ErrorContains(t, checkFields([]string{"Zip"}), `unknown field "Zip"`)
}

func TestFormatSearchOutput(t *testing.T) {
	entries := []catalog.Entry{{Record: market.Record{
		MarketName:        "Union Square Greenmarket",
		StreetAddress:     "E 17th St & Union Sq W",
		AcceptsEBT:        "Yes",
		OpenYearRound:     "Yes",
		DaysOfOperation:   "Mon;Wed;Fri;Sat",
		HoursOfOperations: "8am-6pm",
		ZipCode:           "10003",
	}}}

	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, entries, false, []string{"Hours of Operations", "Zip Code"}))
	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasSuffix(lines[0], "Days              Hours of Operations  Zip Code"), lines[0])
	assert.True(t, strings.HasSuffix(lines[2], "8am-6pm  10003"), lines[2])
	assert.Contains(t, buf.String(), "1 results")

	buf.Reset()
	require.NoError(t, formatSearchOutput(&buf, nil, false, nil))
	assert.Equal(t, "No results found.\n", buf.String())
}
