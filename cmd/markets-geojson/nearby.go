// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/pdiddy/markets-geojson/internal/feature"
	"github.com/pdiddy/markets-geojson/internal/spatial"
	"github.com/pdiddy/markets-geojson/pkg/types"
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find the markets closest to a point in the GeoJSON output",
	Long: `Nearby loads the GeoJSON written by convert and lists the k markets
nearest to --lng/--lat with their distance in metres. With --bbox it lists
every market inside minLng,minLat,maxLng,maxLat instead.`,
	RunE: runNearby,
}

func init() {
	nearbyCmd.Flags().String("geojson", types.DefaultDestPath, "GeoJSON file to search")
	nearbyCmd.Flags().Float64("lng", 0, "longitude of the search point")
	nearbyCmd.Flags().Float64("lat", 0, "latitude of the search point")
	nearbyCmd.Flags().Int("k", 5, "number of markets to list")
	nearbyCmd.Flags().String("bbox", "", "bounding box minLng,minLat,maxLng,maxLat")

	rootCmd.AddCommand(nearbyCmd)
}

func runNearby(cmd *cobra.Command, args []string) error {
	path := stringSetting(cmd, "geojson", "pipeline.dest_path")
	fc, err := feature.ReadFile(path)
	if err != nil {
		return err
	}
	idx := spatial.NewIndex(fc)
	if idx.Len() == 0 {
		return fmt.Errorf("%s has no point features", path)
	}

	bbox, _ := cmd.Flags().GetString("bbox")
	if bbox != "" {
		b, err := parseBound(bbox)
		if err != nil {
			return err
		}
		hits := idx.Within(b)
		for i, h := range hits {
			fmt.Printf("%2d. %-40s  %s  (%.6f, %.6f)\n", i+1,
				h.Feature.Properties.MustString(feature.PropMarketName, ""),
				h.Feature.Properties.MustString(feature.PropStreetAddress, ""),
				h.Point.Lon(), h.Point.Lat())
		}
		fmt.Printf("\n%d markets in box\n", len(hits))
		return nil
	}

	if !cmd.Flags().Changed("lng") || !cmd.Flags().Changed("lat") {
		return fmt.Errorf("--lng and --lat are required unless --bbox is given")
	}
	lng, _ := cmd.Flags().GetFloat64("lng")
	lat, _ := cmd.Flags().GetFloat64("lat")
	k, _ := cmd.Flags().GetInt("k")

	hits := idx.Nearest(lng, lat, k)
	for i, h := range hits {
		fmt.Printf("%2d. %-40s  %7.0f m  %s\n", i+1,
			h.Feature.Properties.MustString(feature.PropMarketName, ""),
			h.Meters,
			h.Feature.Properties.MustString(feature.PropStreetAddress, ""))
	}
	fmt.Printf("\n%d nearest of %d markets\n", len(hits), idx.Len())
	return nil
}

// parseBound reads "minLng,minLat,maxLng,maxLat".
func parseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bbox %q: want minLng,minLat,maxLng,maxLat", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("bbox %q: min exceeds max", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}
