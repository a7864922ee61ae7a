package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/handbook-cli/internal/fetcher"
	"github.com/sells-group/handbook-cli/internal/footprint"
)

var footprintsCmd = &cobra.Command{
	Use:   "footprints",
	Short: "Download building footprints for the London bounding box",
	Long: `Computes the quadkey tiles covering the bounding box, resolves each tile in the
dataset links manifest, downloads the tiles one by one into a scratch
directory, keeps the footprints within the box, numbers them from 0 and
writes a single GeoJSON file.

A quadkey that is missing from the manifest, or listed more than once,
aborts the run before any output is written.`,
	RunE: runFootprints,
}

func init() {
	footprintsCmd.Flags().String("output", "", "output GeoJSON path (default: from config)")
	footprintsCmd.Flags().Int("zoom", 0, "quadkey zoom level (default: from config or 9)")
	footprintsCmd.Flags().String("crs", "", "output CRS, EPSG:4326 or EPSG:3857 (default: from config)")
	footprintsCmd.Flags().String("manifest-url", "", "dataset links CSV (default: from config)")
	rootCmd.AddCommand(footprintsCmd)
}

func runFootprints(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fc := cfg.Footprints
	if v, _ := cmd.Flags().GetString("output"); v != "" {
		fc.Output = v
	}
	if v, _ := cmd.Flags().GetInt("zoom"); v != 0 {
		fc.Zoom = v
	}
	if v, _ := cmd.Flags().GetString("crs"); v != "" {
		fc.OutputCRS = v
	}
	if v, _ := cmd.Flags().GetString("manifest-url"); v != "" {
		fc.ManifestURL = v
	}
	cfg.Footprints = fc
	if err := cfg.Validate(); err != nil {
		return err
	}

	crs, err := footprint.ParseCRS(fc.OutputCRS)
	if err != nil {
		return err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetch.UserAgent,
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
	})

	zap.L().Info("starting footprint download",
		zap.Int("zoom", fc.Zoom),
		zap.String("output", fc.Output),
		zap.String("crs", string(crs)),
	)

	sum, err := footprint.Run(ctx, f, footprint.Options{
		BBox:        footprint.DefaultBBox,
		Zoom:        fc.Zoom,
		ManifestURL: fc.ManifestURL,
		Output:      fc.Output,
		OutputCRS:   crs,
		TempDir:     fc.TempDir,
	})
	if err != nil {
		return eris.Wrap(err, "footprints")
	}

	fmt.Printf("Wrote %d footprints from %d tiles to %s\n", sum.Features, len(sum.Quadkeys), sum.Output)
	return nil
}
