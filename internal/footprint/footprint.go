// Package footprint downloads building footprint tiles covering a bounding
// box from a quadkey-partitioned dataset and merges them into one GeoJSON file.
package footprint

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/handbook-cli/internal/fetcher"
	"github.com/sells-group/handbook-cli/internal/tile"
)

// DefaultManifestURL is the dataset links table of the global building footprints release.
const DefaultManifestURL = "https://minedbuildings.blob.core.windows.net/global-buildings/dataset-links.csv"

// Options configures a download run.
type Options struct {
	BBox        BBox
	Zoom        int
	ManifestURL string
	Output      string
	OutputCRS   CRS

	// TempDir is the parent directory for the scratch directory. Empty
	// means the system default.
	TempDir string
}

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Quadkeys []string
	Features int
	Output   string
}

func (o *Options) applyDefaults() {
	if o.BBox == (BBox{}) {
		o.BBox = DefaultBBox
	}
	if o.Zoom == 0 {
		o.Zoom = 9
	}
	if o.ManifestURL == "" {
		o.ManifestURL = DefaultManifestURL
	}
	if o.Output == "" {
		o.Output = "london-boundingbox.geojson"
	}
	if o.OutputCRS == "" {
		o.OutputCRS = WGS84
	}
}

// Run downloads every tile covering opts.BBox, merges the footprints within
// the box and writes them to opts.Output. The scratch directory is removed
// when Run returns. Nothing is written if any quadkey cannot be resolved.
func Run(ctx context.Context, f fetcher.Fetcher, opts Options) (*Summary, error) {
	opts.applyDefaults()
	if err := opts.BBox.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := zap.L().With(zap.String("component", "footprint"), zap.String("run_id", runID))

	box := opts.BBox
	quadkeys, err := tile.Quadkeys(box.MinX, box.MinY, box.MaxX, box.MaxY, opts.Zoom)
	if err != nil {
		return nil, eris.Wrap(err, "footprint: compute tiles")
	}
	log.Info("input area spans tiles",
		zap.Int("tiles", len(quadkeys)),
		zap.Strings("quadkeys", quadkeys),
		zap.Int("zoom", opts.Zoom),
	)

	manifest, err := LoadManifest(ctx, f, opts.ManifestURL)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp(opts.TempDir, "footprints-*")
	if err != nil {
		return nil, eris.Wrap(err, "footprint: create temp dir")
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			log.Warn("failed to remove temp dir", zap.String("dir", tmpDir), zap.Error(rmErr))
		}
	}()

	paths, err := FetchTiles(ctx, f, manifest, quadkeys, tmpDir)
	if err != nil {
		return nil, err
	}

	combined, err := Merge(paths, box)
	if err != nil {
		return nil, err
	}

	if err := Reproject(combined, WGS84, opts.OutputCRS); err != nil {
		return nil, err
	}
	if err := WriteCollection(opts.Output, combined, opts.OutputCRS); err != nil {
		return nil, err
	}

	log.Info("footprints written",
		zap.String("output", opts.Output),
		zap.Int("features", len(combined.Features)),
		zap.String("crs", string(opts.OutputCRS)),
	)

	return &Summary{
		RunID:    runID,
		Quadkeys: quadkeys,
		Features: len(combined.Features),
		Output:   opts.Output,
	}, nil
}

// FetchTiles resolves each quadkey in the manifest and downloads its tile to
// dir/<quadkey>.geojson, one at a time. Existing files are reused. The first
// lookup failure aborts the loop. Returns the tile paths in quadkey order.
func FetchTiles(ctx context.Context, f fetcher.Fetcher, m *Manifest, quadkeys []string, dir string) ([]string, error) {
	log := zap.L().With(zap.String("component", "footprint.fetch"))

	paths := make([]string, 0, len(quadkeys))
	for i, qk := range quadkeys {
		row, err := m.Lookup(qk)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(dir, qk+".geojson")
		paths = append(paths, path)

		if _, err := os.Stat(path); err == nil {
			log.Debug("tile already downloaded, skipping", zap.String("quadkey", qk))
			continue
		}

		log.Info("downloading tile",
			zap.String("quadkey", qk),
			zap.String("location", row.Location),
			zap.Int("index", i+1),
			zap.Int("total", len(quadkeys)),
		)
		if _, err := DownloadTile(ctx, f, row, path); err != nil {
			return nil, err
		}
	}
	return paths, nil
}
