package footprint

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/handbook-cli/internal/fetcher"
)

// tileRecord is one line of a tile's line-delimited GeoJSON.
type tileRecord struct {
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// DownloadTile fetches the tile published in row, converts its records to a
// FeatureCollection and writes it to path. Returns the number of features.
func DownloadTile(ctx context.Context, f fetcher.Fetcher, row ManifestRow, path string) (int, error) {
	log := zap.L().With(
		zap.String("component", "footprint.download"),
		zap.String("quadkey", row.QuadKey),
	)

	body, err := f.Download(ctx, row.URL)
	if err != nil {
		return 0, eris.Wrapf(err, "footprint: download tile %s", row.QuadKey)
	}
	defer body.Close() //nolint:errcheck

	r, err := fetcher.MaybeGunzip(body)
	if err != nil {
		return 0, eris.Wrapf(err, "footprint: open tile %s", row.QuadKey)
	}
	defer r.Close() //nolint:errcheck

	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	recCh, errCh := fetcher.DecodeJSONLines[tileRecord](ctx, r)
	var skipped int
	for rec := range recCh {
		var g geom.T
		if err := geojson.Unmarshal(rec.Geometry, &g); err != nil || g == nil {
			skipped++
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   g,
			Properties: rec.Properties,
		})
	}
	for err := range errCh {
		if err != nil {
			return 0, eris.Wrapf(err, "footprint: parse tile %s", row.QuadKey)
		}
	}

	if skipped > 0 {
		log.Debug("skipped records without usable geometry", zap.Int("skipped", skipped))
	}

	if err := WriteCollection(path, fc, WGS84); err != nil {
		return 0, err
	}

	log.Info("tile downloaded", zap.Int("features", len(fc.Features)), zap.String("path", path))
	return len(fc.Features), nil
}
