package footprint

import (
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// IDProperty is the feature property that carries the sequential identifier.
const IDProperty = "id"

// Merge reloads the tile files in order, keeps the features within box and
// numbers them from 0 across all files.
func Merge(paths []string, box BBox) (*geojson.FeatureCollection, error) {
	log := zap.L().With(zap.String("component", "footprint.merge"))

	combined := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	next := 0
	for _, path := range paths {
		fc, err := ReadCollection(path)
		if err != nil {
			return nil, err
		}

		kept := 0
		for _, f := range fc.Features {
			if f == nil || !box.Within(f.Geometry) {
				continue
			}
			if f.Properties == nil {
				f.Properties = make(map[string]any, 1)
			}
			f.Properties[IDProperty] = next
			next++
			kept++
			combined.Features = append(combined.Features, f)
		}

		log.Debug("tile merged",
			zap.String("path", path),
			zap.Int("features", len(fc.Features)),
			zap.Int("kept", kept),
		)
	}

	return combined, nil
}
