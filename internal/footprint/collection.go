package footprint

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ReadCollection loads a GeoJSON FeatureCollection from path.
func ReadCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "footprint: read %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "footprint: decode %s", path)
	}
	return &fc, nil
}

// WriteCollection writes fc to path as GeoJSON. Collections in a CRS other
// than WGS84 carry a named "crs" member so GIS tools pick up the projection.
func WriteCollection(path string, fc *geojson.FeatureCollection, crs CRS) error {
	if fc.Features == nil {
		fc.Features = []*geojson.Feature{}
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrap(err, "footprint: encode collection")
	}

	if crs != "" && crs != WGS84 {
		data, err = withNamedCRS(data, crs)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "footprint: write %s", path)
	}
	return nil
}

func withNamedCRS(data []byte, crs CRS) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, eris.Wrap(err, "footprint: reopen collection")
	}

	named, err := json.Marshal(map[string]any{
		"type":       "name",
		"properties": map[string]string{"name": "urn:ogc:def:crs:EPSG::" + string(crs)[len("EPSG:"):]},
	})
	if err != nil {
		return nil, eris.Wrap(err, "footprint: encode crs")
	}
	obj["crs"] = named

	out, err := json.Marshal(obj)
	if err != nil {
		return nil, eris.Wrap(err, "footprint: encode collection")
	}
	return out, nil
}
