package footprint

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// CRS names a coordinate reference system by EPSG code.
type CRS string

// Supported coordinate reference systems.
const (
	WGS84       CRS = "EPSG:4326"
	WebMercator CRS = "EPSG:3857"
)

// earthRadius is the WGS84 semi-major axis in meters.
const earthRadius = 6378137.0

const maxMercatorLat = 85.051128779806604

// ParseCRS accepts "EPSG:4326", "epsg:3857" or a bare code.
func ParseCRS(s string) (CRS, error) {
	code := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "EPSG:")
	switch code {
	case "4326":
		return WGS84, nil
	case "3857", "900913":
		return WebMercator, nil
	default:
		return "", eris.Errorf("footprint: unsupported CRS %q", s)
	}
}

// Reproject transforms every feature geometry in place.
func Reproject(fc *geojson.FeatureCollection, from, to CRS) error {
	if from == to {
		return nil
	}

	var fn func(x, y float64) (float64, float64)
	switch {
	case from == WGS84 && to == WebMercator:
		fn = lngLatToMercator
	case from == WebMercator && to == WGS84:
		fn = mercatorToLngLat
	default:
		return eris.Errorf("footprint: no transform from %s to %s", from, to)
	}

	for _, f := range fc.Features {
		if f.Geometry != nil {
			transform(f.Geometry, fn)
		}
	}
	return nil
}

func transform(g geom.T, fn func(x, y float64) (float64, float64)) {
	if gc, ok := g.(*geom.GeometryCollection); ok {
		for _, member := range gc.Geoms() {
			transform(member, fn)
		}
		return
	}

	flat := g.FlatCoords()
	stride := g.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = fn(flat[i], flat[i+1])
	}
}

func lngLatToMercator(lng, lat float64) (float64, float64) {
	lat = math.Max(math.Min(lat, maxMercatorLat), -maxMercatorLat)
	x := earthRadius * lng * math.Pi / 180.0
	y := earthRadius * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360.0))
	return x, y
}

func mercatorToLngLat(x, y float64) (float64, float64) {
	lng := x / earthRadius * 180.0 / math.Pi
	lat := (2*math.Atan(math.Exp(y/earthRadius)) - math.Pi/2) * 180.0 / math.Pi
	return lng, lat
}
