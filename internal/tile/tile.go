// Package tile implements the Web Mercator tile pyramid used by slippy maps
// and Bing quadkeys.
package tile

import (
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	// MaxZoom is the deepest level a quadkey can address here.
	MaxZoom = 23

	// MaxLat is the latitude limit of the Web Mercator projection.
	MaxLat = 85.051129

	// lngLatEpsilon nudges the lower-right corner inward so a box edge that
	// falls exactly on a tile boundary does not pull in the neighbour tile.
	lngLatEpsilon = 1e-11
)

// Tile is an XYZ tile with Y counted from the top (north).
type Tile struct {
	X int
	Y int
	Z int
}

// Quadkey encodes the tile as a Bing Maps quadkey, one base-4 digit per level.
func (t Tile) Quadkey() string {
	var qk strings.Builder
	qk.Grow(t.Z)
	for i := t.Z; i > 0; i-- {
		digit := 0
		mask := 1 << (i - 1)
		if t.X&mask != 0 {
			digit++
		}
		if t.Y&mask != 0 {
			digit += 2
		}
		qk.WriteByte(byte('0' + digit))
	}
	return qk.String()
}

// ParseQuadkey decodes a quadkey back into a tile.
func ParseQuadkey(qk string) (Tile, error) {
	if len(qk) > MaxZoom {
		return Tile{}, eris.Errorf("tile: quadkey %q deeper than zoom %d", qk, MaxZoom)
	}
	t := Tile{Z: len(qk)}
	for i, c := range qk {
		mask := 1 << (t.Z - i - 1)
		switch c {
		case '0':
		case '1':
			t.X |= mask
		case '2':
			t.Y |= mask
		case '3':
			t.X |= mask
			t.Y |= mask
		default:
			return Tile{}, eris.Errorf("tile: invalid quadkey digit %q in %q", c, qk)
		}
	}
	return t, nil
}

// Bounds returns the tile extent in WGS84 degrees.
func (t Tile) Bounds() (west, south, east, north float64) {
	n := float64(int(1) << t.Z)
	west = float64(t.X)/n*360.0 - 180.0
	east = float64(t.X+1)/n*360.0 - 180.0
	north = tileLat(float64(t.Y), n)
	south = tileLat(float64(t.Y+1), n)
	return west, south, east, north
}

func tileLat(y, n float64) float64 {
	return math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180.0 / math.Pi
}

// FromLngLat returns the tile containing the point at the given zoom,
// clamped to the valid range.
func FromLngLat(lng, lat float64, zoom int) Tile {
	x := (lng + 180.0) / 360.0
	sinLat := math.Sin(lat * math.Pi / 180.0)
	y := 0.5 - 0.25*math.Log((1.0+sinLat)/(1.0-sinLat))/math.Pi

	size := 1 << zoom
	return Tile{
		X: clamp(int(math.Floor(x*float64(size))), 0, size-1),
		Y: clamp(int(math.Floor(y*float64(size))), 0, size-1),
		Z: zoom,
	}
}

// Covering returns every tile at zoom that intersects the box, row by row
// from the north-west corner.
func Covering(west, south, east, north float64, zoom int) ([]Tile, error) {
	if zoom < 0 || zoom > MaxZoom {
		return nil, eris.Errorf("tile: zoom %d out of range [0, %d]", zoom, MaxZoom)
	}
	if west > east || south > north {
		return nil, eris.Errorf("tile: inverted box (%f, %f, %f, %f)", west, south, east, north)
	}

	west = math.Max(west, -180.0)
	east = math.Min(east, 180.0)
	south = math.Max(south, -MaxLat)
	north = math.Min(north, MaxLat)

	ul := FromLngLat(west, north, zoom)
	lr := FromLngLat(east-lngLatEpsilon, south+lngLatEpsilon, zoom)

	tiles := make([]Tile, 0, (lr.X-ul.X+1)*(lr.Y-ul.Y+1))
	for y := ul.Y; y <= lr.Y; y++ {
		for x := ul.X; x <= lr.X; x++ {
			tiles = append(tiles, Tile{X: x, Y: y, Z: zoom})
		}
	}
	return tiles, nil
}

// Quadkeys returns the sorted, deduplicated quadkeys of the tiles covering the box.
func Quadkeys(west, south, east, north float64, zoom int) ([]string, error) {
	tiles, err := Covering(west, south, east, north, zoom)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(tiles))
	keys := make([]string, 0, len(tiles))
	for _, t := range tiles {
		qk := t.Quadkey()
		if _, ok := seen[qk]; ok {
			continue
		}
		seen[qk] = struct{}{}
		keys = append(keys, qk)
	}
	sort.Strings(keys)
	return keys, nil
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
