package footprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

var testBox = BBox{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

func poly(coords ...geom.Coord) *geom.Polygon {
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords})
}

func line(coords ...geom.Coord) *geom.LineString {
	return geom.NewLineString(geom.XY).MustSetCoords(coords)
}

func point(x, y float64) *geom.Point {
	return geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{x, y})
}

func TestBBoxWithin(t *testing.T) {
	tests := []struct {
		name string
		g    geom.T
		want bool
	}{
		{"nil", nil, false},
		{"polygon inside", poly(geom.Coord{1, 1}, geom.Coord{2, 1}, geom.Coord{2, 2}, geom.Coord{1, 2}, geom.Coord{1, 1}), true},
		{"polygon crossing edge", poly(geom.Coord{9, 9}, geom.Coord{11, 9}, geom.Coord{11, 11}, geom.Coord{9, 11}, geom.Coord{9, 9}), false},
		{"polygon outside", poly(geom.Coord{20, 20}, geom.Coord{21, 20}, geom.Coord{21, 21}, geom.Coord{20, 20}), false},
		{"box itself", testBox.Polygon(), true},
		{"polygon touching edge from inside", poly(geom.Coord{0, 0}, geom.Coord{5, 0}, geom.Coord{5, 5}, geom.Coord{0, 0}), true},
		{"point interior", point(5, 5), true},
		{"point on edge", point(0, 5), false},
		{"point outside", point(-1, 5), false},
		{"line along edge", line(geom.Coord{0, 0}, geom.Coord{10, 0}), false},
		{"line along two edges", line(geom.Coord{0, 0}, geom.Coord{10, 0}, geom.Coord{10, 10}), false},
		{"diagonal between corners", line(geom.Coord{0, 0}, geom.Coord{10, 10}), true},
		{"line leaving box", line(geom.Coord{5, 5}, geom.Coord{15, 5}), false},
		{"multipolygon partly outside", geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
			{{{1, 1}, {2, 1}, {2, 2}, {1, 1}}},
			{{{11, 1}, {12, 1}, {12, 2}, {11, 1}}},
		}), false},
		{"multipolygon inside", geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
			{{{1, 1}, {2, 1}, {2, 2}, {1, 1}}},
			{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
		}), true},
		{"empty collection", geom.NewGeometryCollection(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testBox.Within(tt.g))
		})
	}
}

func TestBBoxWithin_GeometryCollection(t *testing.T) {
	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(point(5, 5), line(geom.Coord{0, 0}, geom.Coord{0, 10})))
	assert.True(t, testBox.Within(gc))

	edgeOnly := geom.NewGeometryCollection()
	require.NoError(t, edgeOnly.Push(point(0, 5), line(geom.Coord{0, 0}, geom.Coord{0, 10})))
	assert.False(t, testBox.Within(edgeOnly))

	escaping := geom.NewGeometryCollection()
	require.NoError(t, escaping.Push(point(5, 5), point(50, 5)))
	assert.False(t, testBox.Within(escaping))
}

func TestBBoxPolygon(t *testing.T) {
	p := DefaultBBox.Polygon()
	ring := p.LinearRing(0)
	require.Equal(t, 5, ring.NumCoords())
	assert.Equal(t, ring.Coord(0), ring.Coord(4))

	b := p.Bounds()
	assert.Equal(t, DefaultBBox.MinX, b.Min(0))
	assert.Equal(t, DefaultBBox.MinY, b.Min(1))
	assert.Equal(t, DefaultBBox.MaxX, b.Max(0))
	assert.Equal(t, DefaultBBox.MaxY, b.Max(1))
}

func TestBBoxFromPolygon(t *testing.T) {
	box, err := BBoxFromPolygon(DefaultBBox.Polygon())
	require.NoError(t, err)
	assert.Equal(t, DefaultBBox, box)

	_, err = BBoxFromPolygon(poly(geom.Coord{0, 0}, geom.Coord{10, 0}, geom.Coord{5, 10}, geom.Coord{0, 0}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a rectangle corner")

	_, err = BBoxFromPolygon(nil)
	assert.Error(t, err)
}

func TestBBoxValidate(t *testing.T) {
	assert.NoError(t, DefaultBBox.Validate())
	assert.Error(t, BBox{MinX: 1, MinY: 0, MaxX: 1, MaxY: 5}.Validate())
	assert.Error(t, BBox{MinX: 0, MinY: 5, MaxX: 1, MaxY: 0}.Validate())
}
