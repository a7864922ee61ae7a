package footprint

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// BBox is an axis-aligned longitude/latitude rectangle.
type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// DefaultBBox covers Greater London and the surrounding commuter belt.
var DefaultBBox = BBox{
	MinX: -0.7187188675248422,
	MinY: 51.21821068456208,
	MaxX: 0.49550970655477045,
	MaxY: 51.75861859813807,
}

// BBoxFromPolygon derives the box from a rectangular polygon. Polygons whose
// exterior ring is not an axis-aligned rectangle are rejected.
func BBoxFromPolygon(p *geom.Polygon) (BBox, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return BBox{}, eris.New("footprint: empty bounding polygon")
	}
	b := p.Bounds()
	box := BBox{MinX: b.Min(0), MinY: b.Min(1), MaxX: b.Max(0), MaxY: b.Max(1)}
	if err := box.Validate(); err != nil {
		return BBox{}, err
	}

	ring := p.LinearRing(0)
	stride := ring.Stride()
	flat := ring.FlatCoords()
	for i := 0; i < len(flat); i += stride {
		x, y := flat[i], flat[i+1]
		if (x != box.MinX && x != box.MaxX) || (y != box.MinY && y != box.MaxY) {
			return BBox{}, eris.Errorf("footprint: vertex (%f, %f) is not a rectangle corner", x, y)
		}
	}
	return box, nil
}

// Validate reports whether the box has positive area.
func (b BBox) Validate() error {
	if !(b.MinX < b.MaxX) || !(b.MinY < b.MaxY) {
		return eris.Errorf("footprint: degenerate bounding box (%f, %f, %f, %f)", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
	return nil
}

// Polygon returns the closed counter-clockwise ring of the box.
func (b BBox) Polygon() *geom.Polygon {
	return geom.NewPolygonFlat(geom.XY, []float64{
		b.MinX, b.MaxY,
		b.MinX, b.MinY,
		b.MaxX, b.MinY,
		b.MaxX, b.MaxY,
		b.MinX, b.MaxY,
	}, []int{10})
}

// Within reports whether g lies within the box: no point of g is outside
// the box and at least one point of g is in its interior.
func (b BBox) Within(g geom.T) bool {
	if g == nil {
		return false
	}

	if gc, ok := g.(*geom.GeometryCollection); ok {
		if gc.Empty() {
			return false
		}
		inside := false
		for _, member := range gc.Geoms() {
			if !b.coversBounds(member.Bounds()) {
				return false
			}
			if b.Within(member) {
				inside = true
			}
		}
		return inside
	}

	if !b.coversBounds(g.Bounds()) {
		return false
	}

	// Anything with area that fits in the closed box reaches its interior.
	switch g := g.(type) {
	case *geom.Polygon:
		if g.Area() > 0 {
			return true
		}
	case *geom.MultiPolygon:
		if g.Area() > 0 {
			return true
		}
	}
	return b.touchesInterior(g)
}

func (b BBox) coversBounds(gb *geom.Bounds) bool {
	if gb == nil || gb.IsEmpty() {
		return false
	}
	return gb.Min(0) >= b.MinX && gb.Max(0) <= b.MaxX &&
		gb.Min(1) >= b.MinY && gb.Max(1) <= b.MaxY
}

func (b BBox) interior(x, y float64) bool {
	return x > b.MinX && x < b.MaxX && y > b.MinY && y < b.MaxY
}

// touchesInterior checks vertices and segment midpoints of a geometry already
// known to sit inside the closed box. A segment between two boundary points
// only stays on the boundary when both points share an edge, in which case
// its midpoint does too.
func (b BBox) touchesInterior(g geom.T) bool {
	flat := g.FlatCoords()
	stride := g.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		if b.interior(flat[i], flat[i+1]) {
			return true
		}
	}

	for _, part := range parts(g) {
		for i := part[0]; i+stride+1 < part[1]; i += stride {
			mx := (flat[i] + flat[i+stride]) / 2
			my := (flat[i+1] + flat[i+stride+1]) / 2
			if b.interior(mx, my) {
				return true
			}
		}
	}
	return false
}

// parts returns [start, end) offsets into FlatCoords for each connected
// sequence of vertices. Point geometries have no segments.
func parts(g geom.T) [][2]int {
	var ends []int
	switch g := g.(type) {
	case *geom.Point, *geom.MultiPoint:
		return nil
	case *geom.LineString, *geom.LinearRing:
		ends = []int{len(g.FlatCoords())}
	case *geom.MultiPolygon:
		for _, e := range g.Endss() {
			ends = append(ends, e...)
		}
	default:
		ends = g.Ends()
	}

	out := make([][2]int, 0, len(ends))
	start := 0
	for _, end := range ends {
		out = append(out, [2]int{start, end})
		start = end
	}
	return out
}
