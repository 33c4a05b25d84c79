package polygon

import (
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
)

func TestContourCanonicalize(t *testing.T) {
	cw := Contour{Points: []geo.Point{{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0}}}
	if cw.CCW() {
		t.Fatal("expected test fixture to be CW")
	}
	outer := cw.Canonicalize()
	if !outer.CCW() {
		t.Error("outer contour should canonicalize to CCW")
	}

	hole := Contour{Hole: true, Points: []geo.Point{{Lon: 0.2, Lat: 0.2}, {Lon: 0.8, Lat: 0.2}, {Lon: 0.8, Lat: 0.8}, {Lon: 0.2, Lat: 0.8}}}
	if !hole.CCW() {
		t.Fatal("expected test fixture to be CCW")
	}
	h := hole.Canonicalize()
	if h.CCW() {
		t.Error("hole contour should canonicalize to CW")
	}
}

func TestPolygonOuterAndHoles(t *testing.T) {
	outer := Contour{Points: []geo.Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}}}
	hole := Contour{Hole: true, Points: []geo.Point{{Lon: 0.4, Lat: 0.4}, {Lon: 0.4, Lat: 0.6}, {Lon: 0.6, Lat: 0.6}}}
	p := Polygon{Contours: []Contour{outer, hole}}

	if len(p.Outer().Points) != 4 {
		t.Errorf("expected outer contour with 4 points, got %d", len(p.Outer().Points))
	}
	if len(p.Holes()) != 1 {
		t.Errorf("expected 1 hole, got %d", len(p.Holes()))
	}
	if p.Empty() {
		t.Error("polygon with a valid outer contour should not report Empty")
	}
}

func TestSuperpolyValid(t *testing.T) {
	outer := Contour{Points: []geo.Point{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}}}
	poly := Polygon{Contours: []Contour{outer}}

	good := Superpoly{Poly: poly, Normals: &Contour{Points: make([]geo.Point, 3)}}
	if !good.Valid() {
		t.Error("expected matching normals length to be valid")
	}

	bad := Superpoly{Poly: poly, Normals: &Contour{Points: make([]geo.Point, 2)}}
	if bad.Valid() {
		t.Error("expected mismatched normals length to be invalid")
	}
}

func TestBucketRoundTrip(t *testing.T) {
	cases := []struct{ lon, lat float64 }{
		{-74.0, 40.6},
		{151.2, -33.9},
		{0.01, 0.01},
		{-179.99, -89.9},
		{179.99, 89.9},
	}
	for _, c := range cases {
		b := NewBucket(c.lon, c.lat)
		id := b.ID()
		got := BucketFromID(id)
		if got != b {
			t.Errorf("bucket round trip for (%g,%g): got %+v, want %+v", c.lon, c.lat, got, b)
		}
	}
}

func TestBucketPathFormat(t *testing.T) {
	b := NewBucket(-74.0, 40.6)
	p := b.Path()
	if p == "" {
		t.Fatal("expected non-empty path")
	}
	// same tile name used for both directory and leaf.
	half := len(p) / 2
	if p[:half] != p[half+1:] {
		t.Errorf("expected path to repeat the tile name, got %q", p)
	}
}

func TestCellsCoveringFindsContainingCell(t *testing.T) {
	want := NewBucket(-74.0, 40.6)
	bbox := geo.Rect{MinLon: -74.1, MaxLon: -73.9, MinLat: 40.5, MaxLat: 40.7}
	cells := CellsCovering(bbox)

	var found bool
	for _, c := range cells {
		if c.LonIndex == want.LonIndex && c.LatIndex == want.LatIndex {
			found = true
		}
	}
	if !found {
		t.Errorf("expected CellsCovering(%+v) to include the cell containing (-74.0,40.6), got %+v", bbox, cells)
	}
}

func TestCellsCoveringSpansMultipleCells(t *testing.T) {
	bbox := geo.Rect{MinLon: -1, MaxLon: 1, MinLat: -1, MaxLat: 1}
	cells := CellsCovering(bbox)
	if len(cells) < 4 {
		t.Errorf("expected a 2x2-degree box straddling the origin to cover at least 4 cells, got %d", len(cells))
	}
}

func TestNodeTableDedup(t *testing.T) {
	nt := NewNodeTable()
	a := geo.Point{Lon: 10, Lat: 20}
	b := geo.Point{Lon: 10 + 1e-8, Lat: 20 - 1e-8} // within epsilon
	c := geo.Point{Lon: 10.01, Lat: 20.01}         // outside epsilon

	i1 := nt.Insert(a)
	i2 := nt.Insert(b)
	i3 := nt.Insert(c)

	if i1 != i2 {
		t.Errorf("expected near-duplicate points to share an index, got %d and %d", i1, i2)
	}
	if i3 == i1 {
		t.Error("expected distinct point to get a new index")
	}
	if nt.Len() != 2 {
		t.Errorf("expected 2 distinct points, got %d", nt.Len())
	}
}
