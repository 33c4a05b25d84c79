package clip

import (
	"math"
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

func square(minLon, minLat, maxLon, maxLat float64) polygon.Polygon {
	return polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{
		{Lon: minLon, Lat: minLat},
		{Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat},
		{Lon: minLon, Lat: maxLat},
	}}}}
}

func TestLatticeRoundTrip(t *testing.T) {
	p := geo.Point{Lon: -74.00123456, Lat: 40.77654321}
	got := FromLattice(ToLattice(p))
	if math.Abs(got.Lon-p.Lon) > 1e-9 || math.Abs(got.Lat-p.Lat) > 1e-9 {
		t.Errorf("lattice round trip: got %+v, want %+v", got, p)
	}
}

func TestUnionOfOverlappingSquares(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(0.5, 0.5, 1.5, 1.5)
	u := Union(a, b)
	if u.Empty() {
		t.Fatal("expected non-empty union")
	}
	// Union area must exceed either input square's area.
	if math.Abs(u.Outer().Area()) <= 1.0 {
		t.Errorf("expected union area > either input (1.0 deg^2 each), got %g", u.Outer().Area())
	}
}

func TestDifferenceRemovesOverlap(t *testing.T) {
	a := square(0, 0, 2, 2)
	b := square(0, 0, 1, 1)
	d := Difference(a, b)
	if d.Empty() {
		t.Fatal("expected non-empty difference")
	}
	for _, c := range d.Contours {
		for _, p := range c.Points {
			if p.Lon < 1-1e-6 && p.Lat < 1-1e-6 && p.Lon > 0+1e-6 && p.Lat > 0+1e-6 {
				t.Errorf("difference result still contains subtracted region at %+v", p)
			}
		}
	}
}

func TestIntersectionOfDisjointSquares(t *testing.T) {
	a := square(0, 0, 1, 1)
	b := square(10, 10, 11, 11)
	i := Intersection(a, b)
	if !i.Empty() {
		t.Error("expected empty intersection for disjoint squares")
	}
}

func TestExpandSingleContour(t *testing.T) {
	c := square(0, 0, 1, 1).Outer()
	grown, err := Expand(c, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(grown.Area()) <= math.Abs(c.Area()) {
		t.Errorf("expected expanded contour to have larger area, got %g vs %g", grown.Area(), c.Area())
	}
}
