package topology

import (
	"math"
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

func pt(lon, lat float64) geo.Point { return geo.Point{Lon: lon, Lat: lat} }

func TestSnapQuantizes(t *testing.T) {
	p := polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{
		pt(1.000000049, 2.000000049),
		pt(1.00000004, 2.00000004),
	}}}}
	snapped := Snap(p, SnapGridDeg)
	if snapped.Contours[0].Points[0].Lon != snapped.Contours[0].Points[1].Lon {
		t.Error("expected snap to force numerically-close longitudes to coincide")
	}
}

func TestRemoveDupsKeepsHigherElevation(t *testing.T) {
	c := polygon.Contour{Points: []geo.Point{
		{Lon: 0, Lat: 0, Elev: 5},
		{Lon: 0, Lat: 0, Elev: 10},
		{Lon: 1, Lat: 0, Elev: 0},
		{Lon: 1, Lat: 1, Elev: 0},
	}}
	out := RemoveDups(c)
	if len(out.Points) != 3 {
		t.Fatalf("expected 3 points after dedup, got %d", len(out.Points))
	}
	if out.Points[0].Elev != 10 {
		t.Errorf("expected deduped point to keep higher elevation, got %g", out.Points[0].Elev)
	}
}

func TestRemoveCyclesDeletesShortLoop(t *testing.T) {
	// A short spur: 0,1,2,1,3 -- the "1...1" loop (j-i=2) should collapse.
	c := polygon.Contour{Points: []geo.Point{
		pt(0, 0), pt(1, 0), pt(2, 0), pt(1, 0), pt(3, 0),
	}}
	out := RemoveCycles(c)
	for i, p := range out.Points {
		for j := i + 1; j < len(out.Points); j++ {
			if p.Equal2D(out.Points[j]) {
				t.Errorf("expected no duplicate points after RemoveCycles, found at %d,%d", i, j)
			}
		}
	}
}

func TestRemoveSpikesDeletesNearStraightVertex(t *testing.T) {
	c := polygon.Contour{Points: []geo.Point{
		pt(0, 0), pt(1, 0), pt(2, 0), pt(2, 1), pt(0, 1),
	}}
	out := RemoveSpikes(c)
	for _, p := range out.Points {
		if p.Equal2D(pt(1, 0)) {
			t.Error("expected colinear spike vertex to be removed")
		}
	}
}

func TestRemoveTinyContoursDropsSmallArea(t *testing.T) {
	big := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}
	tiny := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(1e-8, 0), pt(1e-8, 1e-8)}}
	p := polygon.Polygon{Contours: []polygon.Contour{big, tiny}}
	out := RemoveTinyContours(p)
	if len(out.Contours) != 1 {
		t.Fatalf("expected tiny contour dropped, got %d contours", len(out.Contours))
	}
}

func TestSplitLongEdgesInsertsNodes(t *testing.T) {
	c := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}
	out := SplitLongEdges(c, 10000) // 10km max; edges here are ~100km+
	if len(out.Points) <= len(c.Points) {
		t.Error("expected extra nodes inserted for long edges")
	}
}

func TestAddColinearNodesInsertsTJunction(t *testing.T) {
	c := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(2, 0), pt(2, 2), pt(0, 2)}}
	extra := []geo.Point{pt(1, 0)} // sits on the bottom edge
	out := AddColinearNodes(c, extra)
	found := false
	for _, p := range out.Points {
		if p.Equal2D(pt(1, 0)) {
			found = true
		}
	}
	if !found {
		t.Error("expected T-junction point to be inserted into the edge")
	}
}

func TestRemoveSliversSeparatesThinContour(t *testing.T) {
	normal := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}
	sliver := polygon.Contour{Points: []geo.Point{pt(10, 10), pt(10.0001, 10), pt(10.00005, 10.0000001)}}
	p := polygon.Polygon{Contours: []polygon.Contour{normal, sliver}}
	cleaned, slivers := RemoveSlivers(p)
	if len(cleaned.Contours) != 1 {
		t.Errorf("expected 1 surviving contour, got %d", len(cleaned.Contours))
	}
	if len(slivers) != 1 {
		t.Errorf("expected 1 sliver candidate, got %d", len(slivers))
	}
}

func TestMergeSliversAbsorbsOrDrops(t *testing.T) {
	target := polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}}}
	sliver := polygon.Contour{Points: []geo.Point{pt(0.5, 0.5), pt(0.5001, 0.5), pt(0.50005, 0.50005)}}

	absorbAll := func(a, b polygon.Polygon) polygon.Polygon {
		return polygon.Polygon{Contours: a.Contours} // pretend it absorbed, same contour count
	}
	out := MergeSlivers([]polygon.Polygon{target}, []polygon.Contour{sliver}, absorbAll)
	if len(out) != 1 || len(out[0].Contours) != 1 {
		t.Error("expected sliver to be absorbed without growing contour count")
	}

	rejectAll := func(a, b polygon.Polygon) polygon.Polygon {
		c := append([]polygon.Contour(nil), a.Contours...)
		c = append(c, b.Contours...) // pretend it stayed a separate piece
		return polygon.Polygon{Contours: c}
	}
	out2 := MergeSlivers([]polygon.Polygon{target}, []polygon.Contour{sliver}, rejectAll)
	if len(out2[0].Contours) != 1 {
		t.Error("expected rejected sliver to leave target unchanged")
	}
}

func TestMinInteriorAngleHelper(t *testing.T) {
	square := polygon.Contour{Points: []geo.Point{pt(0, 0), pt(1, 0), pt(1, 1), pt(0, 1)}}
	got := minInteriorAngle(square)
	if math.Abs(got-90) > 1e-6 {
		t.Errorf("expected square's min interior angle to be 90, got %g", got)
	}
}
