package lighting

import (
	"math"
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/runway"
)

func testRunway() runway.Record {
	return runway.Record{
		End1:   geo.Point{Lon: 0, Lat: -0.01124}, // ~1250m south; ~2500m runway
		End2:   geo.Point{Lon: 0, Lat: 0.01124},
		WidthM: 45,
	}
}

func TestALSFIIPatternCounts(t *testing.T) {
	threshold := geo.Point{Lon: 0, Lat: 0}
	groups := ALSFII(threshold, 0)

	var centerBar, terminating, crossbar, rail []Group
	sideRows := 0
	for _, g := range groups {
		switch g.Name {
		case "center_bar":
			centerBar = append(centerBar, g)
		case "terminating_bar":
			terminating = append(terminating, g)
		case "side_row":
			sideRows++
		case "crossbar_300":
			crossbar = append(crossbar, g)
		case "rail":
			rail = append(rail, g)
		}
	}

	if len(centerBar) != 1 || len(centerBar[0].Pts.Poly.Outer().Points) != 90 {
		t.Errorf("expected a 90-point (30 units x 3) center bar, got %d groups", len(centerBar))
	}
	if sideRows != 9 {
		t.Errorf("expected 9 side rows, got %d", sideRows)
	}
	if len(crossbar) != 1 || len(crossbar[0].Pts.Poly.Outer().Points) != 16 {
		t.Error("expected a single 16-light crossbar")
	}
	if len(rail) != 1 || len(rail[0].Pts.Poly.Outer().Points) != 21 {
		t.Error("expected a single 21-light RAIL sequence")
	}
	_ = terminating
}

func TestGenerateZeroLightsWhenNoneRequested(t *testing.T) {
	r := testRunway()
	groups := Generate(r)
	if len(groups) != 0 {
		t.Errorf("expected zero light groups for a runway with no lighting flags, got %d", len(groups))
	}
}

func TestGenerateEdgeAndCenterline(t *testing.T) {
	r := testRunway()
	r.EdgeLights = 2
	r.CenterlineLights = true
	groups := Generate(r)

	var foundEdge, foundCenter bool
	for _, g := range groups {
		if g.Name == "edge" {
			foundEdge = true
		}
		if g.Name == "centerline" {
			foundCenter = true
		}
	}
	if !foundEdge {
		t.Error("expected edge light group")
	}
	if !foundCenter {
		t.Error("expected centerline light group")
	}
}

func TestSuperpolyNormalsMatchPositions(t *testing.T) {
	r := testRunway()
	r.EdgeLights = 1
	g := EdgeLights(r, 1)
	if !g.Pts.Valid() {
		t.Error("expected edge light superpoly normals to match position count")
	}
}

func TestDirectionVectorIsUnit(t *testing.T) {
	a := geo.Point{Lon: 0, Lat: -0.01}
	b := geo.Point{Lon: 0, Lat: 0.01}
	v := DirectionVector(a, b, 3)
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if math.Abs(n-1) > 1e-6 {
		t.Errorf("expected unit direction vector, got norm %g", n)
	}
}

func TestREILProducesTwoLights(t *testing.T) {
	g := REIL(geo.Point{Lon: 0, Lat: 0}, 0, 45)
	if len(g.Pts.Poly.Outer().Points) != 2 {
		t.Errorf("expected 2 REIL lights, got %d", len(g.Pts.Poly.Outer().Points))
	}
}
