package surface

import (
	"math"
	"testing"

	"github.com/terragear-go/genapts/pkg/dem"
	"github.com/terragear-go/genapts/pkg/geo"
)

func TestNewRequiresSources(t *testing.T) {
	_, err := New(nil, geo.Rect{MinLon: 0, MaxLon: 1, MinLat: 0, MaxLat: 1}, 0.2, nil)
	if err == nil {
		t.Fatal("expected an error when no DEM sources are supplied")
	}
}

func TestQueryClampsOutsideBounds(t *testing.T) {
	// No real source will resolve (no file on disk); construction should
	// still succeed, holding flat elevation, and Query must never error.
	src := dem.Source{Path: "/nonexistent/does-not-exist.tif", Bounds: geo.Rect{MinLon: 50, MaxLon: 60, MinLat: 50, MaxLat: 60}, Priority: 0}
	s, err := New([]dem.Source{src}, geo.Rect{MinLon: 0, MaxLon: 1, MinLat: 0, MaxLat: 1}, 0.2, nil)
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}
	_, err = s.Query(-50, -50)
	if err != nil {
		t.Errorf("expected Query to never error, got %v", err)
	}
}

func TestSlopeOKBoundary(t *testing.T) {
	s := &AptSurface{}
	s.samples[0][0] = 0
	if !s.slopeOK(0.1, 0, 1, 1.0, 1.0, 0.2) {
		t.Error("expected a small gradient to pass the slope check")
	}
	if s.slopeOK(10, 0, 1, 1.0, 1.0, 0.2) {
		t.Error("expected a steep gradient to fail the slope check")
	}
}

func TestAbsAndClampHelpers(t *testing.T) {
	if abs(-5) != 5 {
		t.Error("abs(-5) should be 5")
	}
	if math.Abs(clamp(10, 0, 5)-5) > 1e-9 {
		t.Error("clamp should cap at the upper bound")
	}
}
