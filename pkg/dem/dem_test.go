package dem

import (
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
)

func TestNewStackOrdersByPriority(t *testing.T) {
	s, err := NewStack([]Source{
		{Path: "b.tif", Priority: 2},
		{Path: "a.tif", Priority: 1},
		{Path: "c.tif", Priority: 3},
	}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.sources[0].Path != "a.tif" || s.sources[1].Path != "b.tif" || s.sources[2].Path != "c.tif" {
		t.Errorf("expected sources ordered by priority, got %+v", s.sources)
	}
}

func TestSampleAtSkipsNonCoveringSources(t *testing.T) {
	s, err := NewStack([]Source{
		{Path: "/nonexistent/a.tif", Bounds: geo.Rect{MinLon: 100, MaxLon: 101, MinLat: 10, MaxLat: 11}, Priority: 0},
	}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, ok, err := s.SampleAt(0, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no coverage for a point outside every source's bounds")
	}
}

func TestRasterBilinearSample(t *testing.T) {
	r := &raster{
		bounds: geo.Rect{MinLon: 0, MaxLon: 1, MinLat: 0, MaxLat: 1},
		width:  2, height: 2,
		data: []float32{0, 10, 20, 30}, // row-major, north row first
	}
	got := r.sample(0, 1) // northwest corner
	if got != 0 {
		t.Errorf("expected northwest corner elevation 0, got %g", got)
	}
}
