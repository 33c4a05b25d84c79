package tessellate

import (
	"testing"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

func TestTessellateSquareProducesTwoTriangles(t *testing.T) {
	p := polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{
		{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1},
	}}}}
	res := Tessellate(p, nil)
	if len(res.Tris) != 2 {
		t.Fatalf("expected 2 triangles for a square, got %d", len(res.Tris))
	}
	for _, tri := range res.Tris {
		for _, idx := range tri {
			if idx < 0 || idx >= len(res.Vertices) {
				t.Fatalf("triangle index %d out of range (have %d vertices)", idx, len(res.Vertices))
			}
		}
	}
}

func TestTessellateWithHole(t *testing.T) {
	outer := polygon.Contour{Points: []geo.Point{
		{Lon: 0, Lat: 0}, {Lon: 4, Lat: 0}, {Lon: 4, Lat: 4}, {Lon: 0, Lat: 4},
	}}
	hole := polygon.Contour{Hole: true, Points: []geo.Point{
		{Lon: 1, Lat: 1}, {Lon: 1, Lat: 2}, {Lon: 2, Lat: 2}, {Lon: 2, Lat: 1},
	}}
	p := polygon.Polygon{Contours: []polygon.Contour{outer, hole}}
	res := Tessellate(p, nil)
	if len(res.Tris) == 0 {
		t.Fatal("expected triangles for polygon with hole")
	}
}

func TestTessellateThreadsExtraNode(t *testing.T) {
	p := polygon.Polygon{Contours: []polygon.Contour{{Points: []geo.Point{
		{Lon: 0, Lat: 0}, {Lon: 4, Lat: 0}, {Lon: 4, Lat: 4}, {Lon: 0, Lat: 4},
	}}}}
	extra := []geo.Point{{Lon: 2, Lat: 2}}
	res := Tessellate(p, extra)

	found := false
	for _, v := range res.Vertices {
		if v.Equal2D(extra[0]) {
			found = true
		}
	}
	if !found {
		t.Error("expected extra node to appear in the output vertex array")
	}
}
