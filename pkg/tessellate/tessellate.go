// Package tessellate turns a polygon-with-holes into a triangle mesh
// using github.com/mmp/earcut-go, respecting the input's outer and hole
// boundaries and threading through the "extra nodes" the caller wants
// to show up as triangle vertices without otherwise perturbing the
// triangulation -- terrain-seam nodes that must land exactly on the
// airport mesh so neighboring terrain tiles don't crack apart.
package tessellate

import (
	"github.com/mmp/earcut-go"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

// Result is a shared vertex array plus the triangles (as index
// triples) that reference it.
type Result struct {
	Vertices []geo.Point
	Tris     []polygon.Triangle
}

// Tessellate triangulates p, producing a constrained triangulation that
// respects every contour's edges. extraNodes are Steiner points: they
// must appear as triangle vertices but must not otherwise change the
// boundary. earcut-go (like most polygon ear-clipping triangulators)
// has no native notion of an interior Steiner point, so each extra node
// is "pinched" into its nearest ring as a zero-width slit -- the
// standard technique constrained triangulators use to fold a hole (or
// here, a single point) into the outer boundary before triangulating.
func Tessellate(p polygon.Polygon, extraNodes []geo.Point) Result {
	nt := polygon.NewNodeTable()

	rings := buildRings(p, extraNodes)

	everVertices := make([]earcut.Vertex, 0)
	for _, ring := range rings {
		for _, pt := range ring {
			everVertices = append(everVertices, earcut.Vertex{P: [2]float64{pt.Lon, pt.Lat}})
		}
	}
	for _, v := range everVertices {
		nt.Insert(geo.Point{Lon: v.P[0], Lat: v.P[1]})
	}

	earcutRings := make([][]earcut.Vertex, len(rings))
	for i, ring := range rings {
		verts := make([]earcut.Vertex, len(ring))
		for j, pt := range ring {
			verts[j] = earcut.Vertex{P: [2]float64{pt.Lon, pt.Lat}}
		}
		earcutRings[i] = verts
	}

	tris := earcut.Triangulate(earcut.Polygon{Rings: earcutRings})

	out := Result{Tris: make([]polygon.Triangle, 0, len(tris))}
	for _, tri := range tris {
		var idx polygon.Triangle
		for k, v := range tri.Vertices {
			p := geo.Point{Lon: v.P[0], Lat: v.P[1]}
			idx[k] = nt.Insert(p)
		}
		out.Tris = append(out.Tris, idx)
	}
	out.Vertices = nt.Points()
	return out
}

// buildRings lays out the outer contour and each hole contour as
// separate earcut rings (the library's native way of expressing holes)
// and pinches every extra node into whichever ring's boundary it is
// closest to.
func buildRings(p polygon.Polygon, extraNodes []geo.Point) [][]geo.Point {
	var rings [][]geo.Point
	outer := p.Outer().Canonicalize()
	rings = append(rings, append([]geo.Point(nil), outer.Points...))
	for _, h := range p.Holes() {
		c := h.Canonicalize()
		rings = append(rings, append([]geo.Point(nil), c.Points...))
	}

	for _, node := range extraNodes {
		ri, vi := nearestRingVertex(rings, node)
		rings[ri] = pinch(rings[ri], vi, node)
	}
	return rings
}

// nearestRingVertex returns the ring index and vertex index of the ring
// point closest to p.
func nearestRingVertex(rings [][]geo.Point, p geo.Point) (int, int) {
	bestRing, bestIdx := 0, 0
	bestDist := -1.0
	for ri, ring := range rings {
		for vi, v := range ring {
			d := (v.Lon-p.Lon)*(v.Lon-p.Lon) + (v.Lat-p.Lat)*(v.Lat-p.Lat)
			if bestDist < 0 || d < bestDist {
				bestDist, bestRing, bestIdx = d, ri, vi
			}
		}
	}
	return bestRing, bestIdx
}

// pinch inserts node as a zero-width slit attached to ring[at]: ...,
// ring[at], node, ring[at], ... -- walking out to the node and back
// makes it a boundary vertex of the same polygon without changing the
// enclosed area.
func pinch(ring []geo.Point, at int, node geo.Point) []geo.Point {
	out := make([]geo.Point, 0, len(ring)+2)
	out = append(out, ring[:at+1]...)
	out = append(out, node, ring[at])
	out = append(out, ring[at+1:]...)
	return out
}
