// Package topology repairs the polygon topology issues that boolean
// operations and the original apt850 input data both introduce: stray
// duplicate vertices, degenerate spikes, contours too small to matter,
// edges too long to triangulate cleanly, and the T-junctions left
// behind whenever a clip slices through an edge that another polygon's
// vertex already sits on. Every operation here is pure: polygon (or
// contour) in, polygon (or contour) out.
package topology

import (
	"math"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

// SnapGridDeg is the default quantization grid for Snap.
const SnapGridDeg = 1e-7

// SGEpsilon is the small-number epsilon carried over from the original
// pipeline's SG_EPSILON constant, used as the basis for the tiny-contour
// area threshold.
const SGEpsilon = 1e-7

// TinyContourAreaEps is the area threshold (SGEpsilon squared, in
// square degrees) below which a contour's absolute signed area gets it
// dropped outright.
const TinyContourAreaEps = SGEpsilon * SGEpsilon

// Snap quantizes every point of every contour in p to the given grid
// (degrees), forcing numerically-close points produced by independent
// geodesic computations to coincide exactly.
func Snap(p polygon.Polygon, grid float64) polygon.Polygon {
	out := p
	out.Contours = make([]polygon.Contour, len(p.Contours))
	for i, c := range p.Contours {
		pts := make([]geo.Point, len(c.Points))
		for j, pt := range c.Points {
			pts[j] = geo.Point{
				Lon:  math.Round(pt.Lon/grid) * grid,
				Lat:  math.Round(pt.Lat/grid) * grid,
				Elev: pt.Elev,
			}
		}
		out.Contours[i] = polygon.Contour{Points: pts, Hole: c.Hole}
	}
	return out
}

// RemoveDups deletes adjacent duplicate vertices from a contour
// (including the wraparound pair last/first), keeping whichever
// occurrence has the higher elevation.
func RemoveDups(c polygon.Contour) polygon.Contour {
	pts := c.Points
	if len(pts) == 0 {
		return c
	}
	out := make([]geo.Point, 0, len(pts))
	for i := 0; i < len(pts); i++ {
		cur := pts[i]
		if len(out) > 0 && out[len(out)-1].Equal2D(cur) {
			if cur.Elev > out[len(out)-1].Elev {
				out[len(out)-1] = cur
			}
			continue
		}
		out = append(out, cur)
	}
	// wraparound: first/last duplicate.
	for len(out) > 1 && out[0].Equal2D(out[len(out)-1]) {
		if out[len(out)-1].Elev > out[0].Elev {
			out[0] = out[len(out)-1]
		}
		out = out[:len(out)-1]
	}
	return polygon.Contour{Points: out, Hole: c.Hole}
}

// RemoveCycles iterates to a fixed point deleting short enclosed loops:
// indices i<j such that points[i]==points[j] and either (j-i)<=3 (the
// points strictly between them are removed, along with the duplicate at
// j) or (n-j+i)<=3 (the loop wraps the short way around the contour, so
// the points after j and before i are removed, along with the duplicate
// at j).
func RemoveCycles(c polygon.Contour) polygon.Contour {
	pts := append([]geo.Point(nil), c.Points...)
	for {
		n := len(pts)
		changed := false
		for i := 0; i < n && !changed; i++ {
			for j := i + 1; j < n; j++ {
				if !pts[i].Equal2D(pts[j]) {
					continue
				}
				fwd := j - i
				back := n - fwd
				if fwd <= 3 {
					next := append([]geo.Point(nil), pts[:i+1]...)
					next = append(next, pts[j+1:]...)
					pts = next
					changed = true
					break
				}
				if back <= 3 {
					pts = append([]geo.Point(nil), pts[i:j]...)
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	return polygon.Contour{Points: pts, Hole: c.Hole}
}

// RemoveSpikes iterates to a fixed point deleting any vertex v whose
// triangle (prev, v, next) has an interior angle within 0.1 degrees of
// 0 or 180 -- a vertex that doubles back on itself or continues
// perfectly straight contributes nothing but numerical trouble to
// tessellation.
func RemoveSpikes(c polygon.Contour) polygon.Contour {
	const tol = 0.1
	pts := append([]geo.Point(nil), c.Points...)
	for {
		n := len(pts)
		if n < 4 {
			break
		}
		changed := false
		for i := 0; i < n; i++ {
			prev := pts[(i-1+n)%n]
			cur := pts[i]
			next := pts[(i+1)%n]
			angle := geo.InteriorAngleDeg(prev, cur, next)
			if angle <= tol || angle >= 180-tol {
				pts = append(append([]geo.Point(nil), pts[:i]...), pts[i+1:]...)
				changed = true
				break
			}
		}
		if !changed {
			break
		}
	}
	return polygon.Contour{Points: pts, Hole: c.Hole}
}

// RemoveTinyContours drops every contour of p whose signed area is
// below TinyContourAreaEps.
func RemoveTinyContours(p polygon.Polygon) polygon.Polygon {
	out := p
	out.Contours = nil
	for _, c := range p.Contours {
		if math.Abs(c.Area()) < TinyContourAreaEps {
			continue
		}
		out.Contours = append(out.Contours, c)
	}
	return out
}

// SplitLongEdges inserts equally-spaced intermediate nodes into every
// edge of c whose geodesic length exceeds maxM meters, skipping edges
// that touch the geographic poles (where a geodesic azimuth is
// undefined).
func SplitLongEdges(c polygon.Contour, maxM float64) polygon.Contour {
	pts := c.Points
	n := len(pts)
	if n < 2 {
		return c
	}
	var out []geo.Point
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		out = append(out, a)
		if math.Abs(a.Lat) >= 90-1e-9 || math.Abs(b.Lat) >= 90-1e-9 {
			continue
		}
		dist := geo.DistanceM(a, b)
		if dist <= maxM {
			continue
		}
		segments := int(math.Ceil(dist / maxM))
		hdg := geo.Course(a, b)
		step := dist / float64(segments)
		for s := 1; s < segments; s++ {
			p := geo.Offset(a, hdg, step*float64(s))
			p.Elev = a.Elev + (b.Elev-a.Elev)*float64(s)/float64(segments)
			out = append(out, p)
		}
	}
	return polygon.Contour{Points: out, Hole: c.Hole}
}

// colinearBBoxEpsDeg is the bounding-box slack used by AddColinearNodes
// before the more precise perpendicular-distance test runs.
const colinearBBoxEpsDeg = 10 * geo.EqEpsilonDeg

// colinearPerpEpsDeg is the "4*epsilon" perpendicular-distance
// tolerance used when testing whether a foreign node lies on an edge.
const colinearPerpEpsDeg = 4 * geo.EqEpsilonDeg

// AddColinearNodes walks every edge of c and recursively searches
// extraNodes for a point lying within the edge's bounding-box epsilon
// and within 4*epsilon of the edge's line equation; any match is
// inserted into the edge and the search recurses on both halves. This
// is how a T-junction left behind by a boolean op (a foreign polygon's
// vertex sitting in the interior of one of our edges) gets turned into
// a real shared vertex before tessellation.
func AddColinearNodes(c polygon.Contour, extraNodes []geo.Point) polygon.Contour {
	pts := c.Points
	n := len(pts)
	if n < 2 {
		return c
	}
	var out []geo.Point
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		out = append(out, a)
		out = append(out, insertColinear(a, b, extraNodes)...)
	}
	return polygon.Contour{Points: out, Hole: c.Hole}
}

// insertColinear returns the points (in order) that belong strictly
// between a and b after inserting any extraNodes point that lies on
// segment (a,b).
func insertColinear(a, b geo.Point, extraNodes []geo.Point) []geo.Point {
	minLon, maxLon := math.Min(a.Lon, b.Lon), math.Max(a.Lon, b.Lon)
	minLat, maxLat := math.Min(a.Lat, b.Lat), math.Max(a.Lat, b.Lat)

	for _, p := range extraNodes {
		if p.Equal2D(a) || p.Equal2D(b) {
			continue
		}
		if p.Lon < minLon-colinearBBoxEpsDeg || p.Lon > maxLon+colinearBBoxEpsDeg {
			continue
		}
		if p.Lat < minLat-colinearBBoxEpsDeg || p.Lat > maxLat+colinearBBoxEpsDeg {
			continue
		}
		if geo.PerpDistance(p, a, b) > colinearPerpEpsDeg {
			continue
		}
		left := insertColinear(a, p, extraNodes)
		right := insertColinear(p, b, extraNodes)
		result := append([]geo.Point{}, left...)
		result = append(result, p)
		result = append(result, right...)
		return result
	}
	return nil
}

// minInteriorAngle returns the smallest interior angle, in degrees,
// over every vertex of the contour.
func minInteriorAngle(c polygon.Contour) float64 {
	pts := c.Points
	n := len(pts)
	if n < 3 {
		return 0
	}
	min := math.Inf(1)
	for i := 0; i < n; i++ {
		prev := pts[(i-1+n)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		a := geo.InteriorAngleDeg(prev, cur, next)
		if a < min {
			min = a
		}
	}
	return min
}

// RemoveSlivers drops contours whose minimum interior angle is below
// 10 degrees and whose area is below 1e-9 square degrees, or whose area
// is below 1e-10 square degrees regardless of angle. Removed non-hole
// contours are returned separately as sliver candidates for
// MergeSlivers to try to reabsorb.
func RemoveSlivers(p polygon.Polygon) (cleaned polygon.Polygon, slivers []polygon.Contour) {
	cleaned = p
	cleaned.Contours = nil
	for _, c := range p.Contours {
		area := math.Abs(c.Area())
		isSliver := area < 1e-10 || (minInteriorAngle(c) < 10 && area < 1e-9)
		if !isSliver {
			cleaned.Contours = append(cleaned.Contours, c)
			continue
		}
		if !c.Hole {
			slivers = append(slivers, c)
		}
	}
	return cleaned, slivers
}

// Unioner is the single operation MergeSlivers needs from pkg/clip; it
// is passed in rather than imported directly so pkg/topology has no
// dependency on the clipping library.
type Unioner func(a, b polygon.Polygon) polygon.Polygon

// MergeSlivers attempts, for each sliver contour in order, to union it
// into each polygon in polys (in order), accepting the union only if
// the result's contour count matches what it would be if the sliver
// were absorbed rather than left as a disjoint second piece. Slivers
// that no polygon absorbs are dropped.
func MergeSlivers(polys []polygon.Polygon, slivers []polygon.Contour, union Unioner) []polygon.Polygon {
	out := append([]polygon.Polygon(nil), polys...)
	for _, sliver := range slivers {
		sliverPoly := polygon.Polygon{Contours: []polygon.Contour{sliver}}
		for i, target := range out {
			before := len(target.Contours)
			merged := union(target, sliverPoly)
			if len(merged.Contours) <= before {
				merged.Material = target.Material
				merged.Texture = target.Texture
				merged.Preserve3D = target.Preserve3D
				merged.ID = target.ID
				out[i] = merged
				break
			}
		}
	}
	return out
}
