package geo

import "math"

// The routines in this file treat (Lon, Lat) as a flat 2D plane. That's
// the right model for the small, local operations they back -- T-junction
// detection, spike tests, ray/segment math for topology repair -- where
// the areas involved are small enough that ellipsoidal curvature doesn't
// matter, and where the rest of the pipeline (pkg/clip) already works in
// a planar integer lattice.

// SegmentIntersect returns the intersection point of segments (p1,p2)
// and (p3,p4), and whether one exists within both segments' extent.
func SegmentIntersect(p1, p2, p3, p4 Point) (Point, bool) {
	d := (p4.Lat-p3.Lat)*(p2.Lon-p1.Lon) - (p4.Lon-p3.Lon)*(p2.Lat-p1.Lat)
	if math.Abs(d) < 1e-20 {
		return Point{}, false
	}
	ua := ((p4.Lon-p3.Lon)*(p1.Lat-p3.Lat) - (p4.Lat-p3.Lat)*(p1.Lon-p3.Lon)) / d
	ub := ((p2.Lon-p1.Lon)*(p1.Lat-p3.Lat) - (p2.Lat-p1.Lat)*(p1.Lon-p3.Lon)) / d
	if ua < 0 || ua > 1 || ub < 0 || ub > 1 {
		return Point{}, false
	}
	return Point{Lon: p1.Lon + ua*(p2.Lon-p1.Lon), Lat: p1.Lat + ua*(p2.Lat-p1.Lat)}, true
}

// ClosestPointOnSegment returns the point on segment (a,b) closest to p.
func ClosestPointOnSegment(p, a, b Point) Point {
	dx, dy := b.Lon-a.Lon, b.Lat-a.Lat
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-30 {
		return a
	}
	t := ((p.Lon-a.Lon)*dx + (p.Lat-a.Lat)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return Point{Lon: a.Lon + t*dx, Lat: a.Lat + t*dy}
}

// PerpDistance returns the perpendicular distance (in degrees) from p to
// the infinite line through a and b, choosing the slope form (solving for
// y given x, or x given y) by whichever axis the segment spans more of --
// this is what keeps the colinear-node test (pkg/topology.AddColinearNodes)
// numerically stable for both near-horizontal and near-vertical edges.
func PerpDistance(p, a, b Point) float64 {
	dx, dy := b.Lon-a.Lon, b.Lat-a.Lat
	if math.Abs(dx) >= math.Abs(dy) {
		if dx == 0 {
			return math.Abs(p.Lon - a.Lon)
		}
		m := dy / dx
		// line: y = a.Lat + m*(x - a.Lon); distance along y-axis, normalized
		yOnLine := a.Lat + m*(p.Lon-a.Lon)
		return math.Abs(p.Lat-yOnLine) / math.Sqrt(1+m*m)
	}
	if dy == 0 {
		return math.Abs(p.Lat - a.Lat)
	}
	m := dx / dy
	xOnLine := a.Lon + m*(p.Lat-a.Lat)
	return math.Abs(p.Lon-xOnLine) / math.Sqrt(1+m*m)
}

// InteriorAngleDeg returns the interior angle in degrees at vertex b of
// the path a-b-c.
func InteriorAngleDeg(a, b, c Point) float64 {
	v1x, v1y := a.Lon-b.Lon, a.Lat-b.Lat
	v2x, v2y := c.Lon-b.Lon, c.Lat-b.Lat
	n1, n2 := math.Hypot(v1x, v1y), math.Hypot(v2x, v2y)
	if n1 < 1e-20 || n2 < 1e-20 {
		return 0
	}
	cosT := (v1x*v2x + v1y*v2y) / (n1 * n2)
	cosT = math.Max(-1, math.Min(1, cosT))
	return degrees(math.Acos(cosT))
}

// PointInPolygon reports whether p lies inside the polygon described by
// the ordered ring pts (not necessarily closed -- the last point is
// implicitly connected to the first), using an even-odd ray cast.
func PointInPolygon(p Point, pts []Point) bool {
	inside := false
	n := len(pts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := pts[i], pts[j]
		if (pi.Lat > p.Lat) != (pj.Lat > p.Lat) {
			lon := (pj.Lon-pi.Lon)*(p.Lat-pi.Lat)/(pj.Lat-pi.Lat) + pi.Lon
			if p.Lon < lon {
				inside = !inside
			}
		}
	}
	return inside
}

// SignedArea returns the signed area of the ring pts in (degree^2),
// positive for counter-clockwise orientation.
func SignedArea(pts []Point) float64 {
	var area float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pts[i].Lon*pts[j].Lat - pts[j].Lon*pts[i].Lat
	}
	return area / 2
}
