// Package clip wraps github.com/go-clipper/clipper2's Vatti-algorithm
// polygon boolean operations and offsetting for pkg/polygon.Polygon,
// hiding the library's integer-lattice coordinate space behind the
// package boundary: everything that enters or leaves this package is a
// geodetic pkg/polygon.Polygon, never a raw clipper.Path64.
package clip

import (
	"fmt"

	clipper "github.com/go-clipper/clipper2"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

// Scale is the lattice units per degree of longitude/latitude. At
// ~1e12/degree a sub-millimeter geodesic distance still rounds to a
// distinct integer, which is what lets the clipper library treat
// coordinates as exact.
const Scale = 1e12

// ToLattice converts a geodetic point to the clipper library's integer
// coordinate space.
func ToLattice(p geo.Point) clipper.Point64 {
	return clipper.Point64{X: int64(p.Lon * Scale), Y: int64(p.Lat * Scale)}
}

// FromLattice converts a clipper integer point back to a geodetic
// point (elevation is lost -- the clipper boundary is 2D only).
func FromLattice(pt clipper.Point64) geo.Point {
	return geo.Point{Lon: float64(pt.X) / Scale, Lat: float64(pt.Y) / Scale}
}

func contourToPath(c polygon.Contour) clipper.Path64 {
	path := make(clipper.Path64, len(c.Points))
	for i, p := range c.Points {
		path[i] = ToLattice(p)
	}
	return path
}

func pathToContour(path clipper.Path64, hole bool) polygon.Contour {
	pts := make([]geo.Point, len(path))
	for i, pt := range path {
		pts[i] = FromLattice(pt)
	}
	return polygon.Contour{Points: pts, Hole: hole}
}

// toPaths flattens a Polygon's contours into lattice paths, outer rings
// and holes alike -- the clipper library distinguishes the two only by
// winding direction, which Canonicalize has already fixed up.
func toPaths(p polygon.Polygon) clipper.Paths64 {
	paths := make(clipper.Paths64, 0, len(p.Contours))
	for _, c := range p.Contours {
		paths = append(paths, contourToPath(c.Canonicalize()))
	}
	return paths
}

// fromPaths rebuilds a Polygon from the clipper library's output
// paths, using winding direction to tell outer rings from holes (outer
// rings area > 0 once converted back to geodetic coordinates, matching
// pkg/polygon's CCW-outer/CW-hole convention), and carries over the
// template's metadata.
func fromPaths(paths clipper.Paths64, template polygon.Polygon) polygon.Polygon {
	out := polygon.Polygon{Material: template.Material, Texture: template.Texture, Preserve3D: template.Preserve3D}
	for _, path := range paths {
		if len(path) < polygon.MinContourSize {
			continue
		}
		c := pathToContour(path, false)
		c.Hole = !c.CCW()
		out.Contours = append(out.Contours, c)
	}
	return out
}

func boolOp(op clipper.ClipType, a, b polygon.Polygon) polygon.Polygon {
	subject := toPaths(a)
	clipPaths := toPaths(b)
	result := clipper.BooleanOp64(op, clipper.EvenOdd, subject, clipPaths)
	return fromPaths(result, a)
}

// Union returns the set union of a and b, using even-odd fill.
func Union(a, b polygon.Polygon) polygon.Polygon {
	return boolOp(clipper.Union, a, b)
}

// Difference returns a with b's area removed, using even-odd fill.
func Difference(a, b polygon.Polygon) polygon.Polygon {
	return boolOp(clipper.Difference, a, b)
}

// Intersection returns the overlap of a and b, using even-odd fill.
func Intersection(a, b polygon.Polygon) polygon.Polygon {
	return boolOp(clipper.Intersection, a, b)
}

// Xor returns the symmetric difference of a and b, using even-odd fill.
func Xor(a, b polygon.Polygon) polygon.Polygon {
	return boolOp(clipper.Xor, a, b)
}

// Expand buffers contour outward by deltaM meters (a square join, no
// mitering needed for the rectangular pavement shapes this backs) and
// returns the single resulting contour. It is an error for the offset
// to produce more than one contour -- callers that invoke expand on a
// single convex-ish contour should never see that happen, and a caller
// that does is handed a bug to fix rather than a silently wrong second
// contour.
func Expand(contour polygon.Contour, deltaM float64) (polygon.Contour, error) {
	deltaDeg := deltaM * geo.DegPerMeterLat
	path := contourToPath(contour.Canonicalize())
	opts := clipper.OffsetOptions{MiterLimit: 2.0, ArcTolerance: 0.25}
	result := clipper.InflatePaths64(clipper.Paths64{path}, deltaDeg*Scale, clipper.Square, clipper.ClosedPolygon, opts)
	if len(result) != 1 {
		return polygon.Contour{}, fmt.Errorf("clip: expand produced %d contours, want 1", len(result))
	}
	return pathToContour(result[0], contour.Hole), nil
}

// Simplify removes collinear (and near-collinear, within the clipper
// library's default tolerance) vertices from every contour of p.
func Simplify(p polygon.Polygon) polygon.Polygon {
	out := polygon.Polygon{Material: p.Material, Texture: p.Texture, Preserve3D: p.Preserve3D, ID: p.ID}
	for _, c := range p.Contours {
		path := contourToPath(c)
		simplified := clipper.SimplifyPaths64(clipper.Paths64{path}, 0, false)
		if len(simplified) == 0 {
			continue
		}
		out.Contours = append(out.Contours, pathToContour(simplified[0], c.Hole))
	}
	return out
}
