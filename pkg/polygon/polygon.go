// Package polygon holds the data model the rest of the pipeline shares:
// contours, polygons with holes, their texture metadata, and the
// "superpoly" (polygon + parallel normals + material + tessellation)
// that pavement and light-point groups both use.
package polygon

import (
	"math"

	"github.com/terragear-go/genapts/pkg/geo"
)

// Contour is an ordered ring of points. The last point implicitly
// connects back to the first -- there is no explicit back-edge, since
// every geometric operation here treats the sequence as cyclic by
// convention (see DESIGN.md's note on this).
type Contour struct {
	Points []geo.Point
	Hole   bool
}

// MinContourSize is the smallest number of points a valid contour may
// have.
const MinContourSize = 3

func (c Contour) Valid() bool { return len(c.Points) >= MinContourSize }

// CCW reports whether the contour winds counter-clockwise.
func (c Contour) CCW() bool { return geo.SignedArea(c.Points) > 0 }

// Area returns the signed area of the contour in square degrees.
func (c Contour) Area() float64 { return geo.SignedArea(c.Points) }

// Reverse returns a new Contour with the point order reversed (used to
// fix orientation: outer rings CCW, holes CW).
func (c Contour) Reverse() Contour {
	pts := make([]geo.Point, len(c.Points))
	for i, p := range c.Points {
		pts[len(pts)-1-i] = p
	}
	return Contour{Points: pts, Hole: c.Hole}
}

// Canonicalize returns c with the orientation convention applied: outer
// rings counter-clockwise, hole rings clockwise.
func (c Contour) Canonicalize() Contour {
	ccw := c.CCW()
	if (!c.Hole && ccw) || (c.Hole && !ccw) {
		return c
	}
	return c.Reverse()
}

// TexMethod selects how texture coordinates wrap at the unit-square
// boundary.
type TexMethod int

const (
	// TexClip clamps u/v to [0,1] -- used for the pavement rectangle and
	// the marking rectangles so the atlas tile doesn't repeat.
	TexClip TexMethod = iota
	// TexTile lets u/v run past [0,1] so the texture repeats -- used
	// for the centerline and side stripes that run the pavement's full
	// length, and for unpaved (dirt/grass/lakebed) runway quads.
	TexTile
)

// TextureParams describes how to project a polygon's points into
// texture space: an anchor point on the pavement, its width and length
// in meters, and a heading (degrees) along the length axis.
type TextureParams struct {
	Anchor        geo.Point
	Width, Length float64
	HeadingDeg    float64
	MinU, MaxU    float64
	MinV, MaxV    float64
	Method        TexMethod
}

// UV projects a geodetic point into this texture's (u,v) space: the
// geodesic vector from Anchor to p is resolved into the runway-aligned
// (length, cross) frame and normalized by Length and Width.
func (t TextureParams) UV(p geo.Point) (u, v float64) {
	fwd := geo.Course(t.Anchor, p)
	dist := geo.DistanceM(t.Anchor, p)
	rel := fwd - t.HeadingDeg
	rad := rel * (math.Pi / 180)
	along := dist * math.Cos(rad) // length axis
	cross := dist * math.Sin(rad) // cross axis
	u = along / t.Length
	v = cross / t.Width
	if t.Method == TexClip {
		u = clamp01(u)
		v = clamp01(v)
	}
	u = t.MinU + u*(t.MaxU-t.MinU)
	v = t.MinV + v*(t.MaxV-t.MinV)
	return u, v
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Polygon is an ordered list of contours: the first non-hole contour is
// the outer boundary, subsequent hole contours subtract from it. It
// carries the metadata a pavement or base polygon needs downstream:
// material tag, texture parameters, whether to preserve 3D elevation
// through topology repair, and a polygon id. Nothing in the pipeline
// sets ID; the tile splitter numbers its output files from pkg/counter
// instead.
type Polygon struct {
	Contours   []Contour
	Material   string
	Texture    TextureParams
	Preserve3D bool
	ID         int
}

// Outer returns the polygon's outer (non-hole) contour, or the zero
// Contour if the polygon has none.
func (p Polygon) Outer() Contour {
	for _, c := range p.Contours {
		if !c.Hole {
			return c
		}
	}
	return Contour{}
}

// Holes returns the polygon's hole contours.
func (p Polygon) Holes() []Contour {
	var holes []Contour
	for _, c := range p.Contours {
		if c.Hole {
			holes = append(holes, c)
		}
	}
	return holes
}

// Empty reports whether the polygon has no (or no valid) outer contour.
func (p Polygon) Empty() bool {
	return !p.Outer().Valid()
}

// AllPoints returns every point of every contour, outer first then
// holes in order -- used to build the shared node set for colinear
// insertion during topology repair.
func (p Polygon) AllPoints() []geo.Point {
	var pts []geo.Point
	for _, c := range p.Contours {
		pts = append(pts, c.Points...)
	}
	return pts
}

// Triangle is a single output triangle as three indices into a shared
// vertex array.
type Triangle [3]int

// TexturedTriangle pairs a Triangle's vertex indices with per-vertex
// (u,v) texture coordinates.
type TexturedTriangle struct {
	Tri  Triangle
	UV   [3][2]float64
}

// Superpoly is a polygon together with an optional parallel polygon of
// normals (one per point of the outer contour, for light points), a
// material string, and -- once tessellated -- its triangle list and
// per-triangle texture coordinates. Pavement and light-point groups are
// both represented uniformly as a Superpoly.
type Superpoly struct {
	Poly      Polygon
	Normals   *Contour // parallel to Poly.Outer().Points when non-nil
	Material  string
	Triangles []Triangle
	TexCoords []TexturedTriangle
	// Flag identifies the runway-end group a light superpoly belongs
	// to (used when lifting light points onto the terrain surface).
	Flag string
}

// Valid enforces the "parallel output structures bound by index"
// invariant: if Normals is present it must have exactly as many points
// as the outer contour.
func (s Superpoly) Valid() bool {
	if s.Normals == nil {
		return true
	}
	return len(s.Normals.Points) == len(s.Poly.Outer().Points)
}
