// Package lighting produces the approach-light, edge, centerline, and
// touchdown-zone light-point patterns for a runway end, represented as
// the same uniformly-shaped superpoly pavement uses: a contour of
// positions, a parallel contour of unit normals, and a material string.
package lighting

import (
	"math"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
	"github.com/terragear-go/genapts/pkg/runway"
)

// Group is one named light-point superpoly, ready to hand to the
// tessellator-free light-point output path (lights are point groups,
// not triangulated).
type Group struct {
	Name string
	Pts  polygon.Superpoly
}

// DirectionVector computes the per-light aim direction for directional
// lights: the cartesian vector from end to the opposite threshold,
// rotated by pitchDeg around a horizontal axis perpendicular
// to the runway, using the geocentric up-vector at end to define
// "horizontal".
func DirectionVector(end, other geo.Point, pitchDeg float64) [3]float64 {
	a := geo.ToECEF(end)
	b := geo.ToECEF(other)
	dir := normalize(sub(b, a))
	up := geo.NormalAt(end)
	axis := normalize(cross(dir, up))
	return normalize(rotate(dir, axis, pitchDeg))
}

// OmniNormal returns the placeholder normal for an omnidirectional
// light: the geocentric up-vector at p.
func OmniNormal(p geo.Point) [3]float64 { return geo.NormalAt(p) }

func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func normalize(v [3]float64) [3]float64 {
	n := math.Sqrt(dot(v, v))
	if n < 1e-20 {
		return v
	}
	return [3]float64{v[0] / n, v[1] / n, v[2] / n}
}

// rotate applies Rodrigues' rotation formula: rotates v around the unit
// axis by angleDeg degrees.
func rotate(v, axis [3]float64, angleDeg float64) [3]float64 {
	theta := angleDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	c := cross(axis, v)
	d := dot(axis, v)
	return [3]float64{
		v[0]*cosT + c[0]*sinT + axis[0]*d*(1-cosT),
		v[1]*cosT + c[1]*sinT + axis[1]*d*(1-cosT),
		v[2]*cosT + c[2]*sinT + axis[2]*d*(1-cosT),
	}
}

// lightRun builds a superpoly of n omnidirectional light points, placed
// at distanceM(i) along the runway axis (positive = outward past
// threshold) and crossM(i) across it, from threshold outward.
func lightRun(threshold geo.Point, hdgOut float64, n int, distanceM, crossM func(i int) float64, material, flag string) polygon.Superpoly {
	pts := make([]geo.Point, n)
	normals := make([]geo.Point, n)
	for i := 0; i < n; i++ {
		p := geo.Offset(threshold, hdgOut, distanceM(i))
		p = geo.Offset(p, hdgOut+90, crossM(i))
		pts[i] = p
		up := OmniNormal(p)
		normals[i] = geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]}
	}
	return polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: pts}}, Material: material},
		Normals:  &polygon.Contour{Points: normals},
		Material: material,
		Flag:     flag,
	}
}

// simpleThresholdBar is the fallback pattern: a runway with edge
// lights but no usable approach system gets a plain bar of lights
// across the threshold.
func simpleThresholdBar(threshold geo.Point, hdgOut float64, widthM float64) polygon.Superpoly {
	n := 9
	half := widthM / 2
	return lightRun(threshold, hdgOut, n,
		func(i int) float64 { return 0 },
		func(i int) float64 { return -half + half*2*float64(i)/float64(n-1) },
		"rwylight_white_bidir", "threshold")
}

// ALSFII produces the ALSF-II approach light system, matching S4's
// concrete pattern: a 30-unit (3 lights each) center bar spaced 30m
// starting 30m outside the threshold, a red terminating bar at 60m,
// nine red side rows, a 300m crossbar of 16 lights, and 21 sequenced
// rabbit (RAIL) lights spaced 30m starting at 300m.
func ALSFII(threshold geo.Point, hdgOut float64) []Group {
	var groups []Group

	centerPts := make([]geo.Point, 0, 30*3)
	for unit := 0; unit < 30; unit++ {
		dist := 30 + 30*float64(unit)
		for _, cross := range []float64{-1, 0, 1} {
			p := geo.Offset(threshold, hdgOut, dist)
			p = geo.Offset(p, hdgOut+90, cross)
			centerPts = append(centerPts, p)
		}
	}
	centerNormals := make([]geo.Point, len(centerPts))
	for i, p := range centerPts {
		up := OmniNormal(p)
		centerNormals[i] = geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]}
	}
	groups = append(groups, Group{Name: "center_bar", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: centerPts}}, Material: "applight_alsf2_core"},
		Normals:  &polygon.Contour{Points: centerNormals},
		Material: "applight_alsf2_core",
		Flag:     "approach",
	}})

	groups = append(groups, Group{Name: "terminating_bar", Pts: lightRun(threshold, hdgOut, 8,
		func(i int) float64 { return 60 },
		func(i int) float64 { return -10.5 + 3*float64(i) },
		"rwylight_red", "approach")})

	for row := 0; row < 9; row++ {
		dist := 30 + 30*float64(row)
		groups = append(groups, Group{Name: "side_row", Pts: lightRun(threshold, hdgOut, 5,
			func(i int) float64 { return dist },
			func(i int) float64 { return 7.5 + 1.5*float64(i) },
			"rwylight_red", "approach")})
	}

	groups = append(groups, Group{Name: "crossbar_300", Pts: lightRun(threshold, hdgOut, 16,
		func(i int) float64 { return 300 },
		func(i int) float64 { return -37.5 + 5*float64(i) },
		"applight_crossbar", "approach")})

	groups = append(groups, Group{Name: "rail", Pts: lightRun(threshold, hdgOut, 21,
		func(i int) float64 { return 300 + 30*float64(i) },
		func(i int) float64 { return 0 },
		"applight_flash_sequence", "approach")})

	return groups
}

// ALSFI produces the ALSF-I system: a 24-unit (3 lights each) center
// bar spaced 30m starting 30m outside the threshold, and a 12-light
// crossbar at 1000 ft (≈300m). Unlike ALSFII it has no red terminating
// bar, no side rows and no rabbit lights.
func ALSFI(threshold geo.Point, hdgOut float64) []Group {
	var groups []Group
	centerPts := make([]geo.Point, 0, 24*3)
	for unit := 0; unit < 24; unit++ {
		dist := 30 + 30*float64(unit)
		for _, cross := range []float64{-1, 0, 1} {
			p := geo.Offset(threshold, hdgOut, dist)
			p = geo.Offset(p, hdgOut+90, cross)
			centerPts = append(centerPts, p)
		}
	}
	centerNormals := make([]geo.Point, len(centerPts))
	for i, p := range centerPts {
		up := OmniNormal(p)
		centerNormals[i] = geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]}
	}
	groups = append(groups, Group{Name: "center_bar", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: centerPts}}, Material: "applight_alsf1_core"},
		Normals:  &polygon.Contour{Points: centerNormals},
		Material: "applight_alsf1_core",
		Flag:     "approach",
	}})
	groups = append(groups, Group{Name: "crossbar_1000ft", Pts: lightRun(threshold, hdgOut, 12,
		func(i int) float64 { return 300 },
		func(i int) float64 { return -27.5 + 5*float64(i) },
		"applight_crossbar", "approach")})
	return groups
}

// calvert builds a Calvert-pattern (UK precision approach) system: a
// center bar of five-light units spaced 30m starting 30m outside the
// threshold, with five-light wing bars at 150m, 300m and 450m. tier
// selects between Calvert-I's 15 center units and Calvert-II's 24.
func calvert(threshold geo.Point, hdgOut float64, tier int) []Group {
	units := 15
	if tier == 2 {
		units = 24
	}
	var groups []Group
	centerPts := make([]geo.Point, 0, units*5)
	for unit := 0; unit < units; unit++ {
		dist := 30 + 30*float64(unit)
		for c := -2; c <= 2; c++ {
			p := geo.Offset(threshold, hdgOut, dist)
			p = geo.Offset(p, hdgOut+90, float64(c))
			centerPts = append(centerPts, p)
		}
	}
	centerNormals := make([]geo.Point, len(centerPts))
	for i, p := range centerPts {
		up := OmniNormal(p)
		centerNormals[i] = geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]}
	}
	groups = append(groups, Group{Name: "center_bar", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: centerPts}}, Material: "applight_calvert_core"},
		Normals:  &polygon.Contour{Points: centerNormals},
		Material: "applight_calvert_core",
		Flag:     "approach",
	}})
	for _, dist := range []float64{150, 300, 450} {
		groups = append(groups, Group{Name: "wing_bar", Pts: lightRun(threshold, hdgOut, 5,
			func(i int) float64 { return dist },
			func(i int) float64 { return 20 + 2*float64(i) },
			"applight_wingbar", "approach")})
	}
	return groups
}

// CalvertI is the lighter Calvert pattern.
func CalvertI(threshold geo.Point, hdgOut float64) []Group { return calvert(threshold, hdgOut, 1) }

// CalvertII is the denser Calvert pattern.
func CalvertII(threshold geo.Point, hdgOut float64) []Group { return calvert(threshold, hdgOut, 2) }

// ssal builds a Simplified Short Approach Lighting pattern. variant
// selects SSALR (with RAIL), SSALF (with sequenced flashers), or plain
// SSALS.
func ssal(threshold geo.Point, hdgOut float64, variant string) []Group {
	var groups []Group
	for unit := 0; unit < 8; unit++ {
		dist := 200 + 200*float64(unit)
		groups = append(groups, Group{Name: "center_bar", Pts: lightRun(threshold, hdgOut, 3,
			func(i int) float64 { return dist },
			func(i int) float64 { return -1 + float64(i) },
			"applight_ssal_core", "approach")})
	}
	switch variant {
	case "SSALR":
		groups = append(groups, Group{Name: "rail", Pts: lightRun(threshold, hdgOut, 5,
			func(i int) float64 { return 1600 + 200*float64(i) },
			func(i int) float64 { return 0 },
			"applight_flash_sequence", "approach")})
	case "SSALF":
		groups = append(groups, Group{Name: "flashers", Pts: lightRun(threshold, hdgOut, 3,
			func(i int) float64 { return 1400 + 200*float64(i) },
			func(i int) float64 { return 0 },
			"applight_flash_single", "approach")})
	}
	return groups
}

// SSALS, SSALR, SSALF are the three common SSALx variants.
func SSALS(threshold geo.Point, hdgOut float64) []Group { return ssal(threshold, hdgOut, "SSALS") }
func SSALR(threshold geo.Point, hdgOut float64) []Group { return ssal(threshold, hdgOut, "SSALR") }
func SSALF(threshold geo.Point, hdgOut float64) []Group { return ssal(threshold, hdgOut, "SSALF") }

// mals builds a Medium Intensity Approach Lighting pattern -- the same
// shape as SSALx, shorter, medium-intensity materials. variant selects
// MALS, MALSR (with RAIL), or MALSF (with sequenced flashers).
func mals(threshold geo.Point, hdgOut float64, variant string) []Group {
	var groups []Group
	for unit := 0; unit < 5; unit++ {
		dist := 200 + 200*float64(unit)
		groups = append(groups, Group{Name: "center_bar", Pts: lightRun(threshold, hdgOut, 3,
			func(i int) float64 { return dist },
			func(i int) float64 { return -1 + float64(i) },
			"applight_mals_core", "approach")})
	}
	switch variant {
	case "MALSR":
		groups = append(groups, Group{Name: "rail", Pts: lightRun(threshold, hdgOut, 5,
			func(i int) float64 { return 1000 + 200*float64(i) },
			func(i int) float64 { return 0 },
			"applight_flash_sequence", "approach")})
	case "MALSF":
		groups = append(groups, Group{Name: "flashers", Pts: lightRun(threshold, hdgOut, 3,
			func(i int) float64 { return 800 + 200*float64(i) },
			func(i int) float64 { return 0 },
			"applight_flash_single", "approach")})
	}
	return groups
}

// MALS, MALSR, MALSF are the three common MALSx variants.
func MALS(threshold geo.Point, hdgOut float64) []Group  { return mals(threshold, hdgOut, "MALS") }
func MALSR(threshold geo.Point, hdgOut float64) []Group { return mals(threshold, hdgOut, "MALSR") }
func MALSF(threshold geo.Point, hdgOut float64) []Group { return mals(threshold, hdgOut, "MALSF") }

// ODALS builds an Omnidirectional Approach Lighting System: a simple
// sequence of flashing omnidirectional lights with no bars, plus the
// RAIL sequence when requested separately via RAIL below.
func ODALS(threshold geo.Point, hdgOut float64) []Group {
	return []Group{{Name: "odals", Pts: lightRun(threshold, hdgOut, 5,
		func(i int) float64 { return 150 + 150*float64(i) },
		func(i int) float64 { return 0 },
		"applight_flash_omni", "approach")}}
}

// RAIL builds a standalone runway alignment indicator light sequence
// (used with ODALS, or as a bolt-on to other short systems).
func RAIL(threshold geo.Point, hdgOut float64, n int) Group {
	return Group{Name: "rail", Pts: lightRun(threshold, hdgOut, n,
		func(i int) float64 { return 300 + 30*float64(i) },
		func(i int) float64 { return 0 },
		"applight_flash_sequence", "approach")}
}

// REIL builds the two flashing Runway End Identifier Lights flanking
// the threshold, just outside the runway edge.
func REIL(threshold geo.Point, hdgOut float64, widthM float64) Group {
	half := widthM/2 + 3
	return Group{Name: "reil", Pts: lightRun(threshold, hdgOut, 2,
		func(i int) float64 { return 0 },
		func(i int) float64 {
			if i == 0 {
				return -half
			}
			return half
		},
		"applight_reil", "threshold")}
}

// EdgeLights places runway edge lights along both sides of the
// pavement, spaced every 60m, intensity selecting the material suffix.
func EdgeLights(r runway.Record, intensity int) Group {
	hdg := r.HeadingDeg()
	length := r.LengthM()
	spacing := 60.0
	n := int(length/spacing) + 1
	half := r.WidthM / 2
	mat := edgeMaterial(intensity)

	begin := geo.Offset(r.End1, hdg+180, 0)
	var pts, normals []geo.Point
	for i := 0; i < n; i++ {
		dist := float64(i) * spacing
		if dist > length {
			dist = length
		}
		for _, side := range []float64{-half, half} {
			center := geo.Offset(begin, hdg, dist)
			p := geo.Offset(center, hdg+90, side)
			pts = append(pts, p)
			up := OmniNormal(p)
			normals = append(normals, geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]})
		}
	}
	return Group{Name: "edge", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: pts}}, Material: mat},
		Normals:  &polygon.Contour{Points: normals},
		Material: mat,
		Flag:     "edge",
	}}
}

func edgeMaterial(intensity int) string {
	switch intensity {
	case 1:
		return "rwylight_edge_low"
	case 2:
		return "rwylight_edge_medium"
	case 3:
		return "rwylight_edge_high"
	default:
		return "rwylight_edge_low"
	}
}

// CenterlineLights places lights down the runway centerline every 15m.
func CenterlineLights(r runway.Record) Group {
	hdg := r.HeadingDeg()
	length := r.LengthM()
	spacing := 15.0
	n := int(length/spacing) + 1
	var pts, normals []geo.Point
	for i := 0; i < n; i++ {
		dist := float64(i) * spacing
		if dist > length {
			dist = length
		}
		p := geo.Offset(r.End1, hdg, dist)
		pts = append(pts, p)
		up := OmniNormal(p)
		normals = append(normals, geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]})
	}
	return Group{Name: "centerline", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: pts}}, Material: "rwylight_centerline"},
		Normals:  &polygon.Contour{Points: normals},
		Material: "rwylight_centerline",
		Flag:     "centerline",
	}}
}

// TDZLights places touchdown-zone barrette lights out to 900m from the
// threshold (the standard TDZ extent), one pair of barrettes every
// 30m.
func TDZLights(threshold geo.Point, hdgOut float64, widthM float64) Group {
	half := widthM / 2
	var pts, normals []geo.Point
	for dist := 30.0; dist <= 900; dist += 30 {
		for _, side := range []float64{-half * 0.6, half * 0.6} {
			center := geo.Offset(threshold, hdgOut, dist)
			p := geo.Offset(center, hdgOut+90, side)
			pts = append(pts, p)
			up := OmniNormal(p)
			normals = append(normals, geo.Point{Lon: up[0], Lat: up[1], Elev: up[2]})
		}
	}
	return Group{Name: "tdz", Pts: polygon.Superpoly{
		Poly:     polygon.Polygon{Contours: []polygon.Contour{{Points: pts}}, Material: "rwylight_tdz"},
		Normals:  &polygon.Contour{Points: normals},
		Material: "rwylight_tdz",
		Flag:     "tdz",
	}}
}

// ApproachFamily dispatches an approach-light code (the integer code
// pkg/apt850 normalizes from the input format) to the pattern
// generator that produces it.
func ApproachFamily(code int, threshold geo.Point, hdgOut float64) []Group {
	switch code {
	case 1:
		return ALSFI(threshold, hdgOut)
	case 2:
		return ALSFII(threshold, hdgOut)
	case 3:
		return CalvertI(threshold, hdgOut)
	case 4:
		return CalvertII(threshold, hdgOut)
	case 5:
		return SSALS(threshold, hdgOut)
	case 6:
		return SSALR(threshold, hdgOut)
	case 7:
		return SSALF(threshold, hdgOut)
	case 8:
		return MALS(threshold, hdgOut)
	case 9:
		return MALSR(threshold, hdgOut)
	case 10:
		return MALSF(threshold, hdgOut)
	case 11:
		return ODALS(threshold, hdgOut)
	default:
		return nil
	}
}

// GenerateEnd assembles every light group for one runway end,
// inspecting edge/centerline/TDZ/REIL/approach flags and concatenating
// whichever patterns apply, falling back to a simple threshold bar when edge
// lights are present but the end has no (or only an omnidirectional)
// approach system.
func GenerateEnd(r runway.Record, endIdx int) []Group {
	var groups []Group
	threshold := r.End1
	hdgOut := r.HeadingDeg() + 180
	if endIdx == 1 {
		threshold = r.End2
		hdgOut = r.HeadingDeg()
	}

	approach := ApproachFamily(r.ApproachLight[endIdx], threshold, hdgOut)
	groups = append(groups, approach...)

	if r.REIL[endIdx] {
		groups = append(groups, REIL(threshold, hdgOut, r.WidthM))
	}
	if r.TZLight[endIdx] {
		groups = append(groups, TDZLights(threshold, hdgOut, r.WidthM))
	}

	hasDirectionalApproach := r.ApproachLight[endIdx] != 0 && r.ApproachLight[endIdx] != 11
	if r.EdgeLights > 0 && !hasDirectionalApproach {
		groups = append(groups, Group{Name: "threshold_bar", Pts: simpleThresholdBar(threshold, hdgOut, r.WidthM)})
	}

	return groups
}

// Generate assembles every light group for both runway ends plus the
// shared edge and centerline runs. A runway with edge_lights==0 and
// approach_lights==0 at both ends (and no REIL/TDZ) emits zero groups.
func Generate(r runway.Record) []Group {
	var groups []Group
	groups = append(groups, GenerateEnd(r, 0)...)
	groups = append(groups, GenerateEnd(r, 1)...)
	if r.EdgeLights > 0 {
		groups = append(groups, EdgeLights(r, r.EdgeLights))
	}
	if r.CenterlineLights {
		groups = append(groups, CenterlineLights(r))
	}
	return groups
}
