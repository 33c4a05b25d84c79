// Package runway generates the pavement geometry, texture parameters,
// and base/clearing footprints for a single runway or taxiway record.
package runway

import (
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
)

// Record describes one runway, helipad, or taxiway the way the
// airport-description parser (pkg/apt850, an external collaborator)
// normalizes it.
type Record struct {
	End1, End2 geo.Point // threshold points, before displacement
	WidthM     float64

	DisplBeginM, DisplEndM   float64 // displaced threshold, per end (End1, End2)
	OverrunBeginM, OverrunEndM float64

	TypeFlag string // P, R, V, B, H, D, G, T, L
	Surface  byte   // 'A' asphalt, 'C' concrete, 'D' dirt, 'L' lakebed, 'G' grass, 'T' turf

	ApproachLight [2]int  // per-end approach light family code
	REIL          [2]bool // per-end runway end identifier lights
	TZLight       [2]bool // per-end touchdown zone lights
	EdgeLights    int     // intensity tier 0..3
	CenterlineLights bool
	MarkingKind   [2]string

	IsTaxiway bool
	Generated bool // set once this record has gone through the size-ordered taxiway pass
}

// LengthM returns the geodesic distance between the two thresholds.
func (r Record) LengthM() float64 { return geo.DistanceM(r.End1, r.End2) }

// HeadingDeg returns the forward course from End1 to End2.
func (r Record) HeadingDeg() float64 { return geo.Course(r.End1, r.End2) }

// Midpoint returns the geodesic midpoint between the two thresholds.
func (r Record) Midpoint() geo.Point { return geo.Midpoint(r.End1, r.End2) }

// Area is the length*width size proxy the taxiway ordering pass sorts
// on.
func (r Record) Area() float64 { return r.LengthM() * r.WidthM }

// GenRunwayAreaWExtend returns the four-corner outer quad for the
// pavement rectangle, extended lengthwise by lengthExtendM beyond each
// end (minus that end's displacement), and widthwise by widthExtendM on
// each side. Corners are computed by geodesic offset from the runway
// midpoint: half-length along the heading, half-width along
// heading-90, with each end's displacement subtracted from its half of
// the length.
func GenRunwayAreaWExtend(r Record, lengthExtendM, displBeginM, displEndM, widthExtendM float64) polygon.Contour {
	hdg := r.HeadingDeg()
	mid := r.Midpoint()
	halfLen := r.LengthM() / 2
	halfWidth := r.WidthM/2 + widthExtendM

	beginCenter := geo.Offset(mid, hdg+180, halfLen+lengthExtendM-displBeginM)
	endCenter := geo.Offset(mid, hdg, halfLen+lengthExtendM-displEndM)

	left := hdg - 90
	right := hdg + 90

	p1 := geo.Offset(beginCenter, left, halfWidth)
	p2 := geo.Offset(endCenter, left, halfWidth)
	p3 := geo.Offset(endCenter, right, halfWidth)
	p4 := geo.Offset(beginCenter, right, halfWidth)

	return polygon.Contour{Points: []geo.Point{p1, p2, p3, p4}}
}

// textureRect builds a rectangular polygon anchored at center, with the
// given width/length/heading, and the texture parameters that project
// any point on it into [0,1]x[0,1] (or tiled, for taxiway stripes).
func textureRect(center geo.Point, widthM, lengthM, headingDeg float64, method polygon.TexMethod) polygon.Polygon {
	halfLen := lengthM / 2
	halfWidth := widthM / 2
	beginCenter := geo.Offset(center, headingDeg+180, halfLen)
	endCenter := geo.Offset(center, headingDeg, halfLen)
	left, right := headingDeg-90, headingDeg+90

	pts := []geo.Point{
		geo.Offset(beginCenter, left, halfWidth),
		geo.Offset(endCenter, left, halfWidth),
		geo.Offset(endCenter, right, halfWidth),
		geo.Offset(beginCenter, right, halfWidth),
	}
	return polygon.Polygon{
		Contours: []polygon.Contour{{Points: pts}},
		Texture: polygon.TextureParams{
			Anchor: center, Width: widthM, Length: lengthM, HeadingDeg: headingDeg,
			MinU: 0, MaxU: 1, MinV: 0, MaxV: 1, Method: method,
		},
	}
}

// Material returns the material tag for this record's pavement,
// selected by surface code and width.
func (r Record) Material() string {
	switch r.Surface {
	case 'A':
		return "pa_" + pavementSuffix(r)
	case 'C':
		if r.WidthM <= 150 {
			return "pc_taxiway"
		}
		return "pc_tiedown"
	case 'D', 'L':
		return "dirt_rwy"
	case 'G', 'T':
		return "grass_rwy"
	default:
		return "pa_taxiway"
	}
}

func pavementSuffix(r Record) string {
	if r.IsTaxiway {
		return "taxiway"
	}
	return "runway"
}

// Layers is the full set of geodetic geometry produced for one record:
// the ordered pavement/marking polygons (marking rectangles first, in
// priority order, and the full pavement rectangle last, so that the
// airport builder's earlier-wins differencing keeps every marking and
// fills the rest of the runway with plain pavement), plus the base and
// safe_base footprints that feed the airport base and
// clearing accumulators.
type Layers struct {
	Pavement []polygon.Polygon
	Base     polygon.Polygon
	SafeBase polygon.Polygon
}

// Generate produces a record's pavement/marking layers and its
// base/safe_base footprints, dispatching on TypeFlag.
func Generate(r Record) Layers {
	var layers Layers

	switch r.TypeFlag {
	case "P":
		layers.Pavement = precisionLayers(r)
	case "R":
		layers.Pavement = nonPrecisionLayers(r)
	case "V":
		layers.Pavement = visualLayers(r)
	case "B":
		// buoys: no pavement.
	case "H":
		layers.Pavement = helipadLayers(r)
	case "D", "G", "T", "L":
		layers.Pavement = []polygon.Polygon{plainQuad(r)}
	default:
		layers.Pavement = []polygon.Polygon{plainQuad(r)}
	}

	// The layer builders list the pavement rectangle first; move it to
	// the end so it has the lowest priority.
	if len(layers.Pavement) > 1 {
		layers.Pavement = append(layers.Pavement[1:], layers.Pavement[0])
	}

	for i := range layers.Pavement {
		layers.Pavement[i].Material = r.Material()
	}

	layers.Base = basePolygon(r)
	layers.SafeBase = safeBasePolygon(r)
	return layers
}

func pavementQuad(r Record) polygon.Polygon {
	outer := GenRunwayAreaWExtend(r, 0, r.DisplBeginM, r.DisplEndM, 0)
	return polygon.Polygon{
		Contours: []polygon.Contour{outer},
		Texture: polygon.TextureParams{
			Anchor: r.Midpoint(), Width: r.WidthM, Length: r.LengthM(), HeadingDeg: r.HeadingDeg(),
			MinU: 0, MaxU: 1, MinV: 0, MaxV: 1, Method: polygon.TexClip,
		},
	}
}

func plainQuad(r Record) polygon.Polygon {
	p := pavementQuad(r)
	p.Texture.Method = polygon.TexTile
	return p
}

func centerlineStripe(r Record) polygon.Polygon {
	return textureRect(r.Midpoint(), 0.9, r.LengthM(), r.HeadingDeg(), polygon.TexTile)
}

func sideStripes(r Record) []polygon.Polygon {
	hdg := r.HeadingDeg()
	halfWidth := r.WidthM / 2
	left := geo.Offset(r.Midpoint(), hdg-90, halfWidth-1.5)
	right := geo.Offset(r.Midpoint(), hdg+90, halfWidth-1.5)
	return []polygon.Polygon{
		textureRect(left, 1.0, r.LengthM(), hdg, polygon.TexTile),
		textureRect(right, 1.0, r.LengthM(), hdg, polygon.TexTile),
	}
}

// endHeading returns the direction from the runway midpoint out toward
// the given end, mirroring lighting.GenerateEnd's heading-plus-180
// override pattern for the opposite end.
func endHeading(r Record, endIdx int) float64 {
	hdg := r.HeadingDeg()
	if endIdx == 0 {
		hdg += 180
	}
	return hdg
}

func aimingPoint(r Record, endIdx int) polygon.Polygon {
	hdg := endHeading(r, endIdx)
	anchor := geo.Offset(r.Midpoint(), hdg, 300)
	return textureRect(anchor, 10, 45, r.HeadingDeg(), polygon.TexClip)
}

func tdzBars(r Record, endIdx int) []polygon.Polygon {
	var out []polygon.Polygon
	hdg := endHeading(r, endIdx)
	for _, distM := range []float64{150, 300, 450, 600} {
		anchor := geo.Offset(r.Midpoint(), hdg, distM)
		out = append(out, textureRect(anchor, r.WidthM*0.7, 6, r.HeadingDeg(), polygon.TexClip))
	}
	return out
}

func numbersMarking(r Record, endIdx int) polygon.Polygon {
	hdg := endHeading(r, endIdx)
	anchor := geo.Offset(r.Midpoint(), hdg, 60)
	return textureRect(anchor, 6, 8, r.HeadingDeg(), polygon.TexClip)
}

func thresholdMarking(r Record, endIdx int) polygon.Polygon {
	hdg := endHeading(r, endIdx)
	anchor := geo.Offset(r.Midpoint(), hdg, 15)
	return textureRect(anchor, r.WidthM*0.8, 15, r.HeadingDeg(), polygon.TexClip)
}

func precisionLayers(r Record) []polygon.Polygon {
	layers := []polygon.Polygon{pavementQuad(r), centerlineStripe(r)}
	layers = append(layers, sideStripes(r)...)
	for end := 0; end < 2; end++ {
		layers = append(layers, aimingPoint(r, end))
		layers = append(layers, tdzBars(r, end)...)
		layers = append(layers, numbersMarking(r, end))
	}
	return layers
}

func nonPrecisionLayers(r Record) []polygon.Polygon {
	layers := []polygon.Polygon{pavementQuad(r), centerlineStripe(r)}
	for end := 0; end < 2; end++ {
		layers = append(layers, thresholdMarking(r, end))
		layers = append(layers, numbersMarking(r, end))
	}
	return layers
}

func visualLayers(r Record) []polygon.Polygon {
	layers := []polygon.Polygon{pavementQuad(r), centerlineStripe(r)}
	for end := 0; end < 2; end++ {
		layers = append(layers, numbersMarking(r, end))
	}
	return layers
}

func helipadLayers(r Record) []polygon.Polygon {
	pad := pavementQuad(r)
	mark := textureRect(r.Midpoint(), r.WidthM*0.6, r.WidthM*0.6, r.HeadingDeg(), polygon.TexClip)
	return []polygon.Polygon{pad, mark}
}

// basePolygon returns the pavement-plus-apron rectangle that feeds the
// airport base accumulator: runways get ±20m, taxiways ±10m.
func basePolygon(r Record) polygon.Polygon {
	extend := 20.0
	if r.IsTaxiway {
		extend = 10.0
	}
	c := GenRunwayAreaWExtend(r, extend, r.DisplBeginM, r.DisplEndM, extend)
	return polygon.Polygon{Contours: []polygon.Contour{c}}
}

// safeBasePolygon returns the wider rectangle that feeds the airport
// clearing accumulator: runways get ±180m length / ±50m width,
// taxiways ±40m all round.
func safeBasePolygon(r Record) polygon.Polygon {
	var lengthExtend, widthExtend float64
	if r.IsTaxiway {
		lengthExtend, widthExtend = 40, 40
	} else {
		lengthExtend, widthExtend = 180, 50
	}
	c := GenRunwayAreaWExtend(r, lengthExtend, r.DisplBeginM, r.DisplEndM, widthExtend)
	return polygon.Polygon{Contours: []polygon.Contour{c}}
}
