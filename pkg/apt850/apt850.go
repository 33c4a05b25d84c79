// Package apt850 parses the line-oriented airport-description text
// format ("apt.dat" 850-series records): a header line naming the
// airport, followed by runway, pavement, linear-feature, and boundary
// blocks, terminated by an end-of-file record. It is the external
// collaborator that does all the raw-line reading: the builder never
// reads a raw line itself, only the normalized []Airport this package
// returns.
package apt850

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/runway"
	"github.com/terragear-go/genapts/pkg/util"
)

// Record-type codes, named for the fields they introduce. Grounded
// directly on the field-separation scheme of the original parser's
// record-code table (land/sea/heliport headers, runway/pavement/
// feature/boundary block starts, node continuation lines, EOF).
const (
	codeLandAirport = 1
	codeSeaAirport  = 16
	codeHeliport    = 17

	codeLandRunway = 100
	codeWaterRunway = 101
	codeHelipad     = 102

	codePavement      = 110
	codeLinearFeature = 120
	codeBoundary      = 130

	codeNode             = 111
	codeBezierNode       = 112
	codeCloseNode        = 113
	codeCloseBezierNode  = 114
	codeTermNode         = 115
	codeTermBezierNode   = 116

	codeEOF = 99
)

// PavementNode is one vertex of a pavement, linear-feature, or boundary
// block (111-116 series records); bezier control points are accepted
// and flattened to their endpoint, since the tessellator downstream
// only consumes straight-edged contours.
type PavementNode struct {
	Point geo.Point
	Close bool // 113/114: last node of the contour, connects back to the first
	Term  bool // 115/116: last node of the last contour in the block
}

// PavementBlock is one 110 (pavement) record and its node (111-116)
// continuation lines: an outer contour plus zero or more holes.
type PavementBlock struct {
	Material string
	Nodes    []PavementNode
}

// LinearFeature is one 120 record: a painted line/lighting feature
// running along a sequence of nodes (no area, just a centerline).
type LinearFeature struct {
	Kind  string
	Nodes []PavementNode
}

// Airport is one parsed 1/16/17 header block: every runway, pavement,
// feature, and boundary record between it and the next header (or EOF).
type Airport struct {
	ID       string
	Name     string
	Kind     int // codeLandAirport, codeSeaAirport, or codeHeliport
	Runways  []runway.Record
	Pavement []PavementBlock
	Features []LinearFeature
	Boundary []PavementNode
}

// Parse reads the 850-series text format from r, returning one Airport
// per header record. Malformed lines are accumulated onto errs (via
// ErrorLogger.ErrorString) rather than aborting the whole file, since a
// bad line is fatal only to the affected airport and the builder should
// keep going -- Parse itself never returns early on a bad line; the
// caller decides per-airport whether to discard a record that had
// errors.
func Parse(r io.Reader, errs *util.ErrorLogger) ([]Airport, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var airports []Airport
	var cur *Airport
	var pav *PavementBlock
	var feat *LinearFeature
	inBoundary := false

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		code, err := strconv.Atoi(fields[0])
		if err != nil {
			errs.ErrorString("line %d: non-numeric record code %q", lineNo, fields[0])
			continue
		}

		switch code {
		case codeLandAirport, codeSeaAirport, codeHeliport:
			if cur != nil {
				airports = append(airports, *cur)
			}
			id, name := headerFields(fields)
			cur = &Airport{ID: id, Name: name, Kind: code}
			pav, feat, inBoundary = nil, nil, false

		case codeLandRunway, codeWaterRunway, codeHelipad:
			if cur == nil {
				errs.ErrorString("line %d: runway record before any airport header", lineNo)
				continue
			}
			rec, err := parseRunway(fields, code)
			if err != nil {
				errs.ErrorString("line %d: %v", lineNo, err)
				continue
			}
			cur.Runways = append(cur.Runways, rec)

		case codePavement:
			if cur == nil {
				errs.ErrorString("line %d: pavement record before any airport header", lineNo)
				continue
			}
			pav = &PavementBlock{Material: materialField(fields)}
			cur.Pavement = append(cur.Pavement, *pav)
			pav = &cur.Pavement[len(cur.Pavement)-1]
			feat, inBoundary = nil, false

		case codeLinearFeature:
			if cur == nil {
				errs.ErrorString("line %d: linear feature record before any airport header", lineNo)
				continue
			}
			cur.Features = append(cur.Features, LinearFeature{Kind: materialField(fields)})
			feat = &cur.Features[len(cur.Features)-1]
			pav, inBoundary = nil, false

		case codeBoundary:
			if cur == nil {
				errs.ErrorString("line %d: boundary record before any airport header", lineNo)
				continue
			}
			inBoundary = true
			pav, feat = nil, nil

		case codeNode, codeBezierNode, codeCloseNode, codeCloseBezierNode, codeTermNode, codeTermBezierNode:
			node, err := parseNode(fields, code)
			if err != nil {
				errs.ErrorString("line %d: %v", lineNo, err)
				continue
			}
			switch {
			case inBoundary:
				cur.Boundary = append(cur.Boundary, node)
			case pav != nil:
				pav.Nodes = append(pav.Nodes, node)
			case feat != nil:
				feat.Nodes = append(feat.Nodes, node)
			default:
				errs.ErrorString("line %d: node record outside any block", lineNo)
			}

		case codeEOF:
			if cur != nil {
				airports = append(airports, *cur)
				cur = nil
			}
			return airports, nil

		default:
			// Unrecognized codes (viewpoints, startup locations, beacons,
			// windsocks, signs, comm frequencies, ...) carry no geometry
			// this pipeline consumes; skip silently rather than error.
		}
	}
	if err := scanner.Err(); err != nil {
		return airports, fmt.Errorf("apt850: %w", err)
	}
	if cur != nil {
		airports = append(airports, *cur)
	}
	return airports, nil
}

func headerFields(fields []string) (id, name string) {
	if len(fields) < 5 {
		return "", strings.Join(fields, " ")
	}
	id = fields[4]
	if len(fields) > 5 {
		name = strings.Join(fields[5:], " ")
	}
	return id, name
}

func materialField(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// markingToTypeFlag maps a land runway's per-end marking code to the
// TypeFlag family: 3/5 are precision-approach markings, 2/4 are
// non-precision, anything else (including "no markings") falls back to
// visual. Surface-driven flags (dirt/grass/turf/lakebed) override this
// in parseRunway, since those runways carry no painted markings at all.
func markingToTypeFlag(code int) string {
	switch code {
	case 3, 5:
		return "P"
	case 2, 4:
		return "R"
	default:
		return "V"
	}
}

// parseRunway builds a runway.Record from a 100/101/102 record. The
// land-runway (100) field layout follows the public apt.dat 850-series
// format this tool's input is literally specified in: width, surface,
// shoulder, smoothness, centerline-lights, edge-lighting, auto-signs,
// then per end (runway designator, lat, lon, displaced-threshold,
// overrun, marking, approach-lighting, touchdown-zone, reil).
func parseRunway(fields []string, code int) (runway.Record, error) {
	if len(fields) < 4 {
		return runway.Record{}, fmt.Errorf("short runway record: %d fields", len(fields))
	}

	var rec runway.Record

	switch code {
	case codeLandRunway, codeWaterRunway:
		width, err := parseFloat(fields[1])
		if err != nil {
			return runway.Record{}, fmt.Errorf("bad runway width %q", fields[1])
		}
		surface := byte(0)
		if len(fields[2]) > 0 {
			surface = fields[2][0]
		}
		rec.WidthM = width
		rec.Surface = surface
	}

	switch code {
	case codeLandRunway:
		const wantFields = 26
		if len(fields) < wantFields {
			return runway.Record{}, fmt.Errorf("short land runway record: %d fields, want %d", len(fields), wantFields)
		}
		centerline, _ := parseFloat(fields[5])
		edgeLighting, _ := parseFloat(fields[6])
		rec.CenterlineLights = centerline != 0
		rec.EdgeLights = int(edgeLighting)

		// fields[8] and fields[17] are the per-end runway designator
		// strings (e.g. "09L") -- not consumed here, since runway.Record
		// derives its own heading/number from geometry.
		lat1, _ := parseFloat(fields[9])
		lon1, _ := parseFloat(fields[10])
		displ1, _ := parseFloat(fields[11])
		over1, _ := parseFloat(fields[12])
		marking1, _ := parseFloat(fields[13])
		approach1, _ := parseFloat(fields[14])
		tdz1, _ := parseFloat(fields[15])
		reil1, _ := parseFloat(fields[16])

		lat2, _ := parseFloat(fields[18])
		lon2, _ := parseFloat(fields[19])
		displ2, _ := parseFloat(fields[20])
		over2, _ := parseFloat(fields[21])
		marking2, _ := parseFloat(fields[22])
		approach2, _ := parseFloat(fields[23])
		tdz2, _ := parseFloat(fields[24])
		reil2, _ := parseFloat(fields[25])

		rec.End1 = geo.Point{Lon: lon1, Lat: lat1}
		rec.End2 = geo.Point{Lon: lon2, Lat: lat2}
		rec.DisplBeginM, rec.DisplEndM = displ1, displ2
		rec.OverrunBeginM, rec.OverrunEndM = over1, over2
		rec.ApproachLight = [2]int{int(approach1), int(approach2)}
		rec.TZLight = [2]bool{tdz1 != 0, tdz2 != 0}
		rec.REIL = [2]bool{reil1 != 0, reil2 != 0}

		switch rec.Surface {
		case 'D', 'L', 'G', 'T':
			rec.TypeFlag = string(rec.Surface)
		default:
			// first end's marking decides the family; both ends share
			// one pavement footprint, so they're assumed consistent.
			rec.TypeFlag = markingToTypeFlag(int(marking1))
		}

	case codeWaterRunway:
		if len(fields) < 7 {
			return runway.Record{}, fmt.Errorf("short water runway record: %d fields", len(fields))
		}
		lat1, _ := parseFloat(fields[3])
		lon1, _ := parseFloat(fields[4])
		lat2, _ := parseFloat(fields[5])
		lon2, _ := parseFloat(fields[6])
		rec.End1 = geo.Point{Lon: lon1, Lat: lat1}
		rec.End2 = geo.Point{Lon: lon2, Lat: lat2}
		rec.TypeFlag = "B"

	case codeHelipad:
		const wantHelipadFields = 8
		if len(fields) < wantHelipadFields {
			return runway.Record{}, fmt.Errorf("short helipad record: %d fields, want %d", len(fields), wantHelipadFields)
		}
		// fields[1] is the helipad designator string (e.g. "H1"), not
		// consumed here.
		lat, _ := parseFloat(fields[2])
		lon, _ := parseFloat(fields[3])
		orientation, _ := parseFloat(fields[4])
		length, _ := parseFloat(fields[5])
		width, _ := parseFloat(fields[6])
		half := length / 2
		center := geo.Point{Lon: lon, Lat: lat}
		rec.End1 = geo.Offset(center, orientation+180, half)
		rec.End2 = geo.Offset(center, orientation, half)
		rec.WidthM = width
		if len(fields[7]) > 0 {
			rec.Surface = fields[7][0]
		}
		rec.TypeFlag = "H"
	}
	return rec, nil
}

func parseNode(fields []string, code int) (PavementNode, error) {
	if len(fields) < 3 {
		return PavementNode{}, fmt.Errorf("short node record: %d fields", len(fields))
	}
	lat, err := parseFloat(fields[1])
	if err != nil {
		return PavementNode{}, fmt.Errorf("bad node latitude %q", fields[1])
	}
	lon, err := parseFloat(fields[2])
	if err != nil {
		return PavementNode{}, fmt.Errorf("bad node longitude %q", fields[2])
	}
	return PavementNode{
		Point: geo.Point{Lon: lon, Lat: lat},
		Close: code == codeCloseNode || code == codeCloseBezierNode,
		Term:  code == codeTermNode || code == codeTermBezierNode,
	}, nil
}
