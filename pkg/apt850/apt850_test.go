package apt850

import (
	"strings"
	"testing"

	"github.com/terragear-go/genapts/pkg/util"
)

const sample = `1  100 0 0 EXMP Example Airport
100 45.00 A 0 0 1 2 0 09L -0.01124 0.00000 0 0 3 0 0 0 27R 0.01124 0.00000 0 0 3 0 0 0
110 1 pa_taxiway
111  0.40000  0.40000
111  0.40000  0.60000
113  0.60000  0.60000
120 2 runway
111  0.00000  0.00000
115  0.01000  0.01000
99
`

func TestParseHeaderAndRunway(t *testing.T) {
	errs := &util.ErrorLogger{}
	airports, err := Parse(strings.NewReader(sample), errs)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if errs.HaveErrors() {
		t.Fatalf("unexpected format errors: %v", errs.String())
	}
	if len(airports) != 1 {
		t.Fatalf("expected 1 airport, got %d", len(airports))
	}
	a := airports[0]
	if a.ID != "EXMP" {
		t.Errorf("expected airport id EXMP, got %q", a.ID)
	}
	if len(a.Runways) != 1 {
		t.Fatalf("expected 1 runway, got %d", len(a.Runways))
	}
	if a.Runways[0].TypeFlag != "P" {
		t.Errorf("expected marking code 3 to map to TypeFlag P, got %q", a.Runways[0].TypeFlag)
	}
	if a.Runways[0].CenterlineLights != true || a.Runways[0].EdgeLights != 2 {
		t.Errorf("expected centerline lights on and edge intensity 2, got %+v", a.Runways[0])
	}
	rwy := a.Runways[0]
	if rwy.End1.Lat != -0.01124 || rwy.End1.Lon != 0 {
		t.Errorf("expected end 1 threshold past the 09L designator field, got %+v", rwy.End1)
	}
	if rwy.End2.Lat != 0.01124 || rwy.End2.Lon != 0 {
		t.Errorf("expected end 2 threshold past the 27R designator field, got %+v", rwy.End2)
	}
}

func TestParsePavementAndFeatureNodes(t *testing.T) {
	errs := &util.ErrorLogger{}
	airports, err := Parse(strings.NewReader(sample), errs)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	a := airports[0]
	if len(a.Pavement) != 1 || len(a.Pavement[0].Nodes) != 3 {
		t.Fatalf("expected 1 pavement block with 3 nodes, got %+v", a.Pavement)
	}
	if !a.Pavement[0].Nodes[2].Close {
		t.Error("expected the third pavement node to carry the Close flag")
	}
	if len(a.Features) != 1 || len(a.Features[0].Nodes) != 2 {
		t.Fatalf("expected 1 linear feature with 2 nodes, got %+v", a.Features)
	}
	if !a.Features[0].Nodes[1].Term {
		t.Error("expected the last feature node to carry the Term flag")
	}
}

func TestParseAccumulatesFormatErrorsWithoutAborting(t *testing.T) {
	bad := "1  100 0 0 BAD Bad Airport\n100 notanumber 1 oops\n99\n"
	errs := &util.ErrorLogger{}
	airports, err := Parse(strings.NewReader(bad), errs)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !errs.HaveErrors() {
		t.Error("expected a format error to be recorded for the malformed runway record")
	}
	if len(airports) != 1 {
		t.Errorf("expected the airport header to still be parsed, got %d airports", len(airports))
	}
}

func TestParseHelipadSkipsDesignatorAndReadsOrientation(t *testing.T) {
	helipad := "1  100 0 0 HELI Heliport\n102 H1 45.00000 -0.00100 90.00000 40 20 C\n99\n"
	errs := &util.ErrorLogger{}
	airports, err := Parse(strings.NewReader(helipad), errs)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if errs.HaveErrors() {
		t.Fatalf("unexpected format errors: %v", errs.String())
	}
	if len(airports) != 1 || len(airports[0].Runways) != 1 {
		t.Fatalf("expected 1 airport with 1 helipad, got %+v", airports)
	}
	pad := airports[0].Runways[0]
	if pad.TypeFlag != "H" {
		t.Errorf("expected helipad TypeFlag H, got %q", pad.TypeFlag)
	}
	if pad.WidthM != 20 {
		t.Errorf("expected width 20 past the orientation field, got %v", pad.WidthM)
	}
	if pad.Surface != 'C' {
		t.Errorf("expected surface C past the length/width fields, got %q", pad.Surface)
	}
	if pad.LengthM() < 39 || pad.LengthM() > 41 {
		t.Errorf("expected the 40m helipad length to survive the orientation offset, got %v", pad.LengthM())
	}
}

func TestParseStopsAtEOFRecord(t *testing.T) {
	withTrailer := sample + "1  100 0 0 IGNORED Should not be parsed\n99\n"
	errs := &util.ErrorLogger{}
	airports, err := Parse(strings.NewReader(withTrailer), errs)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(airports) != 1 {
		t.Errorf("expected parsing to stop at the first EOF record, got %d airports", len(airports))
	}
}
