package airport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/terragear-go/genapts/pkg/apt850"
	"github.com/terragear-go/genapts/pkg/chopper"
	"github.com/terragear-go/genapts/pkg/dem"
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/polygon"
	"github.com/terragear-go/genapts/pkg/runway"
	"github.com/terragear-go/genapts/pkg/sceneobj"
	"github.com/terragear-go/genapts/pkg/util"
)

// noCoverageSources drives surface.New into its deterministic
// flat-elevation fallback without touching the filesystem: a Bounds
// rectangle that never contains the query point means loadRaster is
// never reached, so the nonexistent Path is never opened.
func noCoverageSources() []dem.Source {
	return []dem.Source{
		{Path: "/nonexistent/dem.tif", Bounds: geo.Rect{MinLon: 100, MaxLon: 101, MinLat: 10, MaxLat: 11}, Priority: 0},
	}
}

func singleRunwayAirport() apt850.Airport {
	return apt850.Airport{
		ID:   "KXYZ",
		Name: "Test Field",
		Kind: 1,
		Runways: []runway.Record{
			{
				End1:      geo.Point{Lon: -122.0000, Lat: 37.0000},
				End2:      geo.Point{Lon: -122.0000, Lat: 37.0180},
				WidthM:    45,
				Surface:   'A',
				TypeFlag:  "P",
			},
		},
	}
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{
		DEMSources: noCoverageSources(),
		MaxSlope:   0.2,
		Nudge:      10,
		Chopper:    chopper.New(t.TempDir()),
	}
}

func TestBuildPrecisionRunwayProducesPavementTriangles(t *testing.T) {
	outDir := t.TempDir()
	b := testBuilder(t)
	if err := b.Build(singleRunwayAirport(), outDir); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	path := outDir + "/AirportObj"
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected AirportObj directory to be created: %v", err)
	}

	// The airport center is the mean of the runway ends.
	btg := filepath.Join(path, polygon.NewBucket(-122.0, 37.009).Path(), "KXYZ.btg")
	f, err := os.Open(btg)
	if err != nil {
		t.Fatalf("expected scenery object %s: %v", btg, err)
	}
	defer f.Close()
	obj, err := sceneobj.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", btg, err)
	}
	var pavementTris int
	for _, g := range obj.Groups {
		if g.Kind == sceneobj.KindTriangles && g.Material == "pa_runway" {
			pavementTris += len(g.Indices) / 3
		}
	}
	if pavementTris == 0 {
		t.Error("expected at least one pa_runway pavement triangle")
	}
}

func TestBuildPavementBlockAirport(t *testing.T) {
	outDir := t.TempDir()
	b := testBuilder(t)
	a := apt850.Airport{
		ID:   "KTWY",
		Kind: 1,
		Pavement: []apt850.PavementBlock{
			{
				Material: "asphalt",
				Nodes: []apt850.PavementNode{
					{Point: geo.Point{Lon: -122.0000, Lat: 37.0000}},
					{Point: geo.Point{Lon: -122.0010, Lat: 37.0000}},
					{Point: geo.Point{Lon: -122.0010, Lat: 37.0010}, Close: true},
				},
			},
		},
	}

	if err := b.Build(a, outDir); err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
}

func TestBuildRejectsAirportWithNoGeometry(t *testing.T) {
	outDir := t.TempDir()
	b := testBuilder(t)
	err := b.Build(apt850.Airport{ID: "EMPTY"}, outDir)
	if err == nil {
		t.Fatal("expected an error for an airport with no runway or pavement geometry")
	}
	var be *util.BuildError
	if !asBuildError(err, &be) {
		t.Fatalf("expected a *util.BuildError, got %T: %v", err, err)
	}
	if be.Kind != util.ErrInputFormat {
		t.Errorf("expected ErrInputFormat, got %v", be.Kind)
	}
}

func asBuildError(err error, target **util.BuildError) bool {
	be, ok := err.(*util.BuildError)
	if ok {
		*target = be
	}
	return ok
}
