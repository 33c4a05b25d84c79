// Package chopper is the tile splitter: it cuts a "hole" or "clearing"
// polygon from one airport build along the fixed bucket grid and
// accumulates the pieces per bucket, to be flushed to the AirportArea
// tree once every airport in the run has finished.
package chopper

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/terragear-go/genapts/pkg/clip"
	"github.com/terragear-go/genapts/pkg/counter"
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/log"
	"github.com/terragear-go/genapts/pkg/polygon"
	"github.com/terragear-go/genapts/pkg/util"
)

// Kind distinguishes the two polygon roles handed to the splitter: a
// hole, where terrain must be removed under the airport mesh, and a
// clearing, where terrain may be flattened toward the airport.
type Kind string

const (
	Hole     Kind = "hole"
	Clearing Kind = "clearing"
)

func (k Kind) ext() string {
	return string(k)
}

// entry is one accumulated piece: the clipped polygon. Flush allocates
// the output file's id from the shared counter when it writes the piece.
type entry struct {
	poly polygon.Polygon
}

// Chopper accumulates per-bucket polygon lists behind a single mutex
// guarding per-bucket appends. Multiple airport workers call Add
// concurrently; Flush runs once, after every worker has joined.
type Chopper struct {
	mu      util.LoggingMutex
	outDir  string
	entries map[int64]map[Kind][]entry
}

// New returns a Chopper that will write its flushed output tree under
// outDir (the builder's --work/AirportArea root).
func New(outDir string) *Chopper {
	return &Chopper{outDir: outDir, entries: make(map[int64]map[Kind][]entry)}
}

// Add clips p against every bucket cell its bounding box touches and
// appends each non-empty clipped piece to that cell's per-kind list.
func (c *Chopper) Add(p polygon.Polygon, kind Kind, lg *log.Logger) {
	bbox := geo.RectFromPoints(p.AllPoints())
	cells := polygon.CellsCovering(bbox)

	for _, cell := range cells {
		cellPoly := polygon.Polygon{Contours: []polygon.Contour{rectContour(cell.Rect())}}
		clipped := clip.Intersection(p, cellPoly)
		if clipped.Empty() {
			continue
		}

		c.mu.Lock(lg)
		if c.entries[cell.ID()] == nil {
			c.entries[cell.ID()] = make(map[Kind][]entry)
		}
		c.entries[cell.ID()][kind] = append(c.entries[cell.ID()][kind], entry{poly: clipped})
		c.mu.Unlock(lg)
	}
}

func rectContour(r geo.Rect) polygon.Contour {
	return polygon.Contour{Points: []geo.Point{
		{Lon: r.MinLon, Lat: r.MinLat},
		{Lon: r.MaxLon, Lat: r.MinLat},
		{Lon: r.MaxLon, Lat: r.MaxLat},
		{Lon: r.MinLon, Lat: r.MaxLat},
	}}
}

// Flush allocates a fresh id for every accumulated polygon from cnt and
// writes each bucket's per-kind polygon list to
// <outDir>/AirportArea/<bucket path>/<id>.<kind>, zstd-compressed. It
// runs once, after every airport worker has joined -- no lock is taken,
// since nothing else touches the map once callers stop calling Add.
func (c *Chopper) Flush(cnt *counter.Service, lg *log.Logger) error {
	for id, byKind := range c.entries {
		bucket := polygon.BucketFromID(id)
		dir := filepath.Join(c.outDir, "AirportArea", bucket.Path())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("chopper: creating %s: %w", dir, err)
		}

		for kind, list := range byKind {
			for _, e := range list {
				polyID := cnt.Next()
				path := filepath.Join(dir, fmt.Sprintf("%d.%s", polyID, kind.ext()))
				if err := writePolygon(path, e.poly); err != nil {
					return err
				}
			}
		}
	}
	if lg != nil {
		lg.Infof("chopper: flushed %d buckets", len(c.entries))
	}
	return nil
}

// writePolygon serializes p as a simple text contour listing, zstd-
// compressed, using the same polygon encoding the rest of the scenery
// pipeline shares, reduced to the one shape it actually needs to carry
// here: an ordered list of (lon, lat) rings.
func writePolygon(path string, p polygon.Polygon) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("chopper: creating %s: %w", path, err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("chopper: compressing %s: %w", path, err)
	}
	defer zw.Close()

	w := bufio.NewWriter(zw)
	fmt.Fprintf(w, "contours %d\n", len(p.Contours))
	for _, c := range p.Contours {
		fmt.Fprintf(w, "ring %d hole=%v\n", len(c.Points), c.Hole)
		for _, pt := range c.Points {
			fmt.Fprintf(w, "%.9f %.9f\n", pt.Lon, pt.Lat)
		}
	}
	return w.Flush()
}
