// Command genapts builds airport scenery objects from an authoritative
// apt.dat-style airport description file: one binary scenery object
// and one set of hole/clearing polygons per airport, bucketed onto the
// fixed tiling grid under --work.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/terragear-go/genapts/pkg/airport"
	"github.com/terragear-go/genapts/pkg/apt850"
	"github.com/terragear-go/genapts/pkg/chopper"
	"github.com/terragear-go/genapts/pkg/config"
	"github.com/terragear-go/genapts/pkg/counter"
	"github.com/terragear-go/genapts/pkg/dem"
	"github.com/terragear-go/genapts/pkg/geo"
	applog "github.com/terragear-go/genapts/pkg/log"
	"github.com/terragear-go/genapts/pkg/util"
)

// nWorkers caps the one-worker-per-airport coarse parallelism to
// something sane for a big input file.
const nWorkers = 16

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "genapts: %v\n", err)
		os.Exit(1)
	}

	lg := applog.New(util.Select(cfg.Verbose, "debug", "info"), cfg.Work)

	if err := run(cfg, lg); err != nil {
		lg.Errorf("genapts: fatal: %v", err)
		fmt.Fprintf(os.Stderr, "genapts: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, lg *applog.Logger) error {
	f, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.Input, err)
	}
	defer f.Close()

	parseErrs := &util.ErrorLogger{}
	airports, err := apt850.Parse(f, parseErrs)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", cfg.Input, err)
	}
	if parseErrs.HaveErrors() {
		parseErrs.PrintErrors(lg)
	}

	airports, numSkipped := filterAirports(airports, cfg)
	if len(airports) == 0 {
		lg.Warnf("genapts: no airports selected from %s", cfg.Input)
		return nil
	}

	sources, err := loadDEMSources(cfg.DEMPaths)
	if err != nil {
		return fmt.Errorf("loading DEM sources: %w", err)
	}

	cnt, err := counter.Open(filepath.Join(cfg.Work, "next-poly-id"))
	if err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "counter", Err: err}
	}

	chop := chopper.New(cfg.Work)
	builder := &airport.Builder{
		DEMSources: sources,
		MaxSlope:   cfg.MaxSlope,
		Nudge:      cfg.Nudge,
		Chopper:    chop,
		Logger:     lg,
	}

	var succeeded, skipped, failed int64
	var mu sync.Mutex
	var failures []string

	eg := errgroup.Group{}
	sem := make(chan struct{}, nWorkers)
	for _, a := range airports {
		a := a
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()

			err := builder.Build(a, cfg.Work)
			if err == nil {
				atomic.AddInt64(&succeeded, 1)
				lg.Infof("airport %s: built", a.ID)
				return nil
			}

			var be *util.BuildError
			if asBuildError(err, &be) {
				switch be.Kind {
				case util.ErrInputFormat, util.ErrGeometricDegeneracy, util.ErrIO:
					atomic.AddInt64(&failed, 1)
					lg.Warnf("airport %s: %s step failed: %v", a.ID, be.Kind, be.Err)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", a.ID, err))
					mu.Unlock()
					return nil
				case util.ErrInvariantViolation:
					lg.Errorf("airport %s: invariant violation, aborting airport: %v", a.ID, be.Err)
					atomic.AddInt64(&failed, 1)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: %v", a.ID, err))
					mu.Unlock()
					return nil
				}
			}

			// An error that doesn't classify as a BuildError at all is
			// treated as a shared-service failure and escalated to the
			// top level instead of just failing this one airport.
			return fmt.Errorf("airport %s: %w", a.ID, err)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := chop.Flush(cnt, lg); err != nil {
		return fmt.Errorf("flushing tile splitter: %w", err)
	}
	if err := cnt.Close(); err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "counter", Err: err}
	}

	skipped = int64(numSkipped)
	lg.Infof("genapts: %d succeeded, %d skipped, %d failed", succeeded, skipped, failed)
	fmt.Printf("genapts: %d airports built, %d skipped, %d failed\n", succeeded, skipped, failed)
	for _, msg := range failures {
		fmt.Printf("  FAILED %s\n", msg)
	}
	return nil
}

func asBuildError(err error, target **util.BuildError) bool {
	be, ok := err.(*util.BuildError)
	if ok {
		*target = be
	}
	return ok
}

// filterAirports applies --airport, --start-id, and the bounding box
// filter, in that order, matching config.Config's documented flags,
// and reports how many airports the filters dropped.
func filterAirports(airports []apt850.Airport, cfg *config.Config) ([]apt850.Airport, int) {
	if cfg.Airport != "" {
		for _, a := range airports {
			if a.ID == cfg.Airport {
				return []apt850.Airport{a}, len(airports) - 1
			}
		}
		return nil, len(airports)
	}

	started := cfg.StartID == ""
	var out []apt850.Airport
	var skipped int
	for _, a := range airports {
		if !started {
			if a.ID == cfg.StartID {
				started = true
			} else {
				skipped++
				continue
			}
		}
		if cfg.HaveBoundingBox && !inBoundingBox(a, cfg) {
			skipped++
			continue
		}
		out = append(out, a)
	}
	return out, skipped
}

func inBoundingBox(a apt850.Airport, cfg *config.Config) bool {
	box := geo.Rect{MinLon: cfg.MinLon, MaxLon: cfg.MaxLon, MinLat: cfg.MinLat, MaxLat: cfg.MaxLat}
	for _, r := range a.Runways {
		if box.Contains(r.End1) || box.Contains(r.End2) {
			return true
		}
	}
	for _, blk := range a.Pavement {
		for _, n := range blk.Nodes {
			if box.Contains(n.Point) {
				return true
			}
		}
	}
	return false
}

// loadDEMSources walks each --dem-path directory for "<name>.tif"
// rasters and their "<name>.bounds" sidecar (four whitespace-separated
// floats: min-lon max-lon min-lat max-lat), since the plain TIFF
// decoder pkg/dem builds on carries no geo-referencing tags. Priority
// is assigned by --dem-path order: earlier directories win ties, since
// the highest-priority source is just the first one that covers a cell
// within --max-slope tolerance.
func loadDEMSources(paths []string) ([]dem.Source, error) {
	var sources []dem.Source
	for priority, dir := range paths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("dem-path %s: %w", dir, err)
		}
		names := util.MapSlice(util.FilterSlice(entries, func(e os.DirEntry) bool {
			return !e.IsDir() && strings.HasSuffix(e.Name(), ".tif")
		}), func(e os.DirEntry) string { return e.Name() })
		sort.Strings(names)
		for _, name := range names {
			base := strings.TrimSuffix(name, ".tif")
			bounds, err := readBoundsSidecar(filepath.Join(dir, base+".bounds"))
			if err != nil {
				return nil, fmt.Errorf("dem-path %s: %s: %w", dir, name, err)
			}
			sources = append(sources, dem.Source{
				Path:     filepath.Join(dir, name),
				Bounds:   bounds,
				Priority: priority,
			})
		}
	}
	return sources, nil
}

func readBoundsSidecar(path string) (geo.Rect, error) {
	f, err := os.Open(path)
	if err != nil {
		return geo.Rect{}, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Scan()
	fields := strings.Fields(sc.Text())
	if len(fields) != 4 {
		return geo.Rect{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}
	vals := make([]float64, 4)
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return geo.Rect{}, fmt.Errorf("bad value %q: %w", field, err)
		}
		vals[i] = v
	}
	return geo.Rect{MinLon: vals[0], MaxLon: vals[1], MinLat: vals[2], MaxLat: vals[3]}, nil
}
