// Package surface fits a smooth elevation field over an airport's
// footprint from a stack of DEM sources, projecting every mesh vertex
// onto it during the elevation-lift step of the airport builder.
package surface

import (
	"fmt"

	"github.com/terragear-go/genapts/pkg/dem"
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/log"
)

// gridSize is the resolution of the sample grid AptSurface fits over
// its bounds; Query bilinearly interpolates between these samples.
const gridSize = 33

// AptSurface exposes a deterministic, error-free elevation query over
// an airport's (padded) bounding rectangle, built once from a stack of
// DEM sources.
type AptSurface struct {
	bounds  geo.Rect
	samples [gridSize][gridSize]float64
}

// New grid-samples sources over bounds (already extended by the
// caller, typically by 10% on each side), accepting the highest-
// priority source that covers each cell unless doing so would create a
// local gradient against an already-fitted neighbor exceeding maxSlope
// (meters of rise per meter of run), in which case it falls back
// through the priority list for that cell. A cell with no source within
// tolerance keeps the best available sample and logs a warning:
// construction either succeeds deterministically or fails outright --
// Query itself is never left able to error later.
func New(sources []dem.Source, bounds geo.Rect, maxSlope float64, lg *log.Logger) (*AptSurface, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("surface: no DEM sources supplied")
	}
	stack, err := dem.NewStack(sources, 64)
	if err != nil {
		return nil, err
	}

	s := &AptSurface{bounds: bounds}
	cellWidthM := geo.DistanceM(
		geo.Point{Lon: bounds.MinLon, Lat: bounds.Center().Lat},
		geo.Point{Lon: bounds.MaxLon, Lat: bounds.Center().Lat},
	) / float64(gridSize-1)
	cellHeightM := geo.DistanceM(
		geo.Point{Lon: bounds.Center().Lon, Lat: bounds.MinLat},
		geo.Point{Lon: bounds.Center().Lon, Lat: bounds.MaxLat},
	) / float64(gridSize-1)

	for row := 0; row < gridSize; row++ {
		lat := bounds.MinLat + (bounds.MaxLat-bounds.MinLat)*float64(row)/float64(gridSize-1)
		for col := 0; col < gridSize; col++ {
			lon := bounds.MinLon + (bounds.MaxLon-bounds.MinLon)*float64(col)/float64(gridSize-1)

			elev, err := s.fitCell(stack, lon, lat, row, col, cellWidthM, cellHeightM, maxSlope, lg)
			if err != nil {
				return nil, err
			}
			s.samples[row][col] = elev
		}
	}
	return s, nil
}

// fitCell samples (lon, lat) from the highest-priority DEM source,
// falling back to lower-priority sources when the resulting sample
// would exceed maxSlope against the row/col-1 neighbor already fitted.
func (s *AptSurface) fitCell(stack *dem.Stack, lon, lat float64, row, col int, cellWidthM, cellHeightM, maxSlope float64, lg *log.Logger) (float64, error) {
	var best float64
	haveBest := false

	for idx := 0; idx < stack.Len(); idx++ {
		elev, _, ok, err := stack.SampleAt(lon, lat, idx)
		if err != nil {
			return 0, err
		}
		if !ok {
			break // sources are priority-sorted; no point probing the tail once one reports no further coverage from here.
		}
		if !haveBest {
			best, haveBest = elev, true
		}
		if s.slopeOK(elev, row, col, cellWidthM, cellHeightM, maxSlope) {
			return elev, nil
		}
	}
	if !haveBest {
		return 0, nil // no source covers this cell; hold flat at sea level rather than fail construction.
	}
	if lg != nil {
		lg.Warnf("surface: cell (%d,%d) exceeds max-slope %.3f against every available DEM source; keeping nearest sample", row, col, maxSlope)
	}
	return best, nil
}

func (s *AptSurface) slopeOK(elev float64, row, col int, cellWidthM, cellHeightM, maxSlope float64) bool {
	if col > 0 {
		d := elev - s.samples[row][col-1]
		if cellWidthM > 0 && abs(d)/cellWidthM > maxSlope {
			return false
		}
	}
	if row > 0 {
		d := elev - s.samples[row-1][col]
		if cellHeightM > 0 && abs(d)/cellHeightM > maxSlope {
			return false
		}
	}
	return true
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Query returns the bilinearly-interpolated elevation at (lon, lat).
// Points outside the fitted bounds are clamped to the nearest edge.
// Query never errors -- construction is where fallibility lives.
func (s *AptSurface) Query(lon, lat float64) (float64, error) {
	fx := (lon - s.bounds.MinLon) / (s.bounds.MaxLon - s.bounds.MinLon) * float64(gridSize-1)
	fy := (lat - s.bounds.MinLat) / (s.bounds.MaxLat - s.bounds.MinLat) * float64(gridSize-1)
	fx = clamp(fx, 0, gridSize-1)
	fy = clamp(fy, 0, gridSize-1)

	x0, y0 := int(fx), int(fy)
	x1, y1 := minInt(x0+1, gridSize-1), minInt(y0+1, gridSize-1)
	tx, ty := fx-float64(x0), fy-float64(y0)

	v00 := s.samples[y0][x0]
	v10 := s.samples[y0][x1]
	v01 := s.samples[y1][x0]
	v11 := s.samples[y1][x1]

	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
