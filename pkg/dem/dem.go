// Package dem is the stacked-raster elevation source pkg/surface builds
// its terrain fit from. It is an external collaborator: the real
// production system reads tiled GeoTIFF/DTED rasters off disk, but it
// still needs a concrete, dependency-backed implementation for
// pkg/surface to call.
package dem

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/tiff"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/terragear-go/genapts/pkg/geo"
)

// Source names one raster DEM file on disk, its geographic coverage,
// and its priority relative to other sources (lower Priority wins when
// sources overlap).
type Source struct {
	Path     string
	Bounds   geo.Rect
	Priority int
}

// raster is a decoded elevation grid: row-major, origin at the
// northwest corner, values in meters.
type raster struct {
	bounds        geo.Rect
	width, height int
	data          []float32
}

func (r *raster) at(x, y int) float32 {
	if x < 0 {
		x = 0
	}
	if x >= r.width {
		x = r.width - 1
	}
	if y < 0 {
		y = 0
	}
	if y >= r.height {
		y = r.height - 1
	}
	return r.data[y*r.width+x]
}

// sample bilinearly interpolates the elevation at (lon, lat). The
// caller is responsible for having already checked r.bounds.Contains.
func (r *raster) sample(lon, lat float64) float64 {
	fx := (lon - r.bounds.MinLon) / (r.bounds.MaxLon - r.bounds.MinLon) * float64(r.width-1)
	// Raster rows run north-to-south; lat increases northward.
	fy := (r.bounds.MaxLat - lat) / (r.bounds.MaxLat - r.bounds.MinLat) * float64(r.height-1)

	x0, y0 := int(fx), int(fy)
	x1, y1 := x0+1, y0+1
	tx, ty := fx-float64(x0), fy-float64(y0)

	v00, v10 := float64(r.at(x0, y0)), float64(r.at(x1, y0))
	v01, v11 := float64(r.at(x0, y1)), float64(r.at(x1, y1))

	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty
}

// loadRaster decodes a TIFF elevation raster from path. Elevations in
// meters come from the pixel values with an offset removed: a 16-bit
// gray image's value minus 32768, or for any other image the high byte
// of the red channel minus 128. The source's
// geographic bounds are supplied out-of-band by Source.Bounds rather
// than parsed from TIFF geo-tags, since golang.org/x/image/tiff decodes
// pixel data only.
func loadRaster(src Source) (*raster, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return nil, fmt.Errorf("dem: open %s: %w", src.Path, err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("dem: decode %s: %w", src.Path, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, w*h)
	gray, isGray16 := img.(*image.Gray16)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float32
			if isGray16 {
				v = float32(gray.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) - 32768
			} else {
				r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				v = float32(r>>8) - 128
			}
			data[y*w+x] = v
		}
	}
	return &raster{bounds: src.Bounds, width: w, height: h, data: data}, nil
}

// Stack samples a set of DEM sources in priority order, caching
// decoded rasters so a source shared by multiple airports in one run
// is only decoded once.
type Stack struct {
	sources []Source
	cache   *lru.Cache[string, *raster]
}

// NewStack returns a Stack over sources, sorted so the lowest-Priority
// (highest-precedence) source is tried first, backed by an LRU cache
// of cacheSize decoded rasters.
func NewStack(sources []Source, cacheSize int) (*Stack, error) {
	ordered := append([]Source(nil), sources...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].Priority < ordered[j-1].Priority; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	cache, err := lru.New[string, *raster](max(cacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("dem: %w", err)
	}
	return &Stack{sources: ordered, cache: cache}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (s *Stack) raster(src Source) (*raster, error) {
	if r, ok := s.cache.Get(src.Path); ok {
		return r, nil
	}
	r, err := loadRaster(src)
	if err != nil {
		return nil, err
	}
	s.cache.Add(src.Path, r)
	return r, nil
}

// SampleAt returns the elevation at (lon, lat) from the highest-
// priority source whose bounds contain the point, considering only the
// sources at index fromIdx onward. It reports which source index answered, or
// ok=false if no remaining source covers the point.
func (s *Stack) SampleAt(lon, lat float64, fromIdx int) (elev float64, srcIdx int, ok bool, err error) {
	for i := fromIdx; i < len(s.sources); i++ {
		src := s.sources[i]
		if !src.Bounds.Contains(geo.Point{Lon: lon, Lat: lat}) {
			continue
		}
		r, rerr := s.raster(src)
		if rerr != nil {
			return 0, 0, false, rerr
		}
		return r.sample(lon, lat), i, true, nil
	}
	return 0, 0, false, nil
}

// Len returns the number of sources in priority order.
func (s *Stack) Len() int { return len(s.sources) }
