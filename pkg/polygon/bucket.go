package polygon

import (
	"fmt"
	"math"

	"github.com/terragear-go/genapts/pkg/geo"
)

// Bucket identifies one cell of the fixed scenery tiling grid that the
// tile splitter (pkg/chopper) cuts along. Cell width in longitude
// varies with latitude -- bands get wider near the poles, where a
// degree of longitude covers less ground -- while latitude bands are a
// constant one degree tall, each subdivided into an 8x8 grid of
// sub-tiles. The (lonIndex, latIndex, x, y) tuple is packed into a
// single 64-bit id; the packing is fixed so every caller that computes
// a Bucket for the same (lon, lat) gets the same id and path.
type Bucket struct {
	LonIndex int // -180..179, degree of the cell's west edge
	LatIndex int // -90..89, degree of the cell's south edge
	X, Y     int // 0..7 sub-tile within the degree cell
}

// bucketWidth returns the longitude width in degrees of the band
// containing latitude lat, widening step-wise toward the poles so that
// a band's physical east-west extent stays roughly comparable across
// latitudes.
func bucketWidth(lat float64) float64 {
	a := math.Abs(lat)
	switch {
	case a < 22:
		return 1
	case a < 62:
		return 2
	case a < 76:
		return 4
	case a < 83:
		return 8
	case a < 86:
		return 12
	case a < 88:
		return 24
	case a < 89:
		return 36
	default:
		return 90
	}
}

// NewBucket computes the Bucket containing the geodetic point (lon,
// lat).
func NewBucket(lon, lat float64) Bucket {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	lat = math.Max(-90, math.Min(90-1e-9, lat))

	latIndex := int(math.Floor(lat))
	width := bucketWidth(lat)
	lonIndex := int(math.Floor(lon/width) * width)

	lonBase := float64(lonIndex)
	latBase := float64(latIndex)
	x := int(math.Floor((lon - lonBase) / width * 8))
	y := int(math.Floor((lat - latBase) * 8))
	if x > 7 {
		x = 7
	}
	if y > 7 {
		y = 7
	}
	return Bucket{LonIndex: lonIndex, LatIndex: latIndex, X: x, Y: y}
}

// ID packs the bucket coordinates into a single 64-bit integer. The
// layout -- 9 bits of signed longitude index, 8 bits of signed
// latitude index, 3 bits each of x/y sub-tile -- covers the full
// (-180..179, -90..89, 0..7, 0..7) domain with room to spare; it is
// this package's only encoding of a Bucket, so every caller (pkg/
// chopper, the AirportObj/AirportArea path builders) stays consistent
// by construction.
func (b Bucket) ID() int64 {
	lonBits := int64(b.LonIndex+180) & 0x1ff
	latBits := int64(b.LatIndex+90) & 0xff
	return (lonBits << 23) | (latBits << 15) | (int64(b.X&7) << 3) | int64(b.Y&7)
}

// BucketFromID reconstructs a Bucket from an id produced by ID.
func BucketFromID(id int64) Bucket {
	lonBits := (id >> 23) & 0x1ff
	latBits := (id >> 15) & 0xff
	x := (id >> 3) & 7
	y := id & 7
	return Bucket{
		LonIndex: int(lonBits) - 180,
		LatIndex: int(latBits) - 90,
		X:        int(x),
		Y:        int(y),
	}
}

// lonBand and latBand format the directory-name convention shared by
// both path helpers: e/w + zero-padded degrees, n/s + zero-padded
// degrees.
func lonBand(lonIndex int) string {
	if lonIndex < 0 {
		return fmt.Sprintf("w%03d", -lonIndex)
	}
	return fmt.Sprintf("e%03d", lonIndex)
}

func latBand(latIndex int) string {
	if latIndex < 0 {
		return fmt.Sprintf("s%02d", -latIndex)
	}
	return fmt.Sprintf("n%02d", latIndex)
}

// tileName is the leaf directory for this exact one-degree cell
// (sub-tile granularity lives only in the packed ID, not the path).
func (b Bucket) tileName() string {
	return fmt.Sprintf("%s%s", lonBand(b.LonIndex), latBand(b.LatIndex))
}

// Path returns the bucket's directory path component, e.g.
// "w074n40/w074n40", matching the two-level directory-then-tile-name
// convention used by the AirportObj/AirportArea trees.
func (b Bucket) Path() string {
	t := b.tileName()
	return t + "/" + t
}

// Center returns the approximate center point (lon, lat) of the degree
// cell (not accounting for x/y sub-tile).
func (b Bucket) Center() (lon, lat float64) {
	width := bucketWidth(float64(b.LatIndex) + 0.5)
	lon = float64(b.LonIndex) + width/2
	lat = float64(b.LatIndex) + 0.5
	return lon, lat
}

// Rect returns the geographic extent of the whole one-degree cell this
// bucket belongs to -- the granularity the tile splitter clips against
// (sub-tile x/y only ever distinguishes output files within one cell's
// path, never the clip rectangle).
func (b Bucket) Rect() geo.Rect {
	width := bucketWidth(float64(b.LatIndex) + 0.5)
	minLon := float64(b.LonIndex)
	minLat := float64(b.LatIndex)
	return geo.Rect{MinLon: minLon, MaxLon: minLon + width, MinLat: minLat, MaxLat: minLat + 1}
}

// CellsCovering enumerates, at one-degree-cell granularity, every
// Bucket whose Rect intersects bbox -- the set the tile splitter clips
// a hole/clearing polygon against.
func CellsCovering(bbox geo.Rect) []Bucket {
	var out []Bucket
	seen := make(map[[2]int]bool)
	latLo := math.Floor(bbox.MinLat)
	for lat := latLo; lat < bbox.MaxLat; lat++ {
		width := bucketWidth(lat + 0.5)
		lonLo := math.Floor((bbox.MinLon + 180) / width) * width
		for lon := lonLo - 180; lon < bbox.MaxLon; lon += width {
			b := NewBucket(lon+width/2, lat+0.5)
			key := [2]int{b.LonIndex, b.LatIndex}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Bucket{LonIndex: b.LonIndex, LatIndex: b.LatIndex})
		}
	}
	return out
}
