package polygon

import (
	"math"

	"github.com/terragear-go/genapts/pkg/geo"
)

// NodeTable is a unique-insert set of points at a fixed epsilon
// tolerance: inserting a point within geo.EqEpsilonDeg of one already
// present returns the existing point's index instead of adding a
// duplicate. It is what the tessellator and the airport builder's
// shared vertex table use to make sure two contours that share a boundary edge
// also share the same vertex indices there -- the thing that keeps
// adjacent pavement pieces from cracking apart at the seam.
//
// The original C++ pipeline backs this with a CGAL kd-tree built once
// over a batch of points. That doesn't fit here: nodes are discovered
// and inserted one at a time as contours are walked, so NodeTable uses
// a coordinate hash grid instead -- cell size equal to the epsilon, so
// a point's few neighboring cells are the only ones that can possibly
// hold a match.
type NodeTable struct {
	points []geo.Point
	cells  map[[2]int64][]int
	eps    float64
}

// NewNodeTable returns an empty NodeTable using geo.EqEpsilonDeg as its
// matching tolerance.
func NewNodeTable() *NodeTable {
	return &NodeTable{cells: make(map[[2]int64][]int), eps: geo.EqEpsilonDeg}
}

func (t *NodeTable) cellOf(p geo.Point) [2]int64 {
	return [2]int64{int64(math.Floor(p.Lon / t.eps)), int64(math.Floor(p.Lat / t.eps))}
}

// Find returns the index of a previously-inserted point within epsilon
// of p, and true, or (-1, false) if none exists.
func (t *NodeTable) Find(p geo.Point) (int, bool) {
	c := t.cellOf(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			key := [2]int64{c[0] + int64(dx), c[1] + int64(dy)}
			for _, idx := range t.cells[key] {
				if t.points[idx].Equal2D(p) {
					return idx, true
				}
			}
		}
	}
	return -1, false
}

// Insert returns the index of p in the table, inserting it if no
// matching point already exists. The elevation of the first-inserted
// occurrence wins.
func (t *NodeTable) Insert(p geo.Point) int {
	if idx, ok := t.Find(p); ok {
		return idx
	}
	idx := len(t.points)
	t.points = append(t.points, p)
	key := t.cellOf(p)
	t.cells[key] = append(t.cells[key], idx)
	return idx
}

// Len returns the number of distinct points held.
func (t *NodeTable) Len() int { return len(t.points) }

// Points returns the table's points in insertion order. The slice
// aliases the table's internal storage and must not be modified.
func (t *NodeTable) Points() []geo.Point { return t.points }

// At returns the point previously assigned index i.
func (t *NodeTable) At(i int) geo.Point { return t.points[i] }
