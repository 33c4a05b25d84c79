// Package airport orchestrates the fourteen steps that turn one parsed
// airport description into a bucketed binary scenery object plus the
// hole/clearing polygons the tile splitter folds into surrounding
// terrain: ordered pavement passes, lighting, base/clearing
// accumulation, topology repair, tessellation, elevation lift, skirt
// construction, and final encode.
package airport

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/terragear-go/genapts/pkg/apt850"
	"github.com/terragear-go/genapts/pkg/chopper"
	"github.com/terragear-go/genapts/pkg/clip"
	"github.com/terragear-go/genapts/pkg/dem"
	"github.com/terragear-go/genapts/pkg/geo"
	"github.com/terragear-go/genapts/pkg/lighting"
	"github.com/terragear-go/genapts/pkg/log"
	"github.com/terragear-go/genapts/pkg/polygon"
	"github.com/terragear-go/genapts/pkg/runway"
	"github.com/terragear-go/genapts/pkg/sceneobj"
	"github.com/terragear-go/genapts/pkg/surface"
	"github.com/terragear-go/genapts/pkg/tessellate"
	"github.com/terragear-go/genapts/pkg/topology"
	"github.com/terragear-go/genapts/pkg/util"
)

// skirtDropM is the vertical extent of the seam-hiding skirt panel: a
// fixed 20m drop below the divided-base boundary.
const skirtDropM = 20.0

// baseMaterial tags the apron/clearing mesh that fills divided_base
// outside any pavement polygon -- the renderer's terrain-replacement
// material, distinct from any of runway.Record's pavement tags.
const baseMaterial = "terrain_base"

// skirtMaterial is the material every skirt panel carries.
const skirtMaterial = "Grass"

// Builder assembles one airport's mesh and hands its tile-splitter
// contributions to a shared Chopper. A Builder is reused across many
// airports in a run; its only mutable shared state is reached through
// Chopper, which already serializes concurrent access itself.
type Builder struct {
	DEMSources []dem.Source
	MaxSlope   float64
	Nudge      int
	Chopper    *chopper.Chopper
	Logger     *log.Logger
}

// pavementUnit is one runway/taxiway/pavement-block's contribution to
// the four ordered passes: its marking-layer polygons (already
// materialed), and the base/safe_base footprints that unconditionally
// join the airport base and clearing regardless of pavement clipping.
type pavementUnit struct {
	pass     int
	area     float64
	pavement []polygon.Polygon
	base     polygon.Polygon
	safeBase polygon.Polygon
}

// passForRecord assigns a runway/taxiway record to one of the four
// ordered pavement passes: precision first, then non-precision/visual,
// then every other runway type, taxiways last.
func passForRecord(r runway.Record) int {
	if r.IsTaxiway {
		return 4
	}
	switch r.TypeFlag {
	case "P":
		return 1
	case "R", "V":
		return 2
	default:
		return 3
	}
}

// pavementBlockToPolygon turns a parsed 110/111-116 pavement block into
// a polygon: the first node run (ending at a Close or Term node) is the
// outer contour, any further runs are holes.
func pavementBlockToPolygon(b apt850.PavementBlock) polygon.Polygon {
	var p polygon.Polygon
	p.Material = b.Material

	var cur []geo.Point
	outerSeen := false
	for _, n := range b.Nodes {
		cur = append(cur, n.Point)
		if n.Close || n.Term {
			p.Contours = append(p.Contours, polygon.Contour{Points: cur, Hole: outerSeen})
			cur = nil
			outerSeen = true
		}
	}
	if len(cur) > 0 {
		p.Contours = append(p.Contours, polygon.Contour{Points: cur, Hole: outerSeen})
	}
	return p
}

// expandSafeBase buffers a pavement block's own footprint outward by
// deltaM to stand in for the runway/taxiway safe_base rectangle, since a
// raw apt850 pavement block has no record-level length/width to extend
// directionally. Falls back to the unbuffered polygon if the offset
// degenerates into more than one contour.
func expandSafeBase(p polygon.Polygon, deltaM float64) polygon.Polygon {
	outer := p.Outer()
	if !outer.Valid() {
		return p
	}
	expanded, err := clip.Expand(outer, deltaM)
	if err != nil {
		return p
	}
	return polygon.Polygon{Contours: []polygon.Contour{expanded}}
}

// buildUnits normalizes every runway record and pavement block into
// pavementUnits, ordered pass ascending, and within the taxiway pass
// (4), decreasing area -- ties keep source-traversal order.
func buildUnits(a apt850.Airport) []pavementUnit {
	var units []pavementUnit
	for _, r := range a.Runways {
		layers := runway.Generate(r)
		units = append(units, pavementUnit{
			pass:     passForRecord(r),
			area:     r.Area(),
			pavement: layers.Pavement,
			base:     layers.Base,
			safeBase: layers.SafeBase,
		})
	}
	for _, block := range a.Pavement {
		p := pavementBlockToPolygon(block)
		units = append(units, pavementUnit{
			pass:     4,
			area:     math.Abs(p.Outer().Area()),
			pavement: []polygon.Polygon{p},
			base:     p,
			safeBase: expandSafeBase(p, 40),
		})
	}
	sort.SliceStable(units, func(i, j int) bool {
		if units[i].pass != units[j].pass {
			return units[i].pass < units[j].pass
		}
		if units[i].pass != 4 {
			return false
		}
		return units[i].area > units[j].area
	})
	return units
}

// step2 runs the four ordered pavement passes: each pavement polygon is
// differenced against the running accumulation before being committed
// and unioned in, so an earlier (higher-priority) layer always wins the
// overlap. base/safe_base join the airport base and clearing
// unconditionally, regardless of whether any pavement from that unit
// survived differencing.
func step2(units []pavementUnit) (pavementPolys []polygon.Polygon, accum, aptBase, aptClearing polygon.Polygon) {
	for _, u := range units {
		for _, pav := range u.pavement {
			diffed := clip.Difference(pav, accum)
			if diffed.Empty() {
				continue
			}
			diffed.Material = pav.Material
			diffed.Texture = pav.Texture
			pavementPolys = append(pavementPolys, diffed)
			accum = clip.Union(accum, diffed)
		}
		aptBase = clip.Union(aptBase, u.base)
		aptClearing = clip.Union(aptClearing, u.safeBase)
	}
	return pavementPolys, accum, aptBase, aptClearing
}

// step3 emits every runway end's lighting groups; taxiway records are
// skipped.
func step3(a apt850.Airport) []lighting.Group {
	var groups []lighting.Group
	for _, r := range a.Runways {
		if r.IsTaxiway {
			continue
		}
		groups = append(groups, lighting.Generate(r)...)
	}
	return groups
}

// stripHoles drops every hole contour, keeping only the outer
// boundaries.
func stripHoles(p polygon.Polygon) polygon.Polygon {
	out := p
	out.Contours = nil
	for _, c := range p.Contours {
		if !c.Hole {
			out.Contours = append(out.Contours, c)
		}
	}
	return out
}

func step4(aptBase polygon.Polygon) polygon.Polygon {
	stripped := stripHoles(aptBase)
	out := stripped
	out.Contours = make([]polygon.Contour, len(stripped.Contours))
	for i, c := range stripped.Contours {
		out.Contours[i] = topology.SplitLongEdges(c, 200)
	}
	return out
}

func step5(dividedBase, accum polygon.Polygon) polygon.Polygon {
	return clip.Difference(dividedBase, accum)
}

// reduceDegeneracy collapses a contour's self-intersecting and
// straight-through vertices via the spike-removal and short-loop-cycle
// passes.
func reduceDegeneracy(c polygon.Contour) polygon.Contour {
	c = topology.RemoveSpikes(c)
	c = topology.RemoveCycles(c)
	return c
}

func repairOnce(p polygon.Polygon) polygon.Polygon {
	out := p
	out.Contours = make([]polygon.Contour, len(p.Contours))
	for i, c := range p.Contours {
		c = topology.RemoveDups(c)
		c = reduceDegeneracy(c)
		out.Contours[i] = c
	}
	return topology.RemoveTinyContours(out)
}

// step6 repairs every pavement polygon and base_poly in place: a first
// remove_dups/reduce_degeneracy pass, a shared tmp_nodes vertex set
// gathered from the result, a colinear re-insertion pass so foreign
// T-junctions become real shared vertices, then a final sliver sweep
// that tries to reabsorb any resulting slivers into a neighbor.
func step6(polys []polygon.Polygon) []polygon.Polygon {
	repaired := make([]polygon.Polygon, len(polys))
	for i, p := range polys {
		repaired[i] = repairOnce(p)
	}

	var tmpNodes []geo.Point
	for _, p := range repaired {
		tmpNodes = append(tmpNodes, p.AllPoints()...)
	}

	for i, p := range repaired {
		out := p
		out.Contours = make([]polygon.Contour, len(p.Contours))
		for j, c := range p.Contours {
			c = topology.AddColinearNodes(c, tmpNodes)
			c = topology.RemoveDups(c)
			out.Contours[j] = c
		}
		repaired[i] = topology.RemoveTinyContours(out)
	}

	var cleaned []polygon.Polygon
	var slivers []polygon.Contour
	for _, p := range repaired {
		c, s := topology.RemoveSlivers(p)
		cleaned = append(cleaned, c)
		slivers = append(slivers, s...)
	}
	return topology.MergeSlivers(cleaned, slivers, clip.Union)
}

// bucketUV projects a point into the per-bucket geographic-to-atlas
// space used by base triangles: the point's fraction of the way across
// the owning bucket cell's one-degree rectangle.
func bucketUV(bucket polygon.Bucket, p geo.Point) (u, v float64) {
	r := bucket.Rect()
	u = clamp01((p.Lon - r.MinLon) / (r.MaxLon - r.MinLon))
	v = clamp01((p.Lat - r.MinLat) / (r.MaxLat - r.MinLat))
	return u, v
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// airportCenter is the mean of every runway-end and pavement-node
// position -- step 1's "airport center as the mean of runway ends",
// extended to cover airports whose only geometry is pavement blocks.
func airportCenter(a apt850.Airport) geo.Point {
	var sumLon, sumLat float64
	var n int
	for _, r := range a.Runways {
		sumLon += r.End1.Lon + r.End2.Lon
		sumLat += r.End1.Lat + r.End2.Lat
		n += 2
	}
	for _, blk := range a.Pavement {
		for _, node := range blk.Nodes {
			sumLon += node.Point.Lon
			sumLat += node.Point.Lat
			n++
		}
	}
	if n == 0 {
		return geo.Point{}
	}
	return geo.Point{Lon: sumLon / float64(n), Lat: sumLat / float64(n)}
}

// tessellateInto triangulates p, merges its vertices into table (shared
// across every polygon this airport emits, so adjacent pieces share
// indices at their seam), and appends the remapped triangles under
// material in triGroups. uv records each newly-seen vertex's texture
// coordinate the first time it is encountered.
func tessellateInto(table *polygon.NodeTable, uv map[int][2]float64, triGroups map[string][]polygon.Triangle, p polygon.Polygon, material string, uvFunc func(geo.Point) (float64, float64)) {
	if p.Empty() {
		return
	}
	res := tessellate.Tessellate(p, nil)
	localToGlobal := make([]int, len(res.Vertices))
	for i, v := range res.Vertices {
		gi := table.Insert(v)
		localToGlobal[i] = gi
		if _, ok := uv[gi]; !ok {
			u, v2 := uvFunc(v)
			uv[gi] = [2]float64{u, v2}
		}
	}
	for _, tri := range res.Tris {
		triGroups[material] = append(triGroups[material], polygon.Triangle{
			localToGlobal[tri[0]], localToGlobal[tri[1]], localToGlobal[tri[2]],
		})
	}
}

// Build runs the full fourteen-step pipeline for one parsed airport,
// writing its binary scenery object under outDir/AirportObj/<bucket
// path>/<id>.btg and forwarding its hole/clearing polygons to Chopper.
func (b *Builder) Build(a apt850.Airport, outDir string) error {
	lg := b.Logger
	if len(a.Runways) == 0 && len(a.Pavement) == 0 {
		return &util.BuildError{Kind: util.ErrInputFormat, Op: "airport " + a.ID, Err: fmt.Errorf("no runway or pavement geometry")}
	}

	// Step 1: airport center and owning bucket.
	center := airportCenter(a)
	bucket := polygon.NewBucket(center.Lon, center.Lat)

	// Step 2: ordered pavement passes with accumulation differencing.
	units := buildUnits(a)
	pavementPolys, accum, aptBase, aptClearing := step2(units)

	// Step 3: lighting superpolys.
	lightGroups := step3(a)

	// Steps 4-5: divided base and base_poly.
	dividedBase := step4(aptBase)
	basePoly := step5(dividedBase, accum)
	basePoly.Material = baseMaterial

	// Step 6: repair pavement + base_poly together.
	all := append(append([]polygon.Polygon(nil), pavementPolys...), basePoly)
	repaired := step6(all)
	pavementPolys = repaired[:len(repaired)-1]
	basePoly = repaired[len(repaired)-1]

	for _, p := range pavementPolys {
		for _, c := range p.Contours {
			if len(c.Points) > 0 && len(c.Points) < polygon.MinContourSize {
				return &util.BuildError{Kind: util.ErrInvariantViolation, Op: "airport " + a.ID, Err: fmt.Errorf("pavement contour has %d vertices after repair", len(c.Points))}
			}
		}
	}

	// Steps 7-8: tessellate every pavement polygon and base_poly into a
	// shared vertex table, assigning texture coordinates as each
	// polygon's vertices are first encountered.
	table := polygon.NewNodeTable()
	triGroups := make(map[string][]polygon.Triangle)
	uv := make(map[int][2]float64)

	for _, p := range pavementPolys {
		tp := p.Texture
		tessellateInto(table, uv, triGroups, p, p.Material, func(pt geo.Point) (float64, float64) { return tp.UV(pt) })
	}
	tessellateInto(table, uv, triGroups, basePoly, basePoly.Material, func(pt geo.Point) (float64, float64) { return bucketUV(bucket, pt) })

	// divided_base's own boundary must have table indices even where
	// base_poly's differencing clipped that stretch away under pavement
	// -- the skirt in step 11 walks divided_base, not base_poly.
	for _, c := range dividedBase.Contours {
		for _, pt := range c.Points {
			table.Insert(pt)
		}
	}

	// Light points join the same shared vertex space, each carrying its
	// own normal (and a +0.5m elevation offset applied in step 10).
	type lightRef struct {
		material string
		indices  []int
		normals  [][3]float64
	}
	var lightRefs []lightRef
	for _, g := range lightGroups {
		outer := g.Pts.Poly.Outer()
		idxs := make([]int, len(outer.Points))
		normals := make([][3]float64, len(outer.Points))
		for i, pt := range outer.Points {
			idxs[i] = table.Insert(pt)
			if g.Pts.Normals != nil && i < len(g.Pts.Normals.Points) {
				n := g.Pts.Normals.Points[i]
				normals[i] = [3]float64{n.Lon, n.Lat, n.Elev}
			} else {
				normals[i] = [3]float64{0, 0, 1}
			}
		}
		lightRefs = append(lightRefs, lightRef{material: g.Material, indices: idxs, normals: normals})
	}

	// Step 9: fit the terrain surface over the mesh's bounds, extended
	// ±10%.
	bounds := geo.RectFromPoints(table.Points()).Extend(0.10)
	surf, err := surface.New(b.DEMSources, bounds, b.MaxSlope, lg)
	if err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "airport " + a.ID, Err: err}
	}

	// Step 10: lift every vertex's elevation; light points get an
	// additional +0.5m so they sit just above the mesh they're anchored
	// to.
	vertices := util.DuplicateSlice(table.Points())
	for i := range vertices {
		elev, qerr := surf.Query(vertices[i].Lon, vertices[i].Lat)
		if qerr != nil {
			return &util.BuildError{Kind: util.ErrIO, Op: "airport " + a.ID, Err: qerr}
		}
		vertices[i].Elev = elev
	}
	for _, lr := range lightRefs {
		for _, idx := range lr.indices {
			vertices[idx].Elev += 0.5
		}
	}

	normals := make([][3]float64, len(vertices))
	for i, p := range vertices {
		normals[i] = geo.NormalAt(p)
	}
	for _, lr := range lightRefs {
		for j, idx := range lr.indices {
			normals[idx] = lr.normals[j]
		}
	}

	texcoord := make([][2]float64, len(vertices))
	for idx, c := range uv {
		texcoord[idx] = c
	}

	// Step 11: skirt panels around every contour of divided_base.
	skirtTris := make(map[string][]polygon.Triangle)
	for _, c := range dividedBase.Contours {
		n := len(c.Points)
		if n < polygon.MinContourSize {
			return &util.BuildError{Kind: util.ErrInvariantViolation, Op: "airport " + a.ID, Err: fmt.Errorf("divided_base contour has %d vertices", n)}
		}
		upper := make([]int, n)
		lower := make([]int, n)
		for i, pt := range c.Points {
			idx, ok := table.Find(pt)
			if !ok {
				return &util.BuildError{Kind: util.ErrInvariantViolation, Op: "airport " + a.ID, Err: fmt.Errorf("missing skirt node")}
			}
			upper[i] = idx
			lowerPt := vertices[idx]
			lowerPt.Elev -= skirtDropM
			vertices = append(vertices, lowerPt)
			normals = append(normals, normals[idx])
			texcoord = append(texcoord, [2]float64{0, 0})
			lower[i] = len(vertices) - 1
		}
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			skirtTris[skirtMaterial] = append(skirtTris[skirtMaterial],
				polygon.Triangle{upper[i], upper[j], lower[j]},
				polygon.Triangle{upper[i], lower[j], lower[i]},
			)
		}
	}
	for _, mat := range util.SortedMapKeys(skirtTris) {
		triGroups[mat] = append(triGroups[mat], skirtTris[mat]...)
	}

	// Step 12: WGS-84 cartesian conversion and bounding sphere.
	ecefVerts := make([][3]float64, len(vertices))
	for i, p := range vertices {
		ecefVerts[i] = geo.ToECEF(p)
	}
	sphereCenter, radius := sceneobj.BoundingSphere(ecefVerts)

	obj := sceneobj.Object{
		Center:   sphereCenter,
		Radius:   radius,
		Vertices: ecefVerts,
		Normals:  normals,
		TexCoord: texcoord,
	}
	// Iterate triGroups in sorted material order: ranging a map directly
	// would make each build's group ordering (and so the written .btg's
	// byte layout) depend on Go's randomized map iteration.
	for _, mat := range util.SortedMapKeys(triGroups) {
		tris := triGroups[mat]
		idx := make([]uint32, 0, len(tris)*3)
		for _, t := range tris {
			idx = append(idx, uint32(t[0]), uint32(t[1]), uint32(t[2]))
		}
		obj.Groups = append(obj.Groups, sceneobj.Group{Material: mat, Kind: sceneobj.KindTriangles, Indices: idx})
	}
	for _, lr := range lightRefs {
		idx := make([]uint32, 0, len(lr.indices))
		for _, i := range lr.indices {
			idx = append(idx, uint32(i))
		}
		obj.Groups = append(obj.Groups, sceneobj.Group{Material: lr.material, Kind: sceneobj.KindPoints, Indices: idx})
	}

	// Step 13: emit the binary scenery object to the airport's bucket
	// path.
	dir := filepath.Join(outDir, "AirportObj", bucket.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "airport " + a.ID, Err: err}
	}
	f, err := os.Create(filepath.Join(dir, a.ID+".btg"))
	if err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "airport " + a.ID, Err: err}
	}
	defer f.Close()
	if err := sceneobj.Encode(f, obj); err != nil {
		return &util.BuildError{Kind: util.ErrIO, Op: "airport " + a.ID, Err: err}
	}

	// Step 14: hand divided_base and apt_clearing to the tile splitter.
	if b.Chopper != nil {
		b.Chopper.Add(dividedBase, chopper.Hole, lg)
		b.Chopper.Add(aptClearing, chopper.Clearing, lg)
	}

	if lg != nil {
		lg.Infof("airport %s: built %d vertices, %d groups", a.ID, len(vertices), len(obj.Groups))
	}
	return nil
}
