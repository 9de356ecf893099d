package trace

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/patch"
	"github.com/bloodmagesoftware/collide/world"
)

// PositionTest reports whether a single stationary box overlaps solid
// geometry at start, matching the content mask (§4.6). It shares the BSP
// descent and leaf collection machinery with the sweep solver, but skips
// fraction tracking entirely: the question is binary.
func PositionTest(m *world.Model, point geom.Vec3, mins, maxs geom.Vec3, contentMask int32, useCapsule bool) Trace {
	w := NewWork(m, point, point, mins, maxs, contentMask, useCapsule)
	w.Trace.EndPos = point

	if m == nil || (len(m.Nodes) == 0 && !world.ChildIsLeaf(m.RootNode)) {
		return w.Trace
	}

	positionTestAgainstTree(w, m)
	return w.Trace
}

// positionTestAgainstTree collects every leaf touching w.Bounds under the
// root tree and runs the stationary overlap test against each, stopping
// early once AllSolid is known. Factored out of PositionTest so
// TransformedBoxTrace's submodel-0 (world) branch can share it with the
// same leaf-collection machinery, while submodel != 0 bypasses it entirely
// in favor of testLeaf against the submodel's own synthetic leaf.
func positionTestAgainstTree(w *Work, m *world.Model) {
	c := newLeafCollector(m, w.Bounds.Mins, w.Bounds.Maxs, maxPositionLeafs)
	c.collect(m.RootNode)

	for _, leafIndex := range c.leaves {
		testLeaf(w, m.Leaves[leafIndex])
		if w.Trace.AllSolid {
			break
		}
	}
}

// testLeaf runs the stationary overlap test against one leaf's brushes
// and patches. Factored out of PositionTest's collected-leaves loop so a
// single-leaf query (a submodel or a boxhull.Hull, §3 Submodel: "queried
// directly against their synthetic leaf") can reuse it without going
// through leaf collection at all.
func testLeaf(w *Work, leaf world.Leaf) {
	testLeafBrushes(w, leaf)
	if w.Trace.AllSolid {
		return
	}
	testLeafPatches(w, leaf)
}

func testLeafBrushes(w *Work, leaf world.Leaf) {
	query := geom.Bounds{Mins: w.Bounds.Mins, Maxs: w.Bounds.Maxs}
	for _, brushIndex := range w.model.LeafBrushIndices(leaf) {
		brush := w.model.Brushes[brushIndex]
		if brush.ContentFlags&w.ContentMask == 0 {
			continue
		}
		if w.brushVisited(brushIndex) {
			continue
		}
		w.markBrushVisited(brushIndex)

		if !brush.Bounds.Touches(query, geom.BoundsClipEpsilon) {
			continue
		}

		if testBoxInBrush(w, brush) {
			w.Trace.AllSolid = true
			w.Trace.StartSolid = true
			w.Trace.Fraction = 0
			w.Trace.ContentFlags = brush.ContentFlags
			return
		}
	}
}

// testBoxInBrush implements §4.6's point-in-brush test: every side of the
// brush, the six axial ones included, is tested against the box's
// Minkowski-expanded support point. Any plane the box's support point lies
// in front of proves no penetration.
func testBoxInBrush(w *Work, brush world.Brush) bool {
	if brush.NumSides == 0 {
		return false
	}
	for _, side := range w.model.Sides(brush) {
		plane := w.model.Planes[side.PlaneIndex]
		if boxOutsidePlane(w, plane) {
			return false
		}
	}
	return true
}

// boxOutsidePlane reports whether the box's Minkowski-expanded support
// point lies strictly in front of plane — i.e. outside the brush-style
// half-space where solid is on the back side (§4.1, §4.6).
func boxOutsidePlane(w *Work, plane geom.Plane) bool {
	if w.UseCapsule {
		dist := float64(plane.Dist) + float64(w.SphereRadius)
		t := geom.DotD(plane.Normal, w.SphereOffset)
		var startp geom.Vec3
		if t > 0 {
			startp = w.Start.Sub(w.SphereOffset)
		} else {
			startp = w.Start.Add(w.SphereOffset)
		}
		d1 := geom.DotD(plane.Normal, startp) - dist
		return d1 > 0
	}

	offset := w.Offsets[plane.SignBits&7]
	dist := float64(plane.Dist) - geom.DotD(offset, plane.Normal)
	d1 := geom.DotD(plane.Normal, w.Start) - dist
	return d1 > 0
}

func testLeafPatches(w *Work, leaf world.Leaf) {
	query := geom.Bounds{Mins: w.Bounds.Mins, Maxs: w.Bounds.Maxs}
	for _, patchIndex := range w.model.LeafSurfaceIndices(leaf) {
		p := w.model.Patches[patchIndex]
		if p.Collide == nil {
			continue
		}
		if p.ContentFlags&w.ContentMask == 0 {
			continue
		}
		if w.patchVisited(patchIndex) {
			continue
		}
		w.markPatchVisited(patchIndex)

		if !p.Collide.Bounds.Touches(query, geom.BoundsClipEpsilon) {
			continue
		}

		if testBoxInPatch(w, p.Collide) {
			w.Trace.AllSolid = true
			w.Trace.StartSolid = true
			w.Trace.Fraction = 0
			w.Trace.ContentFlags = p.ContentFlags
			return
		}
	}
}

// testBoxInPatch treats each facet's border planes as a brush-style
// half-space set, oriented into the brush convention (interior on the
// back side) by flipping every border whose BorderInward marks the front
// side as interior. The facet's own surface plane is left unconstrained in
// its normal direction: a tessellated surface has no "inside" along its
// own normal, only along its borders, so the box-vs-facet test is exactly
// the border clip, never the surface plane itself.
func testBoxInPatch(w *Work, pc *patch.PatchCollide) bool {
	for _, facet := range pc.Facets {
		if testBoxInFacet(w, pc, facet) {
			return true
		}
	}
	return false
}

func testBoxInFacet(w *Work, pc *patch.PatchCollide, facet patch.Facet) bool {
	if len(facet.Borders) == 0 {
		return false
	}
	for i, planeIdx := range facet.Borders {
		plane := pc.Planes[planeIdx]
		if !facet.BorderInward[i] {
			plane = plane.Opposite()
		}
		if boxOutsidePlane(w, plane) {
			return false
		}
	}
	return true
}
