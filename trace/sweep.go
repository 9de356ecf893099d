package trace

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/patch"
	"github.com/bloodmagesoftware/collide/world"
)

// nonAxialPointOffset is the Minkowski offset used against a non-axial BSP
// split plane when the trace is a true point (§4.7): the exact support
// point.
const nonAxialPointOffset = 0

// nonAxialBoxOffset is the "silly" oversized constant used against a
// non-axial split plane when the trace is a box, not a point. It forces
// both subtrees to be visited rather than computing the true Minkowski
// offset for a non-axial plane against a box, which is rare and expensive
// to get exactly right. Preserve this behavior; do not "fix" it.
const nonAxialBoxOffset = 2048

// traceThroughTree descends the BSP tree between fractions p1Frac and
// p2Frac along the segment p1->p2 (already expressed in the symmetrized,
// per-trace coordinate space), sweeping every touched leaf's brushes and
// patches (§4.7). It could be rewritten as an explicit stack of
// (node, p1Frac, p2Frac, p1, p2) frames (§9 Design Notes); kept recursive
// here because the tail-call shape is what matters for the O(1) pruning
// check, not the call mechanism.
func traceThroughTree(w *Work, nodeIndex int32, p1Frac, p2Frac float32, p1, p2 geom.Vec3) {
	if w.Trace.Fraction <= p1Frac {
		return
	}

	if world.ChildIsLeaf(nodeIndex) {
		sweepLeaf(w, world.LeafIndex(nodeIndex))
		return
	}

	node := w.model.Nodes[nodeIndex]
	plane := w.model.Planes[node.PlaneIndex]

	var t1, t2 float64
	var offset float32
	if plane.Type < geom.PlaneNonAxial {
		axis := int(plane.Type)
		t1 = float64(p1.Component(axis)) - float64(plane.Dist)
		t2 = float64(p2.Component(axis)) - float64(plane.Dist)
		offset = w.Extents.Component(axis)
	} else {
		t1 = geom.DotD(plane.Normal, p1) - float64(plane.Dist)
		t2 = geom.DotD(plane.Normal, p2) - float64(plane.Dist)
		if w.IsPoint {
			offset = nonAxialPointOffset
		} else {
			offset = nonAxialBoxOffset
		}
	}

	offset64 := float64(offset)
	if t1 >= offset64+1 && t2 >= offset64+1 {
		traceThroughTree(w, node.Children[0], p1Frac, p2Frac, p1, p2)
		return
	}
	if t1 < -offset64-1 && t2 < -offset64-1 {
		traceThroughTree(w, node.Children[1], p1Frac, p2Frac, p1, p2)
		return
	}

	var side int32
	var frac, frac2 float32
	switch {
	case t1 < t2:
		side = 1
		idist := 1 / (t1 - t2)
		frac2 = float32((t1 + offset64 + geom.SurfaceClipEpsilon) * idist)
		frac = float32((t1 - offset64 + geom.SurfaceClipEpsilon) * idist)
	case t1 > t2:
		side = 0
		idist := 1 / (t1 - t2)
		frac2 = float32((t1 - offset64 - geom.SurfaceClipEpsilon) * idist)
		frac = float32((t1 + offset64 + geom.SurfaceClipEpsilon) * idist)
	default:
		side = 0
		frac = 1
		frac2 = 0
	}

	frac = clamp01(frac)
	mid := geom.Lerp(p1, p2, frac)
	midFrac := p1Frac + (p2Frac-p1Frac)*frac
	traceThroughTree(w, node.Children[side], p1Frac, midFrac, p1, mid)

	frac2 = clamp01(frac2)
	mid2 := geom.Lerp(p1, p2, frac2)
	midFrac2 := p1Frac + (p2Frac-p1Frac)*frac2
	traceThroughTree(w, node.Children[side^1], midFrac2, p2Frac, mid2, p2)
}

func clamp01(f float32) float32 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func sweepLeaf(w *Work, leafIndex int32) {
	sweepThroughLeaf(w, w.model.Leaves[leafIndex])
}

// sweepThroughLeaf runs the brush/patch sweep against one leaf's contents
// directly, independent of where that leaf came from. sweepLeaf (a real
// BSP leaf reached by tree descent) and TransformedBoxTrace's submodel
// dispatch (a submodel's own synthetic leaf, §3 Submodel) both funnel
// through here.
func sweepThroughLeaf(w *Work, leaf world.Leaf) {
	for _, brushIndex := range w.model.LeafBrushIndices(leaf) {
		brush := w.model.Brushes[brushIndex]
		if brush.ContentFlags&w.ContentMask == 0 {
			continue
		}
		if w.brushVisited(brushIndex) {
			continue
		}
		w.markBrushVisited(brushIndex)
		if !brush.Bounds.Touches(w.Bounds, geom.BoundsClipEpsilon) {
			continue
		}
		traceThroughBrush(w, brush)
	}

	for _, patchIndex := range w.model.LeafSurfaceIndices(leaf) {
		p := w.model.Patches[patchIndex]
		if p.Collide == nil || p.ContentFlags&w.ContentMask == 0 {
			continue
		}
		if w.patchVisited(patchIndex) {
			continue
		}
		w.markPatchVisited(patchIndex)
		if !p.Collide.Bounds.Touches(w.Bounds, geom.BoundsClipEpsilon) {
			continue
		}
		traceThroughPatchCollide(w, p.Collide, p.ContentFlags, p.SurfaceFlags)
	}
}

// halfspaceSweep is the shared per-plane enter/leave accumulation used by
// both traceThroughBrush and traceThroughPatchCollide (§4.8): a convex
// region, intersected with the swept box, produces a single [enterFrac,
// leaveFrac) window of the sweep during which the box is inside every
// half-space at once.
type halfspaceSweep struct {
	unreachable bool
	startOut    bool
	getOut      bool
	enterFrac   float32
	leaveFrac   float32
	clipPlane   geom.Plane
	clipIndex   int
}

func sweepHalfspaces(w *Work, planes []geom.Plane) halfspaceSweep {
	result := halfspaceSweep{enterFrac: -1, leaveFrac: 1, clipIndex: -1}

	for i, plane := range planes {
		var d1, d2 float64

		if w.UseCapsule {
			// §4.9 capsule: the closest point on the capsule's axis to the
			// plane (start or end, shifted by the sphere offset toward the
			// plane) stands in for the Minkowski support point, and the
			// plane is pushed out by the sphere radius.
			dist := float64(plane.Dist) + float64(w.SphereRadius)
			t := geom.DotD(plane.Normal, w.SphereOffset)
			var startp, endp geom.Vec3
			if t > 0 {
				startp = w.Start.Sub(w.SphereOffset)
				endp = w.End.Sub(w.SphereOffset)
			} else {
				startp = w.Start.Add(w.SphereOffset)
				endp = w.End.Add(w.SphereOffset)
			}
			d1 = geom.DotD(plane.Normal, startp) - dist
			d2 = geom.DotD(plane.Normal, endp) - dist
		} else {
			offset := w.Offsets[plane.SignBits&7]
			dist := float64(plane.Dist) - geom.DotD(offset, plane.Normal)
			d1 = geom.DotD(plane.Normal, w.Start) - dist
			d2 = geom.DotD(plane.Normal, w.End) - dist
		}

		if d2 > 0 {
			result.getOut = true
		}
		if d1 > 0 {
			result.startOut = true
		}

		if d1 > 0 && (d2 >= float64(geom.SurfaceClipEpsilon) || d2 >= d1) {
			result.unreachable = true
			return result
		}
		if d1 <= 0 && d2 <= 0 {
			continue
		}

		if d1 > d2 {
			f := float32((d1 - float64(geom.SurfaceClipEpsilon)) / (d1 - d2))
			if f < 0 {
				f = 0
			}
			if f > result.enterFrac {
				result.enterFrac = f
				result.clipPlane = plane
				result.clipIndex = i
			}
		} else {
			f := float32((d1 + float64(geom.SurfaceClipEpsilon)) / (d1 - d2))
			if f > 1 {
				f = 1
			}
			if f < result.leaveFrac {
				result.leaveFrac = f
			}
		}
	}

	return result
}

// traceThroughBrush implements §4.8's per-brush sweep.
func traceThroughBrush(w *Work, brush world.Brush) {
	if brush.NumSides == 0 {
		return
	}

	sides := w.model.Sides(brush)
	planes := make([]geom.Plane, len(sides))
	for i, side := range sides {
		planes[i] = w.model.Planes[side.PlaneIndex]
	}

	result := sweepHalfspaces(w, planes)
	if result.unreachable {
		return
	}

	if !result.startOut {
		w.Trace.StartSolid = true
		if !result.getOut {
			w.Trace.AllSolid = true
			w.Trace.Fraction = 0
		}
		return
	}

	if result.enterFrac < result.leaveFrac && result.enterFrac > -1 && result.enterFrac < w.Trace.Fraction {
		enterFrac := result.enterFrac
		if enterFrac < 0 {
			enterFrac = 0
		}
		w.Trace.Fraction = enterFrac
		w.Trace.Plane = result.clipPlane
		w.Trace.ContentFlags = brush.ContentFlags
		if result.clipIndex >= 0 {
			w.Trace.SurfaceFlags = sides[result.clipIndex].SurfaceFlags
		}
	}
}

// traceThroughPatchCollide implements the patch sweep analogue of §4.8:
// every facet's surface plane plus its oriented border planes are swept
// together through the same halfspaceSweep accumulation used for brush
// sides, rather than the source's separate point-trace fast path — a
// patch never contributes AllSolid (a tessellated surface has no
// interior), so only the entering-fraction branch applies.
func traceThroughPatchCollide(w *Work, pc *patch.PatchCollide, contentFlags, surfaceFlags int32) {
	for _, facet := range pc.Facets {
		traceThroughFacet(w, pc, facet, contentFlags, surfaceFlags)
	}
}

func traceThroughFacet(w *Work, pc *patch.PatchCollide, facet patch.Facet, contentFlags, surfaceFlags int32) {
	planes := make([]geom.Plane, 0, 1+len(facet.Borders))
	planes = append(planes, pc.Planes[facet.SurfacePlane])
	for i, planeIdx := range facet.Borders {
		p := pc.Planes[planeIdx]
		if !facet.BorderInward[i] {
			p = p.Opposite()
		}
		planes = append(planes, p)
	}

	result := sweepHalfspaces(w, planes)
	if result.unreachable {
		return
	}
	// The last plane in the list is always the ceiling border appended by
	// addFacetBevels (patch/bevel.go), the opposite side of the surface
	// plane. A hit whose entering fraction is set by that plane is the box
	// clipping against the facet's back side, which the original rejects
	// outright rather than reporting as a contact.
	if len(facet.Borders) > 0 && result.clipIndex == len(planes)-1 {
		return
	}

	if result.enterFrac < result.leaveFrac && result.enterFrac > -1 && result.enterFrac < w.Trace.Fraction {
		enterFrac := result.enterFrac
		if enterFrac < 0 {
			enterFrac = 0
		}
		w.Trace.Fraction = enterFrac
		w.Trace.Plane = result.clipPlane
		w.Trace.ContentFlags = contentFlags
		w.Trace.SurfaceFlags = surfaceFlags
	}
}
