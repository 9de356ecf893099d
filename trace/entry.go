package trace

import (
	"fmt"

	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// BoxTrace sweeps a box (or a point, if mins/maxs are both the zero
// vector) from start to end through m's geometry, stopping at the first
// contact with a brush or patch whose content flags intersect
// contentMask (§4.9, §6 boxTrace). With useCapsule set, the swept shape is
// the capsule NewWork fits to mins/maxs (radius and Z offset taken from the
// half-extents) instead of the box itself.
func BoxTrace(m *world.Model, start, end, mins, maxs geom.Vec3, contentMask int32, useCapsule bool) Trace {
	if m != nil {
		m.BeginTrace()
	}

	if start == end {
		t := PositionTest(m, start, mins, maxs, contentMask, useCapsule)
		t.EndPos = start
		assertTraceInvariant(t)
		return t
	}

	w := NewWork(m, start, end, mins, maxs, contentMask, useCapsule)

	if m != nil && (len(m.Nodes) > 0 || world.ChildIsLeaf(m.RootNode)) {
		traceThroughTree(w, m.RootNode, 0, 1, w.Start, w.End)
	}

	if w.Trace.Fraction < 1 {
		w.Trace.EndPos = geom.Lerp(start, end, w.Trace.Fraction)
	} else {
		w.Trace.EndPos = end
	}

	assertTraceInvariant(w.Trace)
	return w.Trace
}

// TransformedBoxTrace sweeps against submodel (0 = the world, queried
// through the root Node tree; otherwise a direct index into m.Submodels,
// queried against its own synthetic Leaf without any tree descent, §3
// Submodel) placed at origin/angles in world space, by rotating the trace
// line into the submodel's local frame, tracing there, and rotating the
// resulting contact normal back (§4.9, §6 transformedBoxTrace). As the
// source notes, this is only exact for a capsule; a box swept against a
// rotated submodel is a deliberate approximation because rotating the box
// itself would invalidate its brush bevels.
func TransformedBoxTrace(m *world.Model, start, end, mins, maxs geom.Vec3, contentMask int32, submodel int32, origin, angles geom.Vec3, useCapsule bool) Trace {
	offset := mins.Add(maxs).Scale(0.5)
	size0 := mins.Sub(offset)
	size1 := maxs.Sub(offset)

	startLocal := start.Add(offset).Sub(origin)
	endLocal := end.Add(offset).Sub(origin)

	rotated := angles != (geom.Vec3{})
	var matrix geom.Matrix3
	if rotated {
		matrix = geom.RotationFromAngles(angles)
		startLocal = matrix.RotatePoint(startLocal)
		endLocal = matrix.RotatePoint(endLocal)
	}

	if m != nil {
		m.BeginTrace()
	}

	var t Trace
	if submodel != 0 && m != nil {
		sub, err := m.Submodel(int(submodel))
		if err != nil {
			panic(fmt.Sprintf("trace: %v", err))
		}

		w := NewWork(m, startLocal, endLocal, size0, size1, contentMask, useCapsule)
		if startLocal == endLocal {
			testLeaf(w, sub.Leaf)
		} else {
			sweepThroughLeaf(w, sub.Leaf)
		}
		t = w.Trace
	} else if startLocal == endLocal {
		t = PositionTest(m, startLocal, size0, size1, contentMask, useCapsule)
	} else {
		w := NewWork(m, startLocal, endLocal, size0, size1, contentMask, useCapsule)
		if m != nil && (len(m.Nodes) > 0 || world.ChildIsLeaf(m.RootNode)) {
			traceThroughTree(w, m.RootNode, 0, 1, w.Start, w.End)
		}
		t = w.Trace
	}

	if rotated && t.Fraction != 1 {
		t.Plane.Normal = matrix.Transpose().RotatePoint(t.Plane.Normal)
	}

	if t.Fraction < 1 {
		t.EndPos = geom.Lerp(start, end, t.Fraction)
	} else {
		t.EndPos = end
	}

	assertTraceInvariant(t)
	return t
}

// PointContents returns the OR of content flags of every brush and patch
// (matching contentMask) that contains point (§6 pointContents).
func PointContents(m *world.Model, point geom.Vec3, contentMask int32) int32 {
	if m == nil || (len(m.Nodes) == 0 && !world.ChildIsLeaf(m.RootNode)) {
		return 0
	}

	w := NewWork(m, point, point, geom.Vec3{}, geom.Vec3{}, contentMask, false)
	c := newLeafCollector(m, w.Bounds.Mins, w.Bounds.Maxs, maxPositionLeafs)
	c.collect(m.RootNode)

	query := geom.Bounds{Mins: w.Bounds.Mins, Maxs: w.Bounds.Maxs}
	var contents int32

	for _, leafIndex := range c.leaves {
		leaf := m.Leaves[leafIndex]

		for _, brushIndex := range m.LeafBrushIndices(leaf) {
			brush := m.Brushes[brushIndex]
			if brush.ContentFlags&contentMask == 0 || w.brushVisited(brushIndex) {
				continue
			}
			w.markBrushVisited(brushIndex)
			if !brush.Bounds.Touches(query, geom.BoundsClipEpsilon) {
				continue
			}
			if testBoxInBrush(w, brush) {
				contents |= brush.ContentFlags
			}
		}

		for _, patchIndex := range m.LeafSurfaceIndices(leaf) {
			p := m.Patches[patchIndex]
			if p.Collide == nil || p.ContentFlags&contentMask == 0 || w.patchVisited(patchIndex) {
				continue
			}
			w.markPatchVisited(patchIndex)
			if !p.Collide.Bounds.Touches(query, geom.BoundsClipEpsilon) {
				continue
			}
			if testBoxInPatch(w, p.Collide) {
				contents |= p.ContentFlags
			}
		}
	}

	return contents
}

// TransformedPointContents samples content flags at point after
// transforming it into a rotated submodel's local frame (§6
// transformedPointContents).
func TransformedPointContents(m *world.Model, point geom.Vec3, origin, angles geom.Vec3, contentMask int32) int32 {
	local := point.Sub(origin)
	if angles != (geom.Vec3{}) {
		local = geom.RotationFromAngles(angles).RotatePoint(local)
	}
	return PointContents(m, local, contentMask)
}

// assertTraceInvariant enforces §4.9 step 8 and §8 testable property 4: a
// trace that neither fills solid nor misses entirely must carry a
// unit-length contact normal. Violating it indicates a bug in the solver,
// not bad map data (§7 taxonomy #4), so it panics rather than degrading
// silently.
func assertTraceInvariant(t Trace) {
	if t.AllSolid || t.Fraction == 1 {
		return
	}
	if lenSq := t.Plane.Normal.LengthSquared(); lenSq <= 0.9999 {
		panic("trace: fraction < 1 with a non-unit contact plane normal")
	}
}
