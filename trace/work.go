package trace

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// Work is the per-call scratch bundle (§3 TraceWork): symmetrized
// start/end, the symmetric half-size pair, the eight corner-offset
// vectors used for Minkowski expansion, the swept-box bounds, the content
// filter, and the in-progress Trace. A Work lives only for the duration of
// one trace call — it is never retained or shared across calls, which is
// what lets many traces run concurrently against one read-only
// world.Model (§5 Concurrency & Resource Model).
type Work struct {
	model *world.Model

	// Start and End are symmetrized: shifted so the box's center, not an
	// arbitrary corner, is the swept point (§4.9 step 3).
	Start, End geom.Vec3

	// Size[0] (<=0, componentwise) and Size[1] (>=0) are the half-size
	// extents around the symmetrized center.
	Size [2]geom.Vec3

	// Offsets[signbits] is the corner of the box most extreme along a
	// plane's normal, the Minkowski-expansion support point (§4.9 step 4).
	Offsets [8]geom.Vec3

	// Bounds encloses the entire swept box from Start to End.
	Bounds geom.Bounds

	ContentMask int32
	IsPoint     bool
	Extents     geom.Vec3

	// Capsule/sphere parameters, set only when the caller asked for the
	// capsule-vs-world code path (§4.9 "capsule" flag plumbed from
	// boxTrace/transformedBoxTrace).
	UseCapsule   bool
	SphereRadius float32
	SphereOffset geom.Vec3

	Trace Trace

	// Per-trace dedup: indices into model.Brushes/model.Patches, fresh
	// for every call. This replaces the source's inline per-brush
	// checkcount field (§9 Design Notes: "consider a per-trace bitmap...
	// rather than mutating a checkcount field on every brush") so that
	// concurrent traces never share mutable state.
	visitedBrush []bool
	visitedPatch []bool
}

// NewWork builds a Work from the caller's start/end/mins/maxs, performing
// the symmetrization and offset-table construction described in §4.9
// steps 2-5. useCapsule selects the capsule-vs-world code path (§4.9
// "capsule" flag): size1's X/Z half-extents derive a sphere radius and a
// Z offset instead of the eight-corner Minkowski table, grounded on
// original_source/src/col/c/trace.c's tw->sphere derivation in CM_Trace.
func NewWork(m *world.Model, start, end, mins, maxs geom.Vec3, contentMask int32, useCapsule bool) *Work {
	w := &Work{
		model:       m,
		ContentMask: contentMask,
		Trace:       initialTrace(),
		UseCapsule:  useCapsule,
	}

	offset := mins.Add(maxs).Scale(0.5)
	size0 := mins.Sub(offset)
	size1 := maxs.Sub(offset)

	w.Start = start.Add(offset)
	w.End = end.Add(offset)
	w.Size = [2]geom.Vec3{size0, size1}

	for signbits := 0; signbits < 8; signbits++ {
		var o geom.Vec3
		for axis := 0; axis < 3; axis++ {
			bit := (signbits >> uint(axis)) & 1
			o = o.SetComponent(axis, w.Size[bit].Component(axis))
		}
		w.Offsets[signbits] = o
	}

	if useCapsule {
		radius := size1.Z
		if size1.X < radius {
			radius = size1.X
		}
		w.SphereRadius = radius
		w.SphereOffset = geom.Vec3{Z: size1.Z - radius}

		sweptMin, sweptMax := capsuleSweepBounds(w.Start, w.End, w.SphereOffset, radius)
		w.Bounds = geom.Bounds{Mins: sweptMin, Maxs: sweptMax}
	} else {
		sweptMin := geom.Min(w.Start, w.End).Add(size0)
		sweptMax := geom.Max(w.Start, w.End).Add(size1)
		w.Bounds = geom.Bounds{Mins: sweptMin, Maxs: sweptMax}
	}

	// §4.9 step 6: isPoint is decided from size[0] alone, matching the
	// source exactly (a query with mins==maxs!=0 is a degenerate brush,
	// not a point, but never arises from a real caller).
	if size0 == (geom.Vec3{}) {
		w.IsPoint = true
	} else {
		w.Extents = size1
	}

	if m != nil {
		w.visitedBrush = make([]bool, m.NumBrushes())
		w.visitedPatch = make([]bool, m.NumPatches())
	}

	return w
}

// capsuleSweepBounds computes the swept AABB for a capsule query,
// matching CM_Trace's per-axis bounds expansion by |offset|+radius
// instead of the Minkowski half-size pair.
func capsuleSweepBounds(start, end, offset geom.Vec3, radius float32) (geom.Vec3, geom.Vec3) {
	var mins, maxs geom.Vec3
	for axis := 0; axis < 3; axis++ {
		s := start.Component(axis)
		e := end.Component(axis)
		o := offset.Component(axis)
		if o < 0 {
			o = -o
		}
		if s < e {
			mins = mins.SetComponent(axis, s-o-radius)
			maxs = maxs.SetComponent(axis, e+o+radius)
		} else {
			mins = mins.SetComponent(axis, e-o-radius)
			maxs = maxs.SetComponent(axis, s+o+radius)
		}
	}
	return mins, maxs
}

func (w *Work) brushVisited(index int32) bool {
	if int(index) >= len(w.visitedBrush) {
		return false
	}
	return w.visitedBrush[index]
}

func (w *Work) markBrushVisited(index int32) {
	if int(index) < len(w.visitedBrush) {
		w.visitedBrush[index] = true
	}
}

func (w *Work) patchVisited(index int32) bool {
	if int(index) >= len(w.visitedPatch) {
		return false
	}
	return w.visitedPatch[index]
}

func (w *Work) markPatchVisited(index int32) {
	if int(index) < len(w.visitedPatch) {
		w.visitedPatch[index] = true
	}
}
