package trace

import (
	"github.com/bloodmagesoftware/collide/boxhull"
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// BoxVsBox sweeps a box (start/end/mins/maxs) against another, stationary
// box (targetMins/targetMaxs) with the given content flags, reusing hull's
// synthesized brush rather than the static map tree — the entity-vs-entity
// case original_source's CM_TempBoxModel exists for: colliding against
// another mover's bounding box instead of loaded geometry (§4.3 BoxHull).
// hull is reusable across calls; each call rewrites its brush in place.
func BoxVsBox(hull *boxhull.Hull, targetMins, targetMaxs geom.Vec3, contentFlags int32, start, end, mins, maxs geom.Vec3, contentMask int32, useCapsule bool) Trace {
	m := hull.Model()
	w := NewWork(m, start, end, mins, maxs, contentMask, useCapsule)

	var leaf world.Leaf
	degenerate := targetMins.X > targetMaxs.X || targetMins.Y > targetMaxs.Y || targetMins.Z > targetMaxs.Z
	if degenerate {
		leaf = m.Leaves[hull.EmptyLeaf()]
	} else {
		hull.SetContentFlags(contentFlags)
		hull.Update(targetMins, targetMaxs)
		leaf = hull.LeafValue()
	}

	if w.Start == w.End {
		testLeaf(w, leaf)
	} else {
		sweepThroughLeaf(w, leaf)
	}

	if w.Trace.Fraction < 1 {
		w.Trace.EndPos = geom.Lerp(start, end, w.Trace.Fraction)
	} else {
		w.Trace.EndPos = end
	}

	assertTraceInvariant(w.Trace)
	return w.Trace
}
