package trace

import (
	"testing"

	"github.com/bloodmagesoftware/collide/geom"
)

// §8 testable property 9: for angles == 0, transformedBoxTrace must match
// a plain boxTrace against the same geometry shifted by -origin.
func TestTransformedBoxTrace_IdentityAnglesMatchesShiftedBoxTrace(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	origin := geom.Vec3{X: 10, Y: 0, Z: 0}
	start := geom.Vec3{X: 7}
	end := geom.Vec3{X: 13}

	got := TransformedBoxTrace(m, start, end, geom.Vec3{}, geom.Vec3{}, 1, 0, origin, geom.Vec3{}, false)
	want := BoxTrace(m, start.Sub(origin), end.Sub(origin), geom.Vec3{}, geom.Vec3{}, 1, false)

	if got.Fraction != want.Fraction {
		t.Errorf("fraction = %v, want %v", got.Fraction, want.Fraction)
	}
	if got.Plane.Normal != want.Plane.Normal {
		t.Errorf("normal = %v, want %v", got.Plane.Normal, want.Plane.Normal)
	}
}

// §8 testable property 8: tracing against a named submodel must dispatch
// directly to that submodel's own synthetic leaf, not the root tree — a
// submodel-only brush must be findable via TransformedBoxTrace(...,
// submodel=1, ...) and invisible to a plain BoxTrace (which only ever
// queries the root tree, i.e. submodel 0).
func TestTransformedBoxTrace_DispatchesToSubmodelLeaf(t *testing.T) {
	m := worldWithSubmodel([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	start := geom.Vec3{X: -5}
	end := geom.Vec3{X: 5}

	viaSubmodel := TransformedBoxTrace(m, start, end, geom.Vec3{}, geom.Vec3{}, 1, 1, geom.Vec3{}, geom.Vec3{}, false)
	if viaSubmodel.Fraction >= 1 {
		t.Fatalf("expected a hit against submodel 1's brush, got fraction %v", viaSubmodel.Fraction)
	}

	viaRoot := BoxTrace(m, start, end, geom.Vec3{}, geom.Vec3{}, 1, false)
	if viaRoot.Fraction != 1 {
		t.Fatalf("plain BoxTrace against the root tree should miss a submodel-only brush, got fraction %v", viaRoot.Fraction)
	}
}

// §8 property 8 continued: a submodel reached through its own leaf must
// agree exactly with the same geometry reached through the root tree, when
// both hold identical brushes and the submodel carries no rotation/offset.
func TestTransformedBoxTrace_SubmodelLeafMatchesEquivalentRootGeometry(t *testing.T) {
	span := [2]geom.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}}
	root := singleLeafWorld([][2]geom.Vec3{span}, 1)
	sub := worldWithSubmodel([][2]geom.Vec3{span}, 1)

	start := geom.Vec3{X: -5}
	end := geom.Vec3{X: 5}

	want := BoxTrace(root, start, end, geom.Vec3{}, geom.Vec3{}, 1, false)
	got := TransformedBoxTrace(sub, start, end, geom.Vec3{}, geom.Vec3{}, 1, 1, geom.Vec3{}, geom.Vec3{}, false)

	if got.Fraction != want.Fraction {
		t.Errorf("fraction = %v, want %v", got.Fraction, want.Fraction)
	}
	if got.Plane.Normal != want.Plane.Normal {
		t.Errorf("normal = %v, want %v", got.Plane.Normal, want.Plane.Normal)
	}
}

// §8 boundary case: "Submodel rotated 45 degrees around Z with a
// capsule-vs-capsule trace." A capsule's radius/offset are derived along
// its own local Z axis (§4.9), so this exercises the capsule math
// (sweepHalfspaces's UseCapsule branch) together with submodel dispatch
// and a non-identity rotation at once.
func TestTransformedBoxTrace_RotatedSubmodelCapsule(t *testing.T) {
	m := worldWithSubmodel([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	start := geom.Vec3{X: -5}
	end := geom.Vec3{X: 5}
	mins := geom.Vec3{X: -0.5, Y: -0.5, Z: -2}
	maxs := geom.Vec3{X: 0.5, Y: 0.5, Z: 2}

	got := TransformedBoxTrace(m, start, end, mins, maxs, 1, 1, geom.Vec3{}, geom.Vec3{Y: 45}, true)

	if got.Fraction >= 1 {
		t.Fatalf("expected the rotated capsule sweep to hit submodel 1's brush, got fraction %v", got.Fraction)
	}
	if !got.AllSolid {
		if lenSq := got.Plane.Normal.LengthSquared(); lenSq <= 0.9999 {
			t.Errorf("contact plane normal is not unit length: %v", got.Plane.Normal)
		}
	}
}

func TestPointContents_AggregatesOverlappingBrushes(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -2, Y: -2, Z: -2}, {X: 2, Y: 2, Z: 2}},
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 0)
	m.Brushes[0].ContentFlags = 1
	m.Brushes[1].ContentFlags = 2

	contents := PointContents(m, geom.Vec3{}, 1|2)
	if contents != 1|2 {
		t.Errorf("contents = %v, want %v", contents, 1|2)
	}

	outside := PointContents(m, geom.Vec3{X: 100}, 1|2)
	if outside != 0 {
		t.Errorf("contents far outside both brushes = %v, want 0", outside)
	}
}
