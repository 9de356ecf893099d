package trace

import (
	"testing"

	"github.com/bloodmagesoftware/collide/geom"
)

// The brush below spans -1..1 on every axis; tests derive expected
// fractions from the same enter-fraction formula §4.8 defines, rather
// than copying numbers out of a worked example, so the assertions stay
// consistent with whatever SURFACE_CLIP_EPSILON is defined as.
func TestBoxTrace_PointHitsCubeFace(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	start := geom.Vec3{X: -3}
	end := geom.Vec3{X: 3}

	tr := BoxTrace(m, start, end, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.AllSolid || tr.StartSolid {
		t.Fatalf("expected no embedding, got %+v", tr)
	}
	if tr.Fraction <= 0 || tr.Fraction >= 1 {
		t.Fatalf("expected a fraction strictly between 0 and 1, got %v", tr.Fraction)
	}

	// d1/d2 against the entering (-X) plane: normal=(-1,0,0), dist=1,
	// d = n·p - dist.
	d1 := float64(3 - 1)
	d2 := float64(-3 - 1)
	want := float32((d1 - float64(geom.SurfaceClipEpsilon)) / (d1 - d2))
	if diff := tr.Fraction - want; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("fraction = %v, want %v", tr.Fraction, want)
	}

	if tr.Plane.Normal != (geom.Vec3{X: -1}) {
		t.Errorf("contact normal = %v, want (-1,0,0)", tr.Plane.Normal)
	}

	wantEnd := geom.Lerp(start, end, tr.Fraction)
	if tr.EndPos != wantEnd {
		t.Errorf("endpos = %v, want %v", tr.EndPos, wantEnd)
	}
}

func TestBoxTrace_StartInsideEndEscapes(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	tr := BoxTrace(m, geom.Vec3{}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if !tr.StartSolid {
		t.Error("expected StartSolid when the start point is embedded")
	}
	if tr.AllSolid {
		t.Error("expected !AllSolid since the end point escapes the brush")
	}
}

func TestBoxTrace_FullyEmbedded(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -100, Y: -100, Z: -100}, {X: 100, Y: 100, Z: 100}},
	}, 1)

	tr := BoxTrace(m, geom.Vec3{X: -1}, geom.Vec3{X: 1}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if !tr.AllSolid || !tr.StartSolid {
		t.Errorf("expected allSolid+startSolid for a sweep never leaving a giant brush, got %+v", tr)
	}
	if tr.Fraction != 0 {
		t.Errorf("fraction = %v, want 0", tr.Fraction)
	}
}

func TestBoxTrace_Miss(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	tr := BoxTrace(m, geom.Vec3{X: 5, Y: 5, Z: 5}, geom.Vec3{X: 10, Y: 10, Z: 10}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.Fraction != 1 {
		t.Errorf("fraction = %v, want 1 (miss)", tr.Fraction)
	}
	if tr.AllSolid || tr.StartSolid {
		t.Errorf("expected a clean miss, got %+v", tr)
	}
}

func TestBoxTrace_ContentMaskExcludesBrush(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 2) // content bit 2, trace mask below only requests bit 1

	tr := BoxTrace(m, geom.Vec3{X: -3}, geom.Vec3{X: 3}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.Fraction != 1 {
		t.Errorf("expected the brush to be filtered out by content mask, got fraction %v", tr.Fraction)
	}
}

func TestBoxTrace_ExpandedBoxHitsEarlierThanPoint(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	point := BoxTrace(m, geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)
	box := BoxTrace(m, geom.Vec3{X: -5}, geom.Vec3{X: 5},
		geom.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1, false)

	if box.Fraction >= point.Fraction {
		t.Errorf("expanded box should contact earlier than a point trace: box=%v point=%v", box.Fraction, point.Fraction)
	}
}

func TestBoxTrace_CheckcountDedupesSharedBrush(t *testing.T) {
	// A brush referenced from two leaves must only be evaluated once per
	// trace (§3 Leaf, §9 Design Notes "per-trace visitation stamp").
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)
	brushIndex := int32(0)
	m.LeafBrushes = append(m.LeafBrushes, brushIndex)
	m.Leaves[0].NumLeafBrushes = 2

	tr := BoxTrace(m, geom.Vec3{X: -3}, geom.Vec3{X: 3}, geom.Vec3{}, geom.Vec3{}, 1, false)
	if tr.Fraction <= 0 || tr.Fraction >= 1 {
		t.Fatalf("expected a single clean hit despite the duplicated leafbrush entry, got %+v", tr)
	}
}

func TestPositionTest_InsideAndOutside(t *testing.T) {
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	inside := PositionTest(m, geom.Vec3{}, geom.Vec3{}, geom.Vec3{}, 1, false)
	if !inside.AllSolid || !inside.StartSolid || inside.Fraction != 0 {
		t.Errorf("expected solid at origin, got %+v", inside)
	}

	outside := PositionTest(m, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)
	if outside.AllSolid || outside.StartSolid {
		t.Errorf("expected no overlap far from the brush, got %+v", outside)
	}
}

func TestBoxTrace_CapsuleContactsLaterThanEquivalentBox(t *testing.T) {
	// sphere.radius is derived from min(size1.X, size1.Z) only (§4.9,
	// original_source/src/col/c/trace.c) — here X=2, Z=0.5, so the capsule
	// degenerates to a radius-0.5 sphere (offset zero, since halfHeight ==
	// radius) entirely ignoring the box's much larger X half-extent. The
	// capsule must therefore contact the cube later (a smaller effective
	// reach) than a full, non-capsule box of the same mins/maxs.
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	mins := geom.Vec3{X: -2, Y: -2, Z: -0.5}
	maxs := geom.Vec3{X: 2, Y: 2, Z: 0.5}

	capsule := BoxTrace(m, geom.Vec3{X: -5}, geom.Vec3{X: 5}, mins, maxs, 1, true)
	box := BoxTrace(m, geom.Vec3{X: -5}, geom.Vec3{X: 5}, mins, maxs, 1, false)

	if capsule.Fraction <= 0 || capsule.Fraction >= 1 {
		t.Fatalf("expected the capsule sweep to hit the cube, got fraction %v", capsule.Fraction)
	}
	if capsule.Fraction <= box.Fraction {
		t.Errorf("capsule (radius 0.5) should contact later than the full box (X half-extent 2): capsule=%v box=%v", capsule.Fraction, box.Fraction)
	}
}

func TestPositionTest_CapsuleIgnoresWiderBoxExtent(t *testing.T) {
	// Same degenerate-sphere geometry as above: a point whose full box
	// (X half-extent 2) still overlaps the cube, but whose capsule radius
	// (0.5) does not reach it, must register solid for the box and not for
	// the capsule.
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	mins := geom.Vec3{X: -2, Y: -2, Z: -0.5}
	maxs := geom.Vec3{X: 2, Y: 2, Z: 0.5}

	point := geom.Vec3{X: 1.75}

	capsule := PositionTest(m, point, mins, maxs, 1, true)
	if capsule.AllSolid {
		t.Errorf("expected no overlap at radius 0.5 beyond the cube face, got %+v", capsule)
	}

	box := PositionTest(m, point, mins, maxs, 1, false)
	if !box.AllSolid {
		t.Errorf("expected the full box (X half-extent 2) to still overlap the cube, got %+v", box)
	}
}

func TestBoxTrace_EndJustOutsideFaceIsNotStartSolid(t *testing.T) {
	// A point trace that stops exactly at the brush face minus a sliver
	// smaller than SURFACE_CLIP_EPSILON should not register startSolid.
	m := singleLeafWorld([][2]geom.Vec3{
		{{X: -1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: 1}},
	}, 1)

	grazeX := float32(-1) - geom.SurfaceClipEpsilon/2
	tr := BoxTrace(m, geom.Vec3{X: -5}, geom.Vec3{X: grazeX}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.StartSolid {
		t.Errorf("did not expect startSolid for a trace ending just outside the face, got %+v", tr)
	}
}
