package trace

import (
	"testing"

	"github.com/bloodmagesoftware/collide/boxhull"
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// BoxVsBox doesn't need a loaded map at all — it only needs somewhere to
// append the hull's synthetic brush, matching CM_TempBoxModel's standalone
// use for entity-vs-entity collision.
func newBoxHullWorld() (*world.Model, *boxhull.Hull) {
	m := world.New("test")
	return m, boxhull.New(m, 0)
}

func TestBoxVsBox_SweepHitsStationaryTarget(t *testing.T) {
	_, hull := newBoxHullWorld()

	targetMins := geom.Vec3{X: -1, Y: -1, Z: -1}
	targetMaxs := geom.Vec3{X: 1, Y: 1, Z: 1}

	tr := BoxVsBox(hull, targetMins, targetMaxs, 1,
		geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.Fraction <= 0 || tr.Fraction >= 1 {
		t.Fatalf("expected a mid-sweep contact with the target box, got %+v", tr)
	}
	if tr.Plane.Normal != (geom.Vec3{X: -1}) {
		t.Errorf("contact normal = %v, want (-1,0,0)", tr.Plane.Normal)
	}
}

func TestBoxVsBox_ContentMaskExcludesTarget(t *testing.T) {
	_, hull := newBoxHullWorld()

	targetMins := geom.Vec3{X: -1, Y: -1, Z: -1}
	targetMaxs := geom.Vec3{X: 1, Y: 1, Z: 1}

	tr := BoxVsBox(hull, targetMins, targetMaxs, 2,
		geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.Fraction != 1 {
		t.Errorf("expected the target to be filtered out by content mask, got fraction %v", tr.Fraction)
	}
}

func TestBoxVsBox_DegenerateTargetIsSkipped(t *testing.T) {
	_, hull := newBoxHullWorld()

	// mins.X > maxs.X makes the target box degenerate; BoxVsBox should
	// dispatch against the hull's empty leaf instead of a malformed brush.
	targetMins := geom.Vec3{X: 1}
	targetMaxs := geom.Vec3{X: -1}

	tr := BoxVsBox(hull, targetMins, targetMaxs, 1,
		geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if tr.Fraction != 1 {
		t.Errorf("expected a clean miss against a degenerate target, got %+v", tr)
	}
}

func TestBoxVsBox_HullReusableAcrossDifferentTargets(t *testing.T) {
	_, hull := newBoxHullWorld()

	first := BoxVsBox(hull, geom.Vec3{X: -1, Y: -1, Z: -1}, geom.Vec3{X: 1, Y: 1, Z: 1}, 1,
		geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)
	second := BoxVsBox(hull, geom.Vec3{X: 2, Y: -1, Z: -1}, geom.Vec3{X: 4, Y: 1, Z: 1}, 1,
		geom.Vec3{X: -5}, geom.Vec3{X: 5}, geom.Vec3{}, geom.Vec3{}, 1, false)

	if first.Fraction >= second.Fraction {
		t.Errorf("a target moved further along the sweep should contact later: first=%v second=%v", first.Fraction, second.Fraction)
	}
}

func TestBoxVsBox_PositionQueryAgainstStationaryTarget(t *testing.T) {
	_, hull := newBoxHullWorld()

	targetMins := geom.Vec3{X: -1, Y: -1, Z: -1}
	targetMaxs := geom.Vec3{X: 1, Y: 1, Z: 1}

	inside := BoxVsBox(hull, targetMins, targetMaxs, 1,
		geom.Vec3{}, geom.Vec3{}, geom.Vec3{}, geom.Vec3{}, 1, false)
	if !inside.AllSolid {
		t.Errorf("expected overlap at the origin, got %+v", inside)
	}

	outside := BoxVsBox(hull, targetMins, targetMaxs, 1,
		geom.Vec3{X: 10}, geom.Vec3{X: 10}, geom.Vec3{}, geom.Vec3{}, 1, false)
	if outside.AllSolid {
		t.Errorf("expected no overlap far from the target, got %+v", outside)
	}
}
