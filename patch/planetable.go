package patch

import (
	"fmt"

	"github.com/bloodmagesoftware/collide/geom"
)

const (
	// MaxPatchPlanes bounds one builder's plane table (§4.4).
	MaxPatchPlanes = 2176

	// PlaneTriEpsilon is the tolerance findPlane uses to match an
	// existing plane by distance and by normal dot product (within
	// PlaneTriEpsilon of 1).
	PlaneTriEpsilon = 0.1

	// NormalEpsilon and DistEpsilon are the tighter tolerances findPlane2
	// uses for exact-equality matching (with a flip option).
	NormalEpsilon = 0.0001
	DistEpsilon   = 0.02
)

// planeTable is per-build scratch: a deduplicating table of planes used
// while constructing one PatchCollide. Per §9 Design Notes it must never be
// module-global, so that concurrent patch builds (WorldModel builds every
// patch on a map in parallel, see package world) never share state.
type planeTable struct {
	planes []geom.Plane
}

func newPlaneTable() *planeTable {
	return &planeTable{planes: make([]geom.Plane, 0, 64)}
}

// add appends a plane unconditionally, enforcing MaxPatchPlanes.
func (t *planeTable) add(pl geom.Plane) (int32, error) {
	if len(t.planes) >= MaxPatchPlanes {
		return 0, fmt.Errorf("patch exceeds MAX_PATCH_PLANES=%d", MaxPatchPlanes)
	}
	t.planes = append(t.planes, pl)
	return int32(len(t.planes) - 1), nil
}

// findPlane matches an existing plane whose distance and normal dot product
// (against 1) are both within PlaneTriEpsilon, or appends a new one. This is the loose match used
// while triangulating quads into facets, where small numerical noise
// between adjacent triangles' cross products should still collapse to one
// shared plane.
func (t *planeTable) findPlane(normal geom.Vec3, dist float32) (int32, error) {
	for i, existing := range t.planes {
		if abs32(existing.Normal.Dot(normal)-1) < PlaneTriEpsilon &&
			abs32(existing.Dist-dist) < PlaneTriEpsilon {
			return int32(i), nil
		}
	}
	return t.add(PlaneFromBuild(normal, dist))
}

// findPlane2 matches an existing plane by tight equality (NormalEpsilon,
// DistEpsilon), also checking for the exact opposite orientation and
// reporting flipped=true in that case so callers can reuse the existing
// entry instead of adding a near-duplicate opposite plane.
func (t *planeTable) findPlane2(normal geom.Vec3, dist float32) (index int32, flipped bool, err error) {
	for i, existing := range t.planes {
		if vecNearlyEqual(existing.Normal, normal, NormalEpsilon) &&
			abs32(existing.Dist-dist) < DistEpsilon {
			return int32(i), false, nil
		}
		opp := Vec3Negate(normal)
		if vecNearlyEqual(existing.Normal, opp, NormalEpsilon) &&
			abs32(existing.Dist+dist) < DistEpsilon {
			return int32(i), true, nil
		}
	}
	idx, err := t.add(PlaneFromBuild(normal, dist))
	return idx, false, err
}

func (t *planeTable) get(index int32) geom.Plane { return t.planes[index] }

// PlaneFromBuild constructs a patch-table plane from a raw normal/dist pair
// without renormalizing (builder code always hands in unit normals from
// planeFromPoints).
func PlaneFromBuild(normal geom.Vec3, dist float32) geom.Plane {
	return geom.PlaneFromNormalDist(normal, dist)
}

func Vec3Negate(v geom.Vec3) geom.Vec3 { return geom.Vec3{X: -v.X, Y: -v.Y, Z: -v.Z} }

func vecNearlyEqual(a, b geom.Vec3, epsilon float32) bool {
	return abs32(a.X-b.X) < epsilon && abs32(a.Y-b.Y) < epsilon && abs32(a.Z-b.Z) < epsilon
}

// planeFromPoints derives a plane from a triangle's three vertices via the
// cross product of its edges, rejecting degenerate (near-zero-area)
// triangles (§4.4 step 5).
func planeFromPoints(a, b, c geom.Vec3) (geom.Plane, bool) {
	d1 := b.Sub(a)
	d2 := c.Sub(a)
	normal := d2.Cross(d1)
	unit, length := normal.Normalize()
	if length < 1e-6 {
		return geom.Plane{}, false
	}
	dist := unit.Dot(a)
	return PlaneFromBuild(unit, dist), true
}
