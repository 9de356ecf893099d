package geom

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Mins, Maxs Vec3
}

// EmptyBounds returns an inverted bounds (Mins > Maxs) suitable as the
// identity element for repeated AddPoint/Union calls.
func EmptyBounds() Bounds {
	const inf = 1e30
	return Bounds{
		Mins: Vec3{inf, inf, inf},
		Maxs: Vec3{-inf, -inf, -inf},
	}
}

func (b Bounds) AddPoint(p Vec3) Bounds {
	return Bounds{Mins: Min(b.Mins, p), Maxs: Max(b.Maxs, p)}
}

func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Mins: Min(b.Mins, o.Mins), Maxs: Max(b.Maxs, o.Maxs)}
}

// Expand grows the bounds by size in every direction.
func (b Bounds) Expand(size float32) Bounds {
	v := Vec3{size, size, size}
	return Bounds{Mins: b.Mins.Sub(v), Maxs: b.Maxs.Add(v)}
}

// Translate shifts the bounds by offset.
func (b Bounds) Translate(offset Vec3) Bounds {
	return Bounds{Mins: b.Mins.Add(offset), Maxs: b.Maxs.Add(offset)}
}

// Touches reports whether two bounds overlap (inclusive), widened by
// epsilon — used throughout §4.6/§4.7 as the cheap pre-filter before the
// exact per-brush/per-facet clip.
func (b Bounds) Touches(o Bounds, epsilon float32) bool {
	if b.Mins.X > o.Maxs.X+epsilon || b.Maxs.X < o.Mins.X-epsilon {
		return false
	}
	if b.Mins.Y > o.Maxs.Y+epsilon || b.Maxs.Y < o.Mins.Y-epsilon {
		return false
	}
	if b.Mins.Z > o.Maxs.Z+epsilon || b.Maxs.Z < o.Mins.Z-epsilon {
		return false
	}
	return true
}

// boxOnPlaneSide convenience wrapper operating on a Bounds value.
func (b Bounds) OnPlaneSide(plane Plane) Side {
	return BoxOnPlaneSide(b.Mins, b.Maxs, plane)
}

const (
	// SurfaceClipEpsilon is the pushoff applied to brush/patch plane
	// crossing fractions (§4.1, §4.8) so a sweep never skips geometry
	// that exactly touches a clipping plane at an endpoint.
	SurfaceClipEpsilon = 0.125

	// BoundsClipEpsilon widens AABB overlap tests (§4.1, §4.6) before the
	// exact brush/facet clip runs.
	BoundsClipEpsilon = 0.25
)
