package patch

import (
	"github.com/bloodmagesoftware/collide/geom"
)

// winding is an ordered convex polygon, used during facet validation to
// clip a maximal square in the surface plane against every border plane
// (§4.4 step 7).
type winding struct {
	points []geom.Vec3
}

const maxMapBounds = 65535

// baseWindingForPlane builds a large square winding lying in the plane,
// used as the seed before clipping against borders.
func baseWindingForPlane(pl geom.Plane) *winding {
	// Find the major axis of the normal to build two orthogonal
	// in-plane basis vectors.
	normal := pl.Normal
	var best float32
	bestAxis := 0
	for axis, v := range [3]float32{abs32(normal.X), abs32(normal.Y), abs32(normal.Z)} {
		if v > best {
			best = v
			bestAxis = axis
		}
	}

	var up geom.Vec3
	switch bestAxis {
	case 0, 1:
		up = geom.Vec3{Z: 1}
	default:
		up = geom.Vec3{X: 1}
	}

	v := up.Dot(normal)
	up = up.MA(-v, normal)
	up, _ = up.Normalize()

	right := up.Cross(normal)

	org := normal.Scale(pl.Dist)
	up = up.Scale(maxMapBounds)
	right = right.Scale(maxMapBounds)

	return &winding{points: []geom.Vec3{
		org.Sub(right).Add(up),
		org.Add(right).Add(up),
		org.Add(right).Sub(up),
		org.Sub(right).Sub(up),
	}}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// clip keeps only the portion of w on the front side (distance >=
// -epsilon) of plane, inserting new vertices at crossings. Returns nil if
// nothing survives.
func (w *winding) clip(pl geom.Plane, epsilon float32) *winding {
	n := len(w.points)
	if n == 0 {
		return nil
	}

	dists := make([]float32, n)
	sides := make([]int, n) // 0 front, 1 back, 2 on
	var counts [3]int

	for i, p := range w.points {
		d := pl.DistanceToPoint(p)
		dists[i] = d
		switch {
		case d > epsilon:
			sides[i] = 0
		case d < -epsilon:
			sides[i] = 1
		default:
			sides[i] = 2
		}
		counts[sides[i]]++
	}

	if counts[1] == 0 {
		return w // entirely in front (or on)
	}
	if counts[0] == 0 {
		return nil // entirely behind
	}

	out := make([]geom.Vec3, 0, n+4)
	for i := 0; i < n; i++ {
		p1 := w.points[i]

		if sides[i] == 2 {
			out = append(out, p1)
			continue
		}
		if sides[i] == 0 {
			out = append(out, p1)
		}

		next := (i + 1) % n
		if sides[next] == 2 || sides[next] == sides[i] {
			continue
		}

		p2 := w.points[next]
		t := dists[i] / (dists[i] - dists[next])
		out = append(out, geom.Lerp(p1, p2, t))
	}

	if len(out) < 3 {
		return nil
	}
	return &winding{points: out}
}

// bounds computes the AABB of the winding's vertices.
func (w *winding) bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, p := range w.points {
		b = b.AddPoint(p)
	}
	return b
}
