// Package geom implements the fixed-width vector and plane math the rest of
// the collision system is built on: f32 vector arithmetic, f64 accumulation
// for BSP descent and brush clipping, and plane side-classification.
package geom

import "math"

// Vec3 is a single-precision 3D vector. Every world-space quantity in the
// tree (points, normals, bounds) is a Vec3.
type Vec3 struct {
	X, Y, Z float32
}

// Zero is the zero vector.
var Zero = Vec3{}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

// MA is "multiply-add": a + b*s.
func (a Vec3) MA(s float32, b Vec3) Vec3 {
	return Vec3{a.X + b.X*s, a.Y + b.Y*s, a.Z + b.Z*s}
}

func (a Vec3) Dot(b Vec3) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) LengthSquared() float32 { return a.Dot(a) }

func (a Vec3) Length() float32 {
	return float32(math.Sqrt(float64(a.LengthSquared())))
}

// Normalize returns a unit-length copy of a and its original length. A zero
// vector normalizes to itself with length 0.
func (a Vec3) Normalize() (Vec3, float32) {
	length := a.Length()
	if length == 0 {
		return a, 0
	}
	inv := 1 / length
	return Vec3{a.X * inv, a.Y * inv, a.Z * inv}, length
}

// Component returns the axis value selected by a 0/1/2 axis index.
func (a Vec3) Component(axis int) float32 {
	switch axis {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func (a Vec3) SetComponent(axis int, v float32) Vec3 {
	switch axis {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		a.Z = v
	}
	return a
}

// DotD accumulates a dot product in f64. The mixed-precision rule (§4.1):
// inputs stay f32, but BSP descent and brush clipping accumulate in f64 to
// avoid error buildup on large maps.
func DotD(a, b Vec3) float64 {
	return float64(a.X)*float64(b.X) + float64(a.Y)*float64(b.Y) + float64(a.Z)*float64(b.Z)
}

// Lerp linearly interpolates between a and b at parameter t.
func Lerp(a, b Vec3, t float32) Vec3 {
	return Vec3{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
		Z: a.Z + t*(b.Z-a.Z),
	}
}

// Min and Max build the componentwise extremes of two vectors, used to
// grow bounding boxes.
func Min(a, b Vec3) Vec3 {
	return Vec3{min32(a.X, b.X), min32(a.Y, b.Y), min32(a.Z, b.Z)}
}

func Max(a, b Vec3) Vec3 {
	return Vec3{max32(a.X, b.X), max32(a.Y, b.Y), max32(a.Z, b.Z)}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
