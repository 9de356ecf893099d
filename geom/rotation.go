package geom

import "math"

// Matrix3 is a row-major 3x3 rotation matrix.
type Matrix3 [3]Vec3

// RotationFromAngles builds a rotation matrix from pitch/yaw/roll angles in
// degrees (angles[0]=pitch, angles[1]=yaw, angles[2]=roll), the Quake-style
// Euler convention used to orient rotated submodels (§4.9
// transformedBoxTrace).
func RotationFromAngles(angles Vec3) Matrix3 {
	const deg2rad = math.Pi / 180

	sp, cp := math.Sincos(float64(angles.X) * deg2rad)
	sy, cy := math.Sincos(float64(angles.Y) * deg2rad)
	sr, cr := math.Sincos(float64(angles.Z) * deg2rad)

	return Matrix3{
		{
			X: float32(cp * cy),
			Y: float32(cp * sy),
			Z: float32(-sp),
		},
		{
			X: float32(sr*sp*cy - cr*sy),
			Y: float32(sr*sp*sy + cr*cy),
			Z: float32(sr * cp),
		},
		{
			X: float32(cr*sp*cy + sr*sy),
			Y: float32(cr*sp*sy - sr*cy),
			Z: float32(cr * cp),
		},
	}
}

// RotatePoint applies m to v.
func (m Matrix3) RotatePoint(v Vec3) Vec3 {
	return Vec3{
		X: m[0].Dot(v),
		Y: m[1].Dot(v),
		Z: m[2].Dot(v),
	}
}

// Transpose returns m's transpose, the inverse rotation since m is
// orthonormal.
func (m Matrix3) Transpose() Matrix3 {
	return Matrix3{
		{X: m[0].X, Y: m[1].X, Z: m[2].X},
		{X: m[0].Y, Y: m[1].Y, Z: m[2].Y},
		{X: m[0].Z, Y: m[1].Z, Z: m[2].Z},
	}
}
