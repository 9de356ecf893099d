// Package trace implements the public sweep/position solver: BSP descent
// with Minkowski-expanded planes, per-brush half-space clipping, and patch
// traversal (§4.6-§4.9). It is the orchestration layer that ties together
// geom, world, boxhull and patch into the system's public operations.
package trace

import "github.com/bloodmagesoftware/collide/geom"

// Trace is the result of one boxTrace/transformedBoxTrace call (§3 Data
// Model, Trace result).
type Trace struct {
	// AllSolid is true if the entire sweep is embedded in solid geometry.
	AllSolid bool
	// StartSolid is true if the start point is embedded in solid
	// geometry. AllSolid implies StartSolid.
	StartSolid bool
	// Fraction is the parameter in [0,1] along the sweep at which first
	// contact occurs; 1.0 means nothing was hit.
	Fraction float32
	// EndPos is the resulting position: start + Fraction*(end-start),
	// computed from the original, unsymmetrized endpoints.
	EndPos geom.Vec3
	// Plane is the contact plane. Only meaningful when Fraction < 1 and
	// !AllSolid (testable property #4: plane validity).
	Plane geom.Plane
	// SurfaceFlags and ContentFlags describe whatever was struck.
	SurfaceFlags int32
	ContentFlags int32
}

// initialTrace returns the zero-contact trace state §4.10's state machine
// starts from.
func initialTrace() Trace {
	return Trace{Fraction: 1}
}
