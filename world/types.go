// Package world holds the in-memory representation of a loaded BSP map:
// planes, nodes, leaves, brushes, shaders and patch surfaces, all addressed
// by integer index rather than pointer so the whole structure is a set of
// flat, serializable arenas (§9 Design Notes: "pointer graph -> indexed
// arenas").
package world

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/patch"
)

// Node is an internal BSP node: a splitting plane and two children. A
// non-negative child is another node index; a negative child encodes a
// leaf index as leafIndex = -1 - child.
type Node struct {
	PlaneIndex int32
	Children   [2]int32
}

// ChildIsLeaf reports whether a node's child slot refers to a leaf.
func ChildIsLeaf(child int32) bool { return child < 0 }

// LeafIndex decodes a negative child slot into a leaf index.
func LeafIndex(child int32) int32 { return -1 - child }

// EncodeLeaf is the inverse of LeafIndex, used by loaders/tests that build
// trees directly instead of parsing a map file.
func EncodeLeaf(leafIndex int32) int32 { return -1 - leafIndex }

// Leaf is a convex region of the tree. FirstLeafBrush/NumLeafBrushes and
// FirstLeafSurface/NumLeafSurfaces index into WorldModel.LeafBrushes and
// WorldModel.LeafSurfaces respectively — never directly into Brushes or
// Patches, so that submodels' synthetic leaves (§3 Submodel) and BoxHull's
// synthetic leaf (§4.3) can share the exact same lookup path as real BSP
// leaves.
type Leaf struct {
	Cluster           int32
	Area              int32
	Bounds            geom.Bounds
	FirstLeafBrush    int32
	NumLeafBrushes    int32
	FirstLeafSurface  int32
	NumLeafSurfaces   int32
}

// BrushSide is one half-space of a Brush: a plane reference, the shader it
// was cut from, and that shader's surface flags cached for the hot path.
type BrushSide struct {
	PlaneIndex   int32
	ShaderIndex  int32
	SurfaceFlags int32
}

// Brush is a convex volume, the intersection of its half-spaces. By
// invariant (§3) the first six sides of a non-degenerate brush are the
// axial min/max planes in order -X,+X,-Y,+Y,-Z,+Z, from which Bounds is
// derived. The trace code still clips against every side, axial ones
// included; Bounds serves only as a prefilter.
type Brush struct {
	ContentFlags int32
	Bounds       geom.Bounds
	FirstSide    int32
	NumSides     int32
}

// Shader is metadata looked up by index and forwarded into Trace results;
// the core never interprets its fields beyond forwarding them.
type Shader struct {
	Name         string
	SurfaceFlags int32
	ContentFlags int32
}

// Submodel is a named, non-root subtree: a bounding box plus a synthetic
// Leaf referencing its own brush/surface ranges. Submodel 0 is the world
// and is queried through the root Node tree instead of its Leaf.
type Submodel struct {
	Bounds geom.Bounds
	Leaf   Leaf
}

// Patch pairs a loaded PatchCollide with the shader it was cut from, so the
// sweep/position solvers can report correct surface/content flags for a
// patch hit exactly as they would for a brush side.
type Patch struct {
	Collide      *patch.PatchCollide
	ShaderIndex  int32
	ContentFlags int32
	SurfaceFlags int32
}
