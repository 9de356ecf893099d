// Package boxhull synthesizes a six-sided axial brush from an arbitrary
// AABB so that submodel-style queries against a box shape reuse the exact
// same brush-clipping code as a real map brush (§4.3).
package boxhull

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// faceNormals lists the six axial face normals in the brush-side
// invariant order (§3 Brush): -X,+X,-Y,+Y,-Z,+Z.
var faceNormals = [6]geom.Vec3{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

// Hull is a reusable handle onto a synthetic box brush appended into a
// world.Model's own arrays. Only its 12 plane distances and its brush's
// cached bounds need updating on reuse (Update); normals and sign-bits
// never change once built, matching §4.3's reuse contract.
type Hull struct {
	model       *world.Model
	planeBase   int32 // first of 12 consecutive plane slots (6 pairs)
	brushIndex  int32
	leafIndex   int32 // references the single synthetic brush
	emptyLeaf   int32 // brushless leaf, for a degenerate/empty box
}

// New reserves a box hull's slots inside m: six BrushSides, twelve Planes
// (each face plus its inward-facing twin), one Brush, two Leaves, and one
// LeafBrushes entry (§4.3).
func New(m *world.Model, contentFlags int32) *Hull {
	planeBase := int32(len(m.Planes))
	for _, n := range faceNormals {
		outward := geom.PlaneFromNormalDist(n, 0)
		m.Planes = append(m.Planes, outward, outward.Opposite())
	}

	firstSide := int32(len(m.BrushSides))
	for i := range faceNormals {
		m.BrushSides = append(m.BrushSides, world.BrushSide{
			PlaneIndex:  planeBase + int32(i)*2,
			ShaderIndex: -1,
		})
	}

	brushIndex := int32(len(m.Brushes))
	m.Brushes = append(m.Brushes, world.Brush{
		ContentFlags: contentFlags,
		FirstSide:    firstSide,
		NumSides:     6,
	})

	leafBrushIndex := int32(len(m.LeafBrushes))
	m.LeafBrushes = append(m.LeafBrushes, brushIndex)

	leafIndex := int32(len(m.Leaves))
	m.Leaves = append(m.Leaves, world.Leaf{
		FirstLeafBrush: leafBrushIndex,
		NumLeafBrushes: 1,
	})
	emptyLeaf := int32(len(m.Leaves))
	m.Leaves = append(m.Leaves, world.Leaf{})

	return &Hull{
		model:      m,
		planeBase:  planeBase,
		brushIndex: brushIndex,
		leafIndex:  leafIndex,
		emptyLeaf:  emptyLeaf,
	}
}

// SetContentFlags rewrites the content flags a query against this hull's
// brush must match, so one reusable Hull can stand in for entities of
// differing content types across repeated BoxVsBox calls.
func (h *Hull) SetContentFlags(contentFlags int32) {
	b := h.model.Brushes[h.brushIndex]
	b.ContentFlags = contentFlags
	h.model.Brushes[h.brushIndex] = b
}

// Update rewrites the hull's 12 plane distances and brush bounds to match
// a new mins/maxs, reusing every other field.
func (h *Hull) Update(mins, maxs geom.Vec3) {
	dists := [6]float32{
		-mins.X, maxs.X,
		-mins.Y, maxs.Y,
		-mins.Z, maxs.Z,
	}
	for i, d := range dists {
		outIdx := h.planeBase + int32(i)*2
		h.model.Planes[outIdx].Dist = d
		h.model.Planes[outIdx+1].Dist = -d
	}

	b := h.model.Brushes[h.brushIndex]
	b.Bounds = geom.Bounds{Mins: mins, Maxs: maxs}
	h.model.Brushes[h.brushIndex] = b
}

// Leaf returns the index of the synthetic leaf referencing the box brush.
func (h *Hull) Leaf() int32 { return h.leafIndex }

// LeafValue returns the synthetic leaf itself.
func (h *Hull) LeafValue() world.Leaf { return h.model.Leaves[h.leafIndex] }

// BrushIndex returns the global index of the synthesized brush.
func (h *Hull) BrushIndex() int32 { return h.brushIndex }

// EmptyLeaf returns the index of the brushless leaf, used when a query
// box is degenerate (mins > maxs on some axis).
func (h *Hull) EmptyLeaf() int32 { return h.emptyLeaf }

// Model returns the world.Model the hull's brush/plane/leaf slots live in,
// so a caller can hand the hull straight to a package trace function that
// otherwise takes a *world.Model.
func (h *Hull) Model() *world.Model { return h.model }
