package world

import (
	"fmt"
	"sync/atomic"

	"github.com/bloodmagesoftware/collide/geom"
)

// Model is the in-memory representation of one loaded BSP map. It owns
// every array the tree walk addresses by index (§3 Data Model); nothing in
// this package or package trace ever holds a pointer into it.
type Model struct {
	Name     string
	Checksum uint32

	Planes      []geom.Plane
	Nodes       []Node
	Leaves      []Leaf
	Brushes     []Brush
	BrushSides  []BrushSide
	Shaders     []Shader
	LeafBrushes []int32
	LeafSurfaces []int32
	Submodels   []Submodel
	Patches     []Patch

	// RootNode is the index of the root node of Nodes for submodel 0.
	RootNode int32

	checkcount atomic.Uint64
}

// New returns an empty Model, ready to be populated by a loader.
func New(name string) *Model {
	return &Model{Name: name}
}

// BeginTrace bumps the model's generation counter and returns it. The
// counter is purely diagnostic/idempotence bookkeeping (§3 Ownership, §4.2,
// testable property #6): actual brush/patch dedup within one trace uses a
// fresh per-trace visitation set (package trace), not a field stamped on
// shared Brush/Patch values, so that many trace calls can run concurrently
// against one read-only Model — see DESIGN.md, "checkcount".
func (m *Model) BeginTrace() uint64 {
	return m.checkcount.Add(1)
}

// Checkcount returns the number of traces begun so far.
func (m *Model) Checkcount() uint64 { return m.checkcount.Load() }

// NumBrushes and NumPatches size the per-trace visitation sets.
func (m *Model) NumBrushes() int { return len(m.Brushes) }
func (m *Model) NumPatches() int { return len(m.Patches) }

// LeafBrushIndices returns the brush indices touched by a leaf (real or
// synthetic).
func (m *Model) LeafBrushIndices(l Leaf) []int32 {
	return m.LeafBrushes[l.FirstLeafBrush : l.FirstLeafBrush+l.NumLeafBrushes]
}

// LeafSurfaceIndices returns the patch indices touched by a leaf (real or
// synthetic).
func (m *Model) LeafSurfaceIndices(l Leaf) []int32 {
	return m.LeafSurfaces[l.FirstLeafSurface : l.FirstLeafSurface+l.NumLeafSurfaces]
}

// Sides returns the side range of a brush.
func (m *Model) Sides(b Brush) []BrushSide {
	return m.BrushSides[b.FirstSide : b.FirstSide+b.NumSides]
}

// Submodel looks up a submodel by index, returning an error for an
// out-of-range index rather than panicking — submodel indices usually come
// from network/entity data the core does not trust.
func (m *Model) Submodel(index int) (Submodel, error) {
	if index < 0 || index >= len(m.Submodels) {
		return Submodel{}, fmt.Errorf("submodel index %d out of range [0,%d)", index, len(m.Submodels))
	}
	return m.Submodels[index], nil
}

// Validate checks the load-time invariants §9 Open Question (c) asks
// implementations to assert rather than defensively branch on at query
// time: every plane's sign-mask must be in [0,8).
func (m *Model) Validate() error {
	for i, p := range m.Planes {
		if p.SignBits >= 8 {
			return fmt.Errorf("plane %d has invalid sign bits %d", i, p.SignBits)
		}
	}
	for i, b := range m.Brushes {
		if int(b.FirstSide+b.NumSides) > len(m.BrushSides) {
			return fmt.Errorf("brush %d side range [%d,%d) exceeds %d brush sides", i, b.FirstSide, b.FirstSide+b.NumSides, len(m.BrushSides))
		}
	}
	for i, l := range m.Leaves {
		if int(l.FirstLeafBrush+l.NumLeafBrushes) > len(m.LeafBrushes) {
			return fmt.Errorf("leaf %d brush range exceeds leafbrushes array", i)
		}
		if int(l.FirstLeafSurface+l.NumLeafSurfaces) > len(m.LeafSurfaces) {
			return fmt.Errorf("leaf %d surface range exceeds leafsurfaces array", i)
		}
	}
	return nil
}
