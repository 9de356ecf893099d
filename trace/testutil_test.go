package trace

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// addAxialBrush appends a six-sided axial brush spanning mins..maxs to m
// and returns its index. Planes follow the -X,+X,-Y,+Y,-Z,+Z order
// required by the brush invariant (§3 Brush).
func addAxialBrush(m *world.Model, mins, maxs geom.Vec3, contentFlags int32) int32 {
	normals := [6]geom.Vec3{
		{X: -1}, {X: 1},
		{Y: -1}, {Y: 1},
		{Z: -1}, {Z: 1},
	}
	dists := [6]float32{
		-mins.X, maxs.X,
		-mins.Y, maxs.Y,
		-mins.Z, maxs.Z,
	}

	firstSide := int32(len(m.BrushSides))
	for i := 0; i < 6; i++ {
		planeIdx := int32(len(m.Planes))
		m.Planes = append(m.Planes, geom.PlaneFromNormalDist(normals[i], dists[i]))
		m.BrushSides = append(m.BrushSides, world.BrushSide{PlaneIndex: planeIdx, ShaderIndex: -1})
	}

	brushIndex := int32(len(m.Brushes))
	m.Brushes = append(m.Brushes, world.Brush{
		ContentFlags: contentFlags,
		Bounds:       geom.Bounds{Mins: mins, Maxs: maxs},
		FirstSide:    firstSide,
		NumSides:     6,
	})
	return brushIndex
}

// singleLeafWorld builds a model whose entire tree is one leaf containing
// every given brush, with RootNode directly encoding that leaf. This is
// enough to exercise traceThroughTree's leaf dispatch without needing an
// actual split.
func singleLeafWorld(brushSpans [][2]geom.Vec3, contentFlags int32) *world.Model {
	m := world.New("test")
	var brushes []int32
	for _, span := range brushSpans {
		brushes = append(brushes, addAxialBrush(m, span[0], span[1], contentFlags))
	}

	firstLeafBrush := int32(len(m.LeafBrushes))
	m.LeafBrushes = append(m.LeafBrushes, brushes...)

	const worldExtent = 8192
	m.Leaves = append(m.Leaves, world.Leaf{
		Bounds:         geom.Bounds{Mins: geom.Vec3{X: -worldExtent, Y: -worldExtent, Z: -worldExtent}, Maxs: geom.Vec3{X: worldExtent, Y: worldExtent, Z: worldExtent}},
		FirstLeafBrush: firstLeafBrush,
		NumLeafBrushes: int32(len(brushes)),
	})

	m.RootNode = world.EncodeLeaf(0)
	return m
}

// worldWithSubmodel builds a model with an empty root leaf (so nothing in
// brushSpans is reachable through the root tree) plus a single non-world
// submodel at index 1, whose own synthetic Leaf owns brushSpans directly
// (§3 Submodel). This is what lets a test prove TransformedBoxTrace's
// submodel dispatch actually reaches submodel geometry, rather than
// silently falling through to (and missing against) the root tree.
func worldWithSubmodel(brushSpans [][2]geom.Vec3, contentFlags int32) *world.Model {
	m := world.New("test")

	const worldExtent = 8192
	m.Leaves = append(m.Leaves, world.Leaf{
		Bounds: geom.Bounds{Mins: geom.Vec3{X: -worldExtent, Y: -worldExtent, Z: -worldExtent}, Maxs: geom.Vec3{X: worldExtent, Y: worldExtent, Z: worldExtent}},
	})
	m.RootNode = world.EncodeLeaf(0)

	var brushes []int32
	bounds := geom.EmptyBounds()
	for _, span := range brushSpans {
		brushes = append(brushes, addAxialBrush(m, span[0], span[1], contentFlags))
		bounds = bounds.Union(geom.Bounds{Mins: span[0], Maxs: span[1]})
	}

	firstLeafBrush := int32(len(m.LeafBrushes))
	m.LeafBrushes = append(m.LeafBrushes, brushes...)

	m.Submodels = []world.Submodel{
		{}, // submodel 0 (the world); this helper gives it no brushes
		{
			Bounds: bounds,
			Leaf: world.Leaf{
				Bounds:         bounds,
				FirstLeafBrush: firstLeafBrush,
				NumLeafBrushes: int32(len(brushes)),
			},
		},
	}

	return m
}
