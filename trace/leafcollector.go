package trace

import (
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// maxPositionLeafs bounds PositionTest's leaf collection (§4.6): a
// PositionTest only ever needs the leaves touching a single point-sized
// query box, so a fixed bound catches a malformed tree instead of growing
// without limit.
const maxPositionLeafs = 1024

// leafCollector gathers every leaf whose bounds the query box touches,
// descending the BSP tree with BoxOnPlaneSide classification exactly like
// the sweep solver but without fraction tracking (§4.5).
type leafCollector struct {
	model    *world.Model
	mins     geom.Vec3
	maxs     geom.Vec3
	leaves   []int32
	overflow bool
}

func newLeafCollector(m *world.Model, mins, maxs geom.Vec3, cap int) *leafCollector {
	return &leafCollector{
		model:  m,
		mins:   mins,
		maxs:   maxs,
		leaves: make([]int32, 0, cap),
	}
}

// collect descends from nodeIndex, appending every touched leaf index.
// Once the collector has overflowed, it keeps descending (so the sign of
// "did we miss something" is sticky) but stops appending.
func (c *leafCollector) collect(nodeIndex int32) {
	for {
		if world.ChildIsLeaf(nodeIndex) {
			c.addLeaf(world.LeafIndex(nodeIndex))
			return
		}

		node := c.model.Nodes[nodeIndex]
		plane := c.model.Planes[node.PlaneIndex]
		side := geom.BoxOnPlaneSide(c.mins, c.maxs, plane)

		switch side {
		case geom.SideFront:
			nodeIndex = node.Children[0]
		case geom.SideBack:
			nodeIndex = node.Children[1]
		default:
			c.collect(node.Children[0])
			nodeIndex = node.Children[1]
		}
	}
}

func (c *leafCollector) addLeaf(leafIndex int32) {
	leaf := c.model.Leaves[leafIndex]
	query := geom.Bounds{Mins: c.mins, Maxs: c.maxs}
	if !leaf.Bounds.Touches(query, geom.BoundsClipEpsilon) {
		return
	}
	if len(c.leaves) >= cap(c.leaves) {
		c.overflow = true
		return
	}
	c.leaves = append(c.leaves, leafIndex)
}
