// Package patch converts a bicubic quadratic Bézier control-point mesh into
// a PatchCollide: a set of convex facets (surface plane + border planes +
// bevels) that the sweep/position solver can clip against exactly like a
// brush (§4.4).
package patch

import (
	"fmt"

	"github.com/bloodmagesoftware/collide/geom"
)

const (
	// MaxGridSize bounds both dimensions of the input control-point mesh.
	MaxGridSize = 129

	// WrapPointEpsilon controls wrap-seam detection (§4.4 step 1).
	WrapPointEpsilon = 0.1

	// SubdivideDistance is the flatness tolerance driving grid
	// subdivision (§4.4 step 2).
	SubdivideDistance = 16

	// GridPointEpsilon controls degenerate-column collapse (§4.4 step 4).
	GridPointEpsilon = 0.1
)

// Grid is a width x height mesh of control points. Both dimensions must be
// odd (so every other column/row is an approximating Bézier control
// point), and the mesh is row-major: Points[row][col].
type Grid struct {
	Width, Height         int
	WrapWidth, WrapHeight bool
	Points                [][]geom.Vec3
}

// NewGrid allocates a Width x Height grid of zero points.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height}
	g.Points = make([][]geom.Vec3, height)
	for i := range g.Points {
		g.Points[i] = make([]geom.Vec3, width)
	}
	return g
}

func (g *Grid) at(row, col int) geom.Vec3   { return g.Points[row][col] }
func (g *Grid) set(row, col int, v geom.Vec3) { g.Points[row][col] = v }

// validateGrid enforces the §4.4 input constraints.
func validateGrid(width, height int) error {
	if width < 3 || height < 3 {
		return fmt.Errorf("patch grid must be at least 3x3, got %dx%d", width, height)
	}
	if width%2 == 0 || height%2 == 0 {
		return fmt.Errorf("patch grid dimensions must be odd, got %dx%d", width, height)
	}
	if width > MaxGridSize || height > MaxGridSize {
		return fmt.Errorf("patch grid %dx%d exceeds MAX_GRID_SIZE=%d", width, height, MaxGridSize)
	}
	return nil
}

// NewGridFromControlPoints builds a Grid from a row-major flat slice of
// control points, validating §4.4's shape constraints.
func NewGridFromControlPoints(width, height int, points []geom.Vec3) (*Grid, error) {
	if err := validateGrid(width, height); err != nil {
		return nil, err
	}
	if len(points) != width*height {
		return nil, fmt.Errorf("expected %d control points, got %d", width*height, len(points))
	}
	g := NewGrid(width, height)
	for row := 0; row < height; row++ {
		copy(g.Points[row], points[row*width:(row+1)*width])
	}
	return g, nil
}

// transpose returns a new grid with rows and columns swapped, used to
// subdivide rows by re-running the column subdivision pass (§4.4 step 3).
func (g *Grid) transpose() *Grid {
	t := NewGrid(g.Height, g.Width)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			t.set(col, row, g.at(row, col))
		}
	}
	t.WrapWidth, t.WrapHeight = g.WrapHeight, g.WrapWidth
	return t
}

// detectWrapWidth marks WrapWidth if the leftmost and rightmost columns
// coincide on every row (§4.4 step 1).
func (g *Grid) detectWrapWidth() {
	for row := 0; row < g.Height; row++ {
		d := g.at(row, 0).Sub(g.at(row, g.Width-1))
		if d.LengthSquared() > WrapPointEpsilon*WrapPointEpsilon {
			g.WrapWidth = false
			return
		}
	}
	g.WrapWidth = true
}

// subdivideColumns repeatedly flattens or splits triples of consecutive
// columns until every triple passes the flatness test (§4.4 step 2): a flat
// triple loses its approximating column, a curved one is split and
// retested. It mutates g.Points/g.Width in place by rebuilding the point
// matrix.
func (g *Grid) subdivideColumns() {
	for i := 0; i < g.Width-2; {
		allFlat := true
		for row := 0; row < g.Height; row++ {
			p0 := g.at(row, i)
			p1 := g.at(row, i+1)
			p2 := g.at(row, i+2)

			mid := geom.Lerp(p0, p2, 0.5)
			bezierMid := quadraticBezierPoint(p0, p1, p2, 0.5)

			if mid.Sub(bezierMid).LengthSquared() > SubdivideDistance*SubdivideDistance {
				allFlat = false
				break
			}
		}

		if allFlat {
			// Column i+1 lies within SubdivideDistance of the chord on
			// every row: drop it, and the old i+2 starts the next segment.
			g.deleteColumn(i + 1)
			i++
			continue
		}

		// Split via de Casteljau: insert two new columns so that i+1 and
		// i+3 become the new control midpoints and i+2 the new Bézier
		// midpoint, then retry this same index (the left half may still
		// fail the flatness test).
		g.splitColumn(i)
	}
}

// splitColumn performs de Casteljau subdivision of the quadratic Bézier
// segment spanning columns i, i+1, i+2, replacing it with five columns
// i..i+4 (growing the grid by two columns).
func (g *Grid) splitColumn(i int) {
	newWidth := g.Width + 2
	newPoints := make([][]geom.Vec3, g.Height)

	for row := 0; row < g.Height; row++ {
		p0 := g.at(row, i)
		p1 := g.at(row, i+1)
		p2 := g.at(row, i+2)

		left1 := geom.Lerp(p0, p1, 0.5)
		right1 := geom.Lerp(p1, p2, 0.5)
		mid := geom.Lerp(left1, right1, 0.5)

		row5 := make([]geom.Vec3, newWidth)
		copy(row5[:i], g.Points[row][:i])
		row5[i] = p0
		row5[i+1] = left1
		row5[i+2] = mid
		row5[i+3] = right1
		row5[i+4] = p2
		copy(row5[i+5:], g.Points[row][i+3:])

		newPoints[row] = row5
	}

	g.Points = newPoints
	g.Width = newWidth
}

// quadraticBezierPoint evaluates the quadratic Bézier curve through p0
// (endpoint), p1 (control point), p2 (endpoint) at parameter t.
func quadraticBezierPoint(p0, p1, p2 geom.Vec3, t float32) geom.Vec3 {
	a := geom.Lerp(p0, p1, t)
	b := geom.Lerp(p1, p2, t)
	return geom.Lerp(a, b, t)
}

// removeDegenerateColumns drops any column whose every row lies within
// GridPointEpsilon of the next column (§4.4 step 4).
func (g *Grid) removeDegenerateColumns() {
	for i := 0; i < g.Width-1; {
		degenerate := true
		for row := 0; row < g.Height; row++ {
			d := g.at(row, i).Sub(g.at(row, i+1))
			if d.LengthSquared() > GridPointEpsilon*GridPointEpsilon {
				degenerate = false
				break
			}
		}
		if !degenerate {
			i++
			continue
		}
		g.deleteColumn(i)
	}
}

func (g *Grid) deleteColumn(i int) {
	newWidth := g.Width - 1
	newPoints := make([][]geom.Vec3, g.Height)
	for row := 0; row < g.Height; row++ {
		newRow := make([]geom.Vec3, newWidth)
		copy(newRow[:i], g.Points[row][:i])
		copy(newRow[i:], g.Points[row][i+1:])
		newPoints[row] = newRow
	}
	g.Points = newPoints
	g.Width = newWidth
}

// subdivide runs the full §4.4 steps 1-4 pipeline: detect wrap, subdivide
// columns and drop degenerate ones, then do the same to the rows through a
// transpose, and transpose back.
func subdivide(g *Grid) *Grid {
	g.detectWrapWidth()
	g.subdivideColumns()
	g.removeDegenerateColumns()

	t := g.transpose()
	t.detectWrapWidth()
	t.subdivideColumns()
	t.removeDegenerateColumns()

	return t.transpose()
}
