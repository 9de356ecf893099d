package patch

import "github.com/bloodmagesoftware/collide/geom"

// PatchCollide is the immutable, load-time product of converting one
// quadratic-Bézier patch surface into brush-like collision geometry: an
// AABB plus owned plane and facet arrays (§3 Data Model).
type PatchCollide struct {
	Bounds geom.Bounds
	Planes []geom.Plane
	Facets []Facet
}

// GenerateResult carries the built PatchCollide plus any non-fatal
// warnings collected along the way (§7 taxonomy #3: logged, not aborting).
type GenerateResult struct {
	Collide  *PatchCollide
	Warnings []string
}

// Generate runs the full §4.4 pipeline: subdivide the input grid until
// flat, drop degenerate columns, triangulate into facets with borders and
// bevels, and package the result. All scratch state (the plane table) is
// local to this call, never shared across concurrent builds (§9 Design
// Notes).
func Generate(g *Grid, width, height int) (*GenerateResult, error) {
	if err := validateGrid(width, height); err != nil {
		return nil, err
	}

	refined := subdivide(g)

	planes := newPlaneTable()
	built := generateFacets(refined, planes)

	bounds := geom.EmptyBounds()
	for row := 0; row < refined.Height; row++ {
		for col := 0; col < refined.Width; col++ {
			bounds = bounds.AddPoint(refined.at(row, col))
		}
	}

	return &GenerateResult{
		Collide: &PatchCollide{
			Bounds: bounds,
			Planes: planes.planes,
			Facets: built.facets,
		},
		Warnings: built.warnings,
	}, nil
}
