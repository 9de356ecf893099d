package patch

import (
	"fmt"

	"github.com/bloodmagesoftware/collide/geom"
)

// MaxFacetBorders is the hard cap on one facet's border count: 4 quad
// edges + 6 axial bevels + 16 edge-slant bevels (§4.4 step 8). Builds that
// would exceed it log and skip the remaining bevels rather than grow the
// facet, matching the source's fixed-size scratch array.
const MaxFacetBorders = 4 + 6 + 16

// Facet is a convex polygon of the patch surface: a surface plane plus a
// set of border planes (edges of the source triangle/quad, plus synthetic
// bevels) each tagged with whether its "inward" side (the side containing
// the facet) is the plane's front or back.
type Facet struct {
	SurfacePlane   int32
	Borders        []int32
	BorderInward   []bool
	BorderNoAdjust []bool
}

func (f *Facet) addBorder(planeIndex int32, inward bool) bool {
	if len(f.Borders) >= MaxFacetBorders {
		return false
	}
	f.Borders = append(f.Borders, planeIndex)
	f.BorderInward = append(f.BorderInward, inward)
	f.BorderNoAdjust = append(f.BorderNoAdjust, false)
	return true
}

// buildResult accumulates everything generateFacets produces: the finished
// facets plus any data-anomaly warnings (§7 taxonomy #3) worth surfacing to
// a caller's log sink without aborting the whole patch.
type buildResult struct {
	facets   []Facet
	warnings []string
}

// generateFacets triangulates every 1x1 quad of a fully subdivided grid
// into one flat facet (if its two triangles share a plane) or two facets
// (otherwise), with border planes from the quad's edges (§4.4 step 5).
func generateFacets(g *Grid, planes *planeTable) *buildResult {
	res := &buildResult{}

	for i := 0; i < g.Width-1; i++ {
		for j := 0; j < g.Height-1; j++ {
			p00 := g.at(j, i)
			p10 := g.at(j, i+1)
			p11 := g.at(j+1, i+1)
			p01 := g.at(j+1, i)

			planeA, okA := planeFromPoints(p00, p10, p11)
			planeB, okB := planeFromPoints(p00, p11, p01)

			if !okA && !okB {
				continue // fully degenerate quad, skip it
			}
			if !okA {
				planeA = planeB
				okA = true
			}
			if !okB {
				planeB = planeA
				okB = true
			}

			if coplanar(planeA, planeB) {
				facet, warn := buildQuadFacet(planes, planeA, p00, p10, p11, p01)
				if warn != "" {
					res.warnings = append(res.warnings, warn)
				}
				if facet != nil {
					res.facets = append(res.facets, *facet)
				}
				continue
			}

			facetA, warnA := buildTriFacet(planes, planeA, p00, p10, p11)
			facetB, warnB := buildTriFacet(planes, planeB, p00, p11, p01)
			for _, w := range []string{warnA, warnB} {
				if w != "" {
					res.warnings = append(res.warnings, w)
				}
			}
			if facetA != nil {
				res.facets = append(res.facets, *facetA)
			}
			if facetB != nil {
				res.facets = append(res.facets, *facetB)
			}
		}
	}

	return res
}

func coplanar(a, b geom.Plane) bool {
	return a.Normal.Dot(b.Normal) > 0.999 && abs32(a.Dist-b.Dist) < PlaneTriEpsilon
}

func buildQuadFacet(planes *planeTable, surface geom.Plane, p00, p10, p11, p01 geom.Vec3) (*Facet, string) {
	surfaceIdx, err := planes.findPlane(surface.Normal, surface.Dist)
	if err != nil {
		return nil, err.Error()
	}

	facet := &Facet{SurfacePlane: surfaceIdx}
	edges := [4][2]geom.Vec3{{p00, p10}, {p10, p11}, {p11, p01}, {p01, p00}}
	for _, e := range edges {
		addEdgeBorder(planes, facet, surface.Normal, e[0], e[1])
	}

	return validateAndOrient(facet, planes, []geom.Vec3{p00, p10, p11, p01})
}

func buildTriFacet(planes *planeTable, surface geom.Plane, a, b, c geom.Vec3) (*Facet, string) {
	surfaceIdx, err := planes.findPlane(surface.Normal, surface.Dist)
	if err != nil {
		return nil, err.Error()
	}

	facet := &Facet{SurfacePlane: surfaceIdx}
	edges := [3][2]geom.Vec3{{a, b}, {b, c}, {c, a}}
	for _, e := range edges {
		addEdgeBorder(planes, facet, surface.Normal, e[0], e[1])
	}

	return validateAndOrient(facet, planes, []geom.Vec3{a, b, c})
}

// addEdgeBorder synthesizes the "edge plane" fallback described in §4.4
// step 5: a plane through the edge, tilted by the facet's own normal
// (rather than an adjacent quad's triangle plane), found or inserted via
// the loose-tolerance plane table.
func addEdgeBorder(planes *planeTable, facet *Facet, facetNormal, p1, p2 geom.Vec3) {
	edge := p2.Sub(p1)
	tilted := facetNormal.Scale(4)
	normal := edge.Cross(tilted)
	unit, length := normal.Normalize()
	if length < 1e-6 {
		return
	}
	dist := unit.Dot(p1)

	idx, err := planes.findPlane(unit, dist)
	if err != nil {
		return
	}
	facet.addBorder(idx, false) // inward orientation is resolved below
}

// validateAndOrient runs setBorderInward (§4.4 step 6), validateFacet
// (§4.4 step 7), and addFacetBevels (§4.4 step 8) in sequence, returning
// nil if the facet doesn't survive validation — a dropped facet is a
// logged data anomaly (§7 taxonomy #3), not a load failure.
func validateAndOrient(facet *Facet, planes *planeTable, corners []geom.Vec3) (*Facet, string) {
	warn := setBorderInward(facet, planes, corners)

	w := validateFacet(facet, planes)
	if w == nil {
		if warn == "" {
			warn = "facet failed winding validation and was dropped"
		}
		return nil, warn
	}

	if bevelWarnings := addFacetBevels(facet, w, planes); len(bevelWarnings) > 0 && warn == "" {
		warn = bevelWarnings[0]
	}

	return facet, warn
}

// setBorderInward classifies a facet's own corner points against each of
// its border planes to decide which side is "inward" (contains the
// facet). Mixed classification across corners indicates the border
// bisects the facet — a data bug, not a solver error (§4.4 step 6, §7
// taxonomy #3) — in which case the border is dropped rather than left
// ambiguous.
func setBorderInward(facet *Facet, planes *planeTable, corners []geom.Vec3) string {
	const epsilon = 0.001
	var warning string

	kept := facet.Borders[:0:0]
	keptInward := facet.BorderInward[:0:0]
	keptNoAdjust := facet.BorderNoAdjust[:0:0]

	for bi, planeIdx := range facet.Borders {
		pl := planes.get(planeIdx)

		front, back := false, false
		for _, c := range corners {
			d := pl.DistanceToPoint(c)
			switch {
			case d > epsilon:
				front = true
			case d < -epsilon:
				back = true
			}
		}

		switch {
		case front && !back:
			kept = append(kept, planeIdx)
			keptInward = append(keptInward, false)
			keptNoAdjust = append(keptNoAdjust, facet.BorderNoAdjust[bi])
		case back && !front:
			kept = append(kept, planeIdx)
			keptInward = append(keptInward, true)
			keptNoAdjust = append(keptNoAdjust, facet.BorderNoAdjust[bi])
		case !front && !back:
			// Coplanar with the facet: not a real constraint, drop it.
		default:
			warning = fmt.Sprintf("border plane %d bisects facet corners (bisecting case)", planeIdx)
		}
	}

	facet.Borders = kept
	facet.BorderInward = keptInward
	facet.BorderNoAdjust = keptNoAdjust
	return warning
}

// validateFacet seeds a maximal winding in the surface plane and clips it
// against every border (flipped by the border's inward flag), rejecting
// facets whose surviving winding is empty or exceeds MAX_MAP_BOUNDS
// (§4.4 step 7). Returns the surviving winding so addFacetBevels can use
// its actual vertices/AABB, or nil if the facet doesn't survive.
func validateFacet(facet *Facet, planes *planeTable) *winding {
	if len(facet.Borders) == 0 {
		return nil
	}

	w := baseWindingForPlane(planes.get(facet.SurfacePlane))
	for i, planeIdx := range facet.Borders {
		pl := planes.get(planeIdx)
		if facet.BorderInward[i] {
			pl = pl.Opposite()
		}
		w = w.clip(pl, 0.001)
		if w == nil {
			return nil
		}
	}

	b := w.bounds()
	if b.Mins.X < -maxMapBounds || b.Maxs.X > maxMapBounds ||
		b.Mins.Y < -maxMapBounds || b.Maxs.Y > maxMapBounds ||
		b.Mins.Z < -maxMapBounds || b.Maxs.Z > maxMapBounds {
		return nil
	}
	return w
}
