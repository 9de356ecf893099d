package patch

import "github.com/bloodmagesoftware/collide/geom"

// axialDirections are the six axis-aligned bevel candidate normals.
var axialDirections = [6]geom.Vec3{
	{X: -1}, {X: 1},
	{Y: -1}, {Y: 1},
	{Z: -1}, {Z: 1},
}

// addFacetBevels appends bevel planes (§4.4 step 8) to facet so it behaves
// like a brush's half-space set when clipped against a swept box: one
// axial tangent plane per AABB face not already coplanar with an existing
// border, one slanted plane per (non-axial edge x axial direction) pair
// that bounds every facet vertex, and a final "ceiling" plane opposite the
// surface plane. Bevels beyond MaxFacetBorders are logged and skipped
// rather than grown past the fixed budget.
func addFacetBevels(facet *Facet, w *winding, planes *planeTable) []string {
	var warnings []string
	bounds := w.bounds()

	for _, dir := range axialDirections {
		dist := axialTangentDist(dir, bounds)
		if facetHasSimilarBorder(facet, planes, dir, dist) {
			continue
		}
		idx, err := planes.findPlane(dir, dist)
		if err != nil {
			warnings = append(warnings, "patch facet bevel budget exceeded, skipping remaining axial bevels")
			return warnings
		}
		if !facet.addBorder(idx, !allVerticesInFront(w, planes.get(idx))) {
			warnings = append(warnings, "patch facet exceeded MAX border count, skipping remaining bevels")
			return warnings
		}
	}

	n := len(w.points)
	for i := 0; i < n; i++ {
		p1 := w.points[i]
		p2 := w.points[(i+1)%n]
		edge := p2.Sub(p1)
		if isAxialEdge(edge) {
			continue
		}

		for _, dir := range axialDirections {
			normal := edge.Cross(dir)
			unit, length := normal.Normalize()
			if length < 1e-6 {
				continue
			}
			dist := unit.Dot(p1)
			candidate := geom.PlaneFromNormalDist(unit, dist)

			if !allVerticesBehind(w, candidate) {
				continue
			}
			if facetHasSimilarBorder(facet, planes, unit, dist) {
				continue
			}

			idx, err := planes.findPlane(unit, dist)
			if err != nil {
				warnings = append(warnings, "patch facet bevel budget exceeded, skipping remaining edge bevels")
				return warnings
			}
			if !facet.addBorder(idx, true) {
				warnings = append(warnings, "patch facet exceeded MAX border count, skipping remaining bevels")
				return warnings
			}
		}
	}

	// The ceiling border is the exact opposite of the surface plane, so a
	// tight-equality lookup (rather than findPlane's loose triangulation
	// tolerance) can recognize and reuse the surface plane's own table
	// entry flipped, instead of inserting a near-duplicate. flipped=true
	// means the match found was the surface plane itself, stored the
	// other way round, so the inward sense must invert to compensate.
	surface := planes.get(facet.SurfacePlane)
	ceiling := surface.Opposite()
	idx, flipped, err := planes.findPlane2(ceiling.Normal, ceiling.Dist)
	if err != nil {
		warnings = append(warnings, "patch facet bevel budget exceeded, skipping ceiling border")
		return warnings
	}
	facet.addBorder(idx, !flipped)

	return warnings
}

func axialTangentDist(dir geom.Vec3, b geom.Bounds) float32 {
	switch {
	case dir.X > 0:
		return b.Maxs.X
	case dir.X < 0:
		return -b.Mins.X
	case dir.Y > 0:
		return b.Maxs.Y
	case dir.Y < 0:
		return -b.Mins.Y
	case dir.Z > 0:
		return b.Maxs.Z
	default:
		return -b.Mins.Z
	}
}

func isAxialEdge(edge geom.Vec3) bool {
	nonZero := 0
	const epsilon = 1e-4
	if abs32(edge.X) > epsilon {
		nonZero++
	}
	if abs32(edge.Y) > epsilon {
		nonZero++
	}
	if abs32(edge.Z) > epsilon {
		nonZero++
	}
	return nonZero <= 1
}

func allVerticesInFront(w *winding, pl geom.Plane) bool {
	for _, p := range w.points {
		if pl.DistanceToPoint(p) < -0.01 {
			return false
		}
	}
	return true
}

func allVerticesBehind(w *winding, pl geom.Plane) bool {
	for _, p := range w.points {
		if pl.DistanceToPoint(p) > 0.01 {
			return false
		}
	}
	return true
}

func facetHasSimilarBorder(facet *Facet, planes *planeTable, normal geom.Vec3, dist float32) bool {
	for _, idx := range facet.Borders {
		existing := planes.get(idx)
		if existing.Normal.Dot(normal) > 0.999 && abs32(existing.Dist-dist) < PlaneTriEpsilon {
			return true
		}
	}
	return false
}
