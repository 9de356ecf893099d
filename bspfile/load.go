package bspfile

import (
	"context"
	"fmt"
	"sync"

	"github.com/bloodmagesoftware/collide/boxhull"
	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
	"golang.org/x/crypto/md4"
)

// Source is the external byte-slice producer for a named map (§1: BSP file
// parsing from disk is an external collaborator of the core, reached only
// through this function). A typical caller passes a thin os.ReadFile
// wrapper; tests pass an in-memory map.
type Source func(name string) ([]byte, error)

// Sink receives non-fatal warnings collected while loading (§7 taxonomy
// #3: data anomalies are logged, not fatal). A nil Sink discards them.
type Sink func(format string, args ...any)

// Loader caches loaded maps by name so repeated loadMap calls with the
// same name are a no-op (§6 "idempotent: a re-load with the same name is
// a no-op that returns the cached checksum"), matching original_source's
// `if (!strcmp(cm.name, name) && clientload) return cached checksum`.
// Map load/clear are mutually exclusive with everything else that touches
// the cache (§5 Shared-resource policy); a single mutex here is enough
// since neither happens on the hot trace path.
type Loader struct {
	mu   sync.Mutex
	maps map[string]*cachedMap
}

type cachedMap struct {
	model    *world.Model
	checksum uint32
	hull     *boxhull.Hull
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{maps: make(map[string]*cachedMap)}
}

// LoadMap loads name via source unless it is already cached, in which case
// clientLoad selects whether the cached copy is reused (§6 loadMap). A
// server-side reload (clientLoad == false) always re-reads the file,
// mirroring the original's "allow this to be cached if it is loaded by the
// server" naming of the name field.
func (l *Loader) LoadMap(ctx context.Context, name string, clientLoad bool, source Source, warn Sink) (*world.Model, uint32, error) {
	if name == "" {
		return nil, 0, fmt.Errorf("bspfile: LoadMap: empty name")
	}

	l.mu.Lock()
	if cached, ok := l.maps[name]; ok && clientLoad {
		l.mu.Unlock()
		return cached.model, cached.checksum, nil
	}
	l.mu.Unlock()

	data, err := source(name)
	if err != nil {
		return nil, 0, fmt.Errorf("bspfile: loading %s: %w", name, err)
	}

	model, hull, checksum, err := decodeMap(ctx, name, data, warn)
	if err != nil {
		return nil, 0, fmt.Errorf("bspfile: %s: %w", name, err)
	}

	l.mu.Lock()
	l.maps[name] = &cachedMap{model: model, checksum: checksum, hull: hull}
	l.mu.Unlock()

	return model, checksum, nil
}

// Hull returns the box-vs-box query handle (§4.3 BoxHull) built alongside
// name's model at load time, reusing the same brush-clipping code a real
// map brush would go through for entity-vs-entity queries against name's
// model (trace.BoxVsBox). ok is false if name was never loaded.
func (l *Loader) Hull(name string) (*boxhull.Hull, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cached, ok := l.maps[name]
	if !ok {
		return nil, false
	}
	return cached.hull, true
}

// ClearMap drops one cached map by name. ClearAll drops every cached map
// (§6 clearMap).
func (l *Loader) ClearMap(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.maps, name)
}

func (l *Loader) ClearAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maps = make(map[string]*cachedMap)
}

// checksum hashes the whole file with MD4 and XORs its four 32-bit words
// into one, matching §6's "128-bit MD4-style digest...XORed to produce a
// 32-bit map checksum", grounded on original_source/src/files/md4.h's use
// for Com_BlockChecksum.
func checksum(data []byte) uint32 {
	h := md4.New()
	h.Write(data)
	sum := h.Sum(nil)
	var result uint32
	for i := 0; i < 4; i++ {
		word := uint32(sum[i*4]) | uint32(sum[i*4+1])<<8 | uint32(sum[i*4+2])<<16 | uint32(sum[i*4+3])<<24
		result ^= word
	}
	return result
}

// decodeMap parses one map file buffer into a ready-to-trace world.Model,
// plus a box-vs-box query Hull built from the same model's arrays (§4.3).
func decodeMap(ctx context.Context, name string, data []byte, warn Sink) (*world.Model, *boxhull.Hull, uint32, error) {
	const headerSize = headerMagicLen + 4
	if len(data) < headerSize {
		return nil, nil, 0, fmt.Errorf("truncated header")
	}

	version := readInt32(data, headerMagicLen)
	if version != expectedVersion {
		return nil, nil, 0, fmt.Errorf("wrong version number (%d should be %d)", version, expectedVersion)
	}

	lumps, err := readLumpTable(data)
	if err != nil {
		return nil, nil, 0, err
	}

	lump := func(id int, label string) ([]byte, error) { return lumpBytes(data, lumps[id], label) }

	shaderData, err := lump(lumpShaders, "shaders")
	if err != nil {
		return nil, nil, 0, err
	}
	shaders, err := decodeShaders(shaderData)
	if err != nil {
		return nil, nil, 0, err
	}

	planeData, err := lump(lumpPlanes, "planes")
	if err != nil {
		return nil, nil, 0, err
	}
	planes, err := decodePlanes(planeData)
	if err != nil {
		return nil, nil, 0, err
	}

	nodeData, err := lump(lumpNodes, "nodes")
	if err != nil {
		return nil, nil, 0, err
	}
	nodes, err := decodeNodes(nodeData, len(planes))
	if err != nil {
		return nil, nil, 0, err
	}

	leafData, err := lump(lumpLeaves, "leaves")
	if err != nil {
		return nil, nil, 0, err
	}
	leaves, err := decodeLeaves(leafData)
	if err != nil {
		return nil, nil, 0, err
	}

	leafSurfData, err := lump(lumpLeafSurfaces, "leafsurfaces")
	if err != nil {
		return nil, nil, 0, err
	}
	leafSurfaces, err := decodeInt32Array(leafSurfData, "leafsurfaces")
	if err != nil {
		return nil, nil, 0, err
	}

	leafBrushData, err := lump(lumpLeafBrushes, "leafbrushes")
	if err != nil {
		return nil, nil, 0, err
	}
	leafBrushes, err := decodeInt32Array(leafBrushData, "leafbrushes")
	if err != nil {
		return nil, nil, 0, err
	}

	brushSideData, err := lump(lumpBrushSides, "brushsides")
	if err != nil {
		return nil, nil, 0, err
	}
	brushSides, err := decodeBrushSides(brushSideData, shaders, len(planes))
	if err != nil {
		return nil, nil, 0, err
	}

	brushData, err := lump(lumpBrushes, "brushes")
	if err != nil {
		return nil, nil, 0, err
	}
	brushes, err := decodeBrushes(brushData, shaders)
	if err != nil {
		return nil, nil, 0, err
	}
	for i := range brushes {
		if err := boundBrush(&brushes[i], brushSides[brushes[i].FirstSide:brushes[i].FirstSide+brushes[i].NumSides], planes); err != nil {
			return nil, nil, 0, fmt.Errorf("brush %d: %w", i, err)
		}
	}

	modelData, err := lump(lumpModels, "models")
	if err != nil {
		return nil, nil, 0, err
	}
	rawModels, err := decodeModels(modelData)
	if err != nil {
		return nil, nil, 0, err
	}

	vertData, err := lump(lumpDrawVerts, "drawverts")
	if err != nil {
		return nil, nil, 0, err
	}
	verts, err := decodeDrawVerts(vertData)
	if err != nil {
		return nil, nil, 0, err
	}

	surfaceData, err := lump(lumpSurfaces, "surfaces")
	if err != nil {
		return nil, nil, 0, err
	}
	rawSurfaces, err := decodeSurfaces(surfaceData)
	if err != nil {
		return nil, nil, 0, err
	}

	for i := range leafBrushes {
		if leafBrushes[i] < 0 || int(leafBrushes[i]) >= len(brushes) {
			if warn != nil {
				warn("invalid leaf brush %d at index %d, clamping to 0", leafBrushes[i], i)
			}
			leafBrushes[i] = 0
		}
	}

	m := world.New(name)
	m.Planes = planes
	m.Nodes = nodes
	m.Leaves = leaves
	m.Brushes = brushes
	m.BrushSides = brushSides
	m.Shaders = shaders
	m.LeafBrushes = leafBrushes
	m.LeafSurfaces = leafSurfaces

	// Submodel 0 is the world and is queried through the node tree
	// directly; submodels 1..N-1 get a synthetic leaf whose brush/surface
	// ranges are appended to the shared LeafBrushes/LeafSurfaces arrays,
	// exactly like a real leaf, so TraceEntry never special-cases them
	// (§3 Submodel). Mirrors original_source's CMod_LoadSubmodels, which
	// also pads mins/maxs by one unit.
	submodels := make([]world.Submodel, len(rawModels))
	for i, rm := range rawModels {
		bounds := geom.Bounds{
			Mins: rm.bounds.Mins.Sub(geom.Vec3{X: 1, Y: 1, Z: 1}),
			Maxs: rm.bounds.Maxs.Add(geom.Vec3{X: 1, Y: 1, Z: 1}),
		}
		if i == 0 {
			submodels[i] = world.Submodel{Bounds: bounds}
			continue
		}

		firstLeafBrush := int32(len(m.LeafBrushes))
		for j := int32(0); j < rm.numBrushes; j++ {
			m.LeafBrushes = append(m.LeafBrushes, rm.firstBrush+j)
		}
		firstLeafSurface := int32(len(m.LeafSurfaces))
		for j := int32(0); j < rm.numSurfaces; j++ {
			m.LeafSurfaces = append(m.LeafSurfaces, rm.firstSurface+j)
		}

		submodels[i] = world.Submodel{
			Bounds: bounds,
			Leaf: world.Leaf{
				Bounds:           bounds,
				FirstLeafBrush:   firstLeafBrush,
				NumLeafBrushes:   rm.numBrushes,
				FirstLeafSurface: firstLeafSurface,
				NumLeafSurfaces:  rm.numSurfaces,
			},
		}
	}
	m.Submodels = submodels
	m.RootNode = 0

	// Patches (§4.4, §6 lump 13 surfaceType==2): cm.surfaces in the
	// original is sized to numSurfaces with non-patch entries left nil,
	// and leafsurfaces indices reference that same array directly —
	// reproduced here instead of remapping leafsurfaces to a
	// patches-only index space.
	var sources []world.PatchSource
	patchSurfaceIndex := make(map[int]int, len(rawSurfaces))
	for i, rs := range rawSurfaces {
		if rs.surfaceType != surfaceTypePatch {
			continue
		}
		count := int(rs.patchWidth) * int(rs.patchHeight)
		if rs.firstVert < 0 || int(rs.firstVert)+count > len(verts) {
			return nil, nil, 0, fmt.Errorf("surface %d: patch vertex range out of bounds", i)
		}
		points := make([]geom.Vec3, count)
		copy(points, verts[rs.firstVert:int(rs.firstVert)+count])
		patchSurfaceIndex[i] = len(sources)
		sources = append(sources, world.PatchSource{
			ShaderIndex: rs.shaderIndex,
			Width:       rs.patchWidth,
			Height:      rs.patchHeight,
			Points:      points,
		})
	}

	m.Patches = make([]world.Patch, len(rawSurfaces))
	if len(sources) > 0 {
		// BuildPatches appends to m.Patches starting from its current
		// length, so it runs against an empty scratch model and the
		// results are relocated into the sparse, surfaceIndex-addressed
		// array leafsurfaces expects.
		built := world.New(name)
		built.Shaders = m.Shaders
		warnings, err := built.BuildPatches(ctx, sources)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("building patches: %w", err)
		}
		for _, w := range warnings {
			if warn != nil {
				warn("%s", w)
			}
		}
		for surfIdx, srcIdx := range patchSurfaceIndex {
			m.Patches[surfIdx] = built.Patches[srcIdx]
		}
	}

	hull := boxhull.New(m, 0)

	if err := m.Validate(); err != nil {
		return nil, nil, 0, fmt.Errorf("validating loaded map: %w", err)
	}

	sum := checksum(data)
	return m, hull, sum, nil
}
