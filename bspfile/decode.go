package bspfile

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/bloodmagesoftware/collide/geom"
	"github.com/bloodmagesoftware/collide/world"
)

// lumpRecords splits a lump's bytes into fixed-size records, rejecting a
// size that doesn't divide evenly (§7 taxonomy #1, "funny lump size" in
// the original).
func lumpRecords(data []byte, recordSize int, name string) (int, error) {
	if len(data)%recordSize != 0 {
		return 0, fmt.Errorf("%s: funny lump size %d (record size %d)", name, len(data), recordSize)
	}
	return len(data) / recordSize, nil
}

func decodeShaders(data []byte) ([]world.Shader, error) {
	count, err := lumpRecords(data, shaderSize, "shaders")
	if err != nil {
		return nil, err
	}
	out := make([]world.Shader, count)
	for i := 0; i < count; i++ {
		base := i * shaderSize
		nameBytes := data[base : base+shaderNameLen]
		if z := strings.IndexByte(string(nameBytes), 0); z >= 0 {
			nameBytes = nameBytes[:z]
		}
		out[i] = world.Shader{
			Name:         string(nameBytes),
			SurfaceFlags: int32(binary.LittleEndian.Uint32(data[base+shaderNameLen:])),
			ContentFlags: int32(binary.LittleEndian.Uint32(data[base+shaderNameLen+4:])),
		}
	}
	return out, nil
}

func decodePlanes(data []byte) ([]geom.Plane, error) {
	count, err := lumpRecords(data, planeSize, "planes")
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("planes: map with no planes")
	}
	out := make([]geom.Plane, count)
	for i := 0; i < count; i++ {
		base := i * planeSize
		normal := geom.Vec3{
			X: readFloat32(data, base),
			Y: readFloat32(data, base+4),
			Z: readFloat32(data, base+8),
		}
		dist := readFloat32(data, base+12)
		out[i] = geom.PlaneFromNormalDist(normal, dist)
	}
	return out, nil
}

func decodeNodes(data []byte, numPlanes int) ([]world.Node, error) {
	count, err := lumpRecords(data, nodeSize, "nodes")
	if err != nil {
		return nil, err
	}
	out := make([]world.Node, count)
	for i := 0; i < count; i++ {
		base := i * nodeSize
		planeIndex := readInt32(data, base)
		if planeIndex < 0 || int(planeIndex) >= numPlanes {
			return nil, fmt.Errorf("node %d: bad plane index %d", i, planeIndex)
		}
		out[i] = world.Node{
			PlaneIndex: planeIndex,
			Children: [2]int32{
				readInt32(data, base+4),
				readInt32(data, base+8),
			},
		}
	}
	return out, nil
}

func decodeLeaves(data []byte) ([]world.Leaf, error) {
	count, err := lumpRecords(data, leafSize, "leaves")
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("leaves: map with no leaves")
	}
	out := make([]world.Leaf, count)
	for i := 0; i < count; i++ {
		base := i * leafSize
		out[i] = world.Leaf{
			Cluster: readInt32(data, base),
			Area:    readInt32(data, base+4),
			Bounds: geom.Bounds{
				Mins: geom.Vec3{X: float32(readInt32(data, base+8)), Y: float32(readInt32(data, base+12)), Z: float32(readInt32(data, base+16))},
				Maxs: geom.Vec3{X: float32(readInt32(data, base+20)), Y: float32(readInt32(data, base+24)), Z: float32(readInt32(data, base+28))},
			},
			FirstLeafSurface: readInt32(data, base+32),
			NumLeafSurfaces:  readInt32(data, base+36),
			FirstLeafBrush:   readInt32(data, base+40),
			NumLeafBrushes:   readInt32(data, base+44),
		}
	}
	return out, nil
}

func decodeInt32Array(data []byte, name string) ([]int32, error) {
	count, err := lumpRecords(data, indexSize, name)
	if err != nil {
		return nil, err
	}
	out := make([]int32, count)
	for i := 0; i < count; i++ {
		out[i] = readInt32(data, i*indexSize)
	}
	return out, nil
}

func decodeModels(data []byte) ([]rawModel, error) {
	count, err := lumpRecords(data, modelSize, "models")
	if err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fmt.Errorf("models: map with no models")
	}
	out := make([]rawModel, count)
	for i := 0; i < count; i++ {
		base := i * modelSize
		out[i] = rawModel{
			bounds: geom.Bounds{
				Mins: geom.Vec3{X: readFloat32(data, base), Y: readFloat32(data, base+4), Z: readFloat32(data, base+8)},
				Maxs: geom.Vec3{X: readFloat32(data, base+12), Y: readFloat32(data, base+16), Z: readFloat32(data, base+20)},
			},
			firstSurface: readInt32(data, base+24),
			numSurfaces:  readInt32(data, base+28),
			firstBrush:   readInt32(data, base+32),
			numBrushes:   readInt32(data, base+36),
		}
	}
	return out, nil
}

type rawModel struct {
	bounds                   geom.Bounds
	firstSurface, numSurfaces int32
	firstBrush, numBrushes    int32
}

func decodeBrushes(data []byte, shaders []world.Shader) ([]world.Brush, error) {
	count, err := lumpRecords(data, brushSize, "brushes")
	if err != nil {
		return nil, err
	}
	out := make([]world.Brush, count)
	for i := 0; i < count; i++ {
		base := i * brushSize
		shaderIndex := readInt32(data, base+8)
		if shaderIndex < 0 || int(shaderIndex) >= len(shaders) {
			return nil, fmt.Errorf("brush %d: bad shader index %d", i, shaderIndex)
		}
		out[i] = world.Brush{
			ContentFlags: shaders[shaderIndex].ContentFlags,
			FirstSide:    readInt32(data, base),
			NumSides:     readInt32(data, base+4),
		}
	}
	return out, nil
}

// boundBrush derives a brush's cached bounds from its first six sides
// (§3 Brush invariant: -X,+X,-Y,+Y,-Z,+Z in that order), matching
// original_source's CM_BoundBrush.
func boundBrush(b *world.Brush, sides []world.BrushSide, planes []geom.Plane) error {
	if b.NumSides < 6 {
		return fmt.Errorf("brush has fewer than 6 sides (%d)", b.NumSides)
	}
	dist := func(i int32) float32 { return planes[sides[i].PlaneIndex].Dist }
	b.Bounds = geom.Bounds{
		Mins: geom.Vec3{X: -dist(0), Y: -dist(2), Z: -dist(4)},
		Maxs: geom.Vec3{X: dist(1), Y: dist(3), Z: dist(5)},
	}
	return nil
}

func decodeBrushSides(data []byte, shaders []world.Shader, numPlanes int) ([]world.BrushSide, error) {
	count, err := lumpRecords(data, brushSideSize, "brushsides")
	if err != nil {
		return nil, err
	}
	out := make([]world.BrushSide, count)
	for i := 0; i < count; i++ {
		base := i * brushSideSize
		planeIndex := readInt32(data, base)
		shaderIndex := readInt32(data, base+4)
		if planeIndex < 0 || int(planeIndex) >= numPlanes {
			return nil, fmt.Errorf("brushside %d: bad plane index %d", i, planeIndex)
		}
		if shaderIndex < 0 || int(shaderIndex) >= len(shaders) {
			return nil, fmt.Errorf("brushside %d: bad shader index %d", i, shaderIndex)
		}
		out[i] = world.BrushSide{
			PlaneIndex:   planeIndex,
			ShaderIndex:  shaderIndex,
			SurfaceFlags: shaders[shaderIndex].SurfaceFlags,
		}
	}
	return out, nil
}

func decodeDrawVerts(data []byte) ([]geom.Vec3, error) {
	count, err := lumpRecords(data, drawVertSize, "drawverts")
	if err != nil {
		return nil, err
	}
	out := make([]geom.Vec3, count)
	for i := 0; i < count; i++ {
		base := i * drawVertSize
		out[i] = geom.Vec3{
			X: readFloat32(data, base),
			Y: readFloat32(data, base+4),
			Z: readFloat32(data, base+8),
		}
	}
	return out, nil
}

type rawSurface struct {
	shaderIndex              int32
	surfaceType              int32
	firstVert, numVerts      int32
	patchWidth, patchHeight  int32
}

func decodeSurfaces(data []byte) ([]rawSurface, error) {
	count, err := lumpRecords(data, surfaceSize, "surfaces")
	if err != nil {
		return nil, err
	}
	out := make([]rawSurface, count)
	for i := 0; i < count; i++ {
		base := i * surfaceSize
		out[i] = rawSurface{
			shaderIndex: readInt32(data, base),
			// skip fogIndex at base+4
			surfaceType: readInt32(data, base+8),
			firstVert:   readInt32(data, base+12),
			numVerts:    readInt32(data, base+16),
			// surfaceReservedSize bytes of rendering-only fields follow
			patchWidth:  readInt32(data, base+20+surfaceReservedSize),
			patchHeight: readInt32(data, base+20+surfaceReservedSize+4),
		}
	}
	return out, nil
}

func readInt32(data []byte, offset int) int32 {
	return int32(binary.LittleEndian.Uint32(data[offset:]))
}

func readFloat32(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}
