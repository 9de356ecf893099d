// Package bspfile implements the binary map loader (§6 External
// Interfaces): lump-table parsing, record decoding into a world.Model, and
// the MD4-based file checksum. This is the one place in the repository
// that touches disk I/O; everything else (package world, trace, patch)
// only ever sees the decoded in-memory arrays. Grounded on
// original_source/src/col/c/load.c (CM_LoadMap and the CMod_Load*
// helpers).
package bspfile

import (
	"encoding/binary"
	"fmt"
)

// expectedVersion is the only BSP version this loader accepts (§6).
const expectedVersion = 46

const headerMagicLen = 4

// Lump indices, in file order (§6 lump table).
const (
	lumpEntities = iota
	lumpShaders
	lumpPlanes
	lumpNodes
	lumpLeaves
	lumpLeafSurfaces
	lumpLeafBrushes
	lumpModels
	lumpBrushes
	lumpBrushSides
	lumpDrawVerts
	lumpDrawIndexes
	lumpFogs
	lumpSurfaces
	lumpLightmaps
	lumpLightgrid
	lumpVisibility
	numLumps
)

// surfaceTypePatch marks a surfaces-lump record as a curved patch rather
// than a planar or triangle-soup surface (§6, lump 13).
const surfaceTypePatch = 2

// Record sizes, little-endian, matching §6's field lists exactly (an
// elided "..." field list in the spec's surfaces record becomes a
// reserved byte span here — the core never reads it).
const (
	shaderNameLen = 64
	shaderSize    = shaderNameLen + 4 + 4 // name, surfaceFlags, contentFlags

	planeSize = 3*4 + 4 // normal, dist

	nodeSize = 4 + 2*4 + 3*4 + 3*4 // planeIndex, children, mins, maxs (mins/maxs unused by the core)

	leafSize = 4 + 4 + 3*4 + 3*4 + 4 + 4 + 4 + 4 // cluster, area, mins, maxs, firstLeafSurface, numLeafSurfaces, firstLeafBrush, numLeafBrushes

	indexSize = 4 // leafsurfaces / leafbrushes entries

	modelSize = 3*4 + 3*4 + 4 + 4 + 4 + 4 // mins, maxs, firstSurface, numSurfaces, firstBrush, numBrushes

	brushSize = 4 + 4 + 4 // firstSide, numSides, shaderIndex

	brushSideSize = 4 + 4 // planeIndex, shaderIndex

	// drawVertSize matches the on-disk vertex record: position, texture
	// coordinate, lightmap coordinate, normal, color. Only Position is
	// consumed by patch collision (§4.4); the rest is reserved, skipped
	// by offset rather than decoded.
	drawVertSize = 3*4 + 2*4 + 2*4 + 3*4 + 4

	// surfaceSize reserves room for the rendering-only fields the spec's
	// "..." elides (lightmap placement, index range); the core reads
	// only shaderIndex, surfaceType, firstVert/numVerts and
	// patchWidth/patchHeight.
	surfaceReservedSize = 4 + 4 + 4 + 4 // firstIndex, numIndexes, lightmapIndex, lightmapStyle placeholder
	surfaceSize         = 4 + 4 + 4 + 4 + 4 + surfaceReservedSize + 4 + 4

	visHeaderSize = 4 + 4 // numClusters, clusterBytes
)

// lumpDescriptor is one 8-byte (offset, length) entry of the lump table.
type lumpDescriptor struct {
	offset int32
	length int32
}

func readLumpTable(data []byte) ([numLumps]lumpDescriptor, error) {
	var lumps [numLumps]lumpDescriptor
	for i := 0; i < numLumps; i++ {
		base := headerMagicLen + 4 + i*8
		if base+8 > len(data) {
			return lumps, fmt.Errorf("truncated lump table at entry %d", i)
		}
		lumps[i] = lumpDescriptor{
			offset: int32(binary.LittleEndian.Uint32(data[base:])),
			length: int32(binary.LittleEndian.Uint32(data[base+4:])),
		}
	}
	return lumps, nil
}

// lumpBytes validates a lump's (offset, length) against the file bounds
// (§6 "Lump offset/length validation") and returns its slice.
func lumpBytes(data []byte, l lumpDescriptor, name string) ([]byte, error) {
	if l.offset < 0 || l.length < 0 {
		return nil, fmt.Errorf("lump %s has negative offset/length", name)
	}
	end := int64(l.offset) + int64(l.length)
	if end > int64(len(data)) {
		return nil, fmt.Errorf("lump %s extends past end of file (ofs=%d len=%d file=%d)", name, l.offset, l.length, len(data))
	}
	return data[l.offset:end], nil
}
