package world

// Mesh is the external handle for a piece of built geometry (a chunk's
// solid or water mesh, or a frontier tile's opaque/water strip). The mesh
// producer and the GPU renderer are out of scope for this package; only the
// contract they must satisfy lives here.
type Mesh interface {
	SetPosition(x, y, z float32)
	// Show toggles visibility of the quadrant(s) selected by mask.
	Show(mask uint64, shown bool)
	Dispose()
}

// Mesher is the external surface-extraction collaborator. MeshChunk
// consumes a padded voxel box (chunk plus a one-voxel X/Z skirt and
// two-voxel Y skirt) and produces opaque and translucent geometry; either
// return value may be nil if that layer is empty. oldSolid/oldWater, when
// non-nil, are the chunk's previous meshes and may be reused/updated in
// place by implementations that support incremental rebuilds.
type Mesher interface {
	MeshChunk(buf *PaddedVolume, oldSolid, oldWater Mesh) (solid, water Mesh)
	// MeshFrontier produces a mesh for one quadrant of a frontier tile from
	// a heightmap strip with a one-cell skirt on every side. maskIndex
	// identifies which of the four quadrant slots within the tile's
	// multi-mesh pack this geometry belongs at. isSolid selects the
	// opaque-strip pass (true) or the water-strip pass (false).
	MeshFrontier(strip *HeightStrip, maskIndex int, px, pz, nx, nz int32, lod int32, old Mesh, isSolid bool) Mesh
}

// PaddedVolume is the World's single reusable scratch buffer consumed only
// inside Chunk remeshing. See the package design notes on shared mutable
// scratch buffers: nothing outside World.remeshChunk may read or write it.
type PaddedVolume struct {
	Buffer      [ChunkWidth + 2][WorldHeight + 2][ChunkWidth + 2]BlockID
	Heightmap   [ChunkWidth + 2][ChunkWidth + 2]int16
	LightHeight [ChunkWidth + 2][ChunkWidth + 2]int16
	Equilevels  [WorldHeight + 2]bool
}

// HeightStrip is the per-tile scratch used by frontier meshing: a
// (side+2)^2 strip of solid and water top heights, with a one-cell skirt.
type HeightStrip struct {
	Side    int32
	Solid   [][]int16
	Water   [][]int16
}

// NewHeightStrip allocates a strip sized for side+2 samples per axis.
func NewHeightStrip(side int32) *HeightStrip {
	n := int(side) + 2
	s := &HeightStrip{Side: side, Solid: make([][]int16, n), Water: make([][]int16, n)}
	for i := range s.Solid {
		s.Solid[i] = make([]int16, n)
		s.Water[i] = make([]int16, n)
	}
	return s
}
