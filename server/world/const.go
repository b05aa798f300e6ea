package world

// Fixed boundary constants. These values are part of the external contract
// described at the top of this package's design and are not meant to be
// tuned per-deployment: code elsewhere (padded scratch sizing, frontier
// quadrant strides) assumes these exact numbers.
const (
	// ChunkWidth is the width and depth of a chunk, in blocks.
	ChunkWidth = 16
	// WorldHeight is the number of vertical blocks a chunk spans.
	WorldHeight = 256
	// ChunkRadius is the default radius, in chunks, of the loaded disk around
	// the viewer.
	ChunkRadius = 12

	// FrontierLOD is the block stride of a single frontier cell at level 0,
	// i.e. how many base blocks one frontier heightmap sample covers.
	FrontierLOD = 2
	// FrontierRadius is the base radius, in chunks, that the frontier's
	// outermost level should roughly reach.
	FrontierRadius = 8
	// FrontierLevels is the number of concentric LOD circles in the pyramid.
	FrontierLevels = 6
	// MultiMeshSide is the side length, in tiles, of a frontier multi-mesh
	// pack (2 -> 2x2 -> 4 tiles per pack).
	MultiMeshSide = 2

	// NumChunksToLoadPerFrame bounds how many new chunks may be admitted to
	// the circle in a single World.Recenter call.
	NumChunksToLoadPerFrame = 1
	// NumChunksToMeshPerFrame bounds how many chunks past the 3x3 core may be
	// remeshed in a single World.Remesh call.
	NumChunksToMeshPerFrame = 1
	// NumLODChunksToMeshPerFrame bounds how many frontier tiles per level may
	// be (re)meshed in a single World.Remesh call.
	NumLODChunksToMeshPerFrame = 1

	// TicksPerSecond is the fixed-tick update rate.
	TicksPerSecond = 60
	// TicksPerFrame caps how many update ticks are drained in one pump to
	// avoid a death-spiral under load.
	TicksPerFrame = 4
	// TickResolution subdivides a tick for timer jitter correction.
	TickResolution = 4
)

// BlockID identifies a registered block kind. 0 is always empty and 1 is
// always the unknown/out-of-loaded-world sentinel.
type BlockID uint16

const (
	// Empty is the reserved identifier for the absence of a block.
	Empty BlockID = 0
	// Unknown is the sentinel returned for queries into not-yet-loaded
	// chunks.
	Unknown BlockID = 1
)

// MaterialID identifies a registered material. NoMaterial means "emit no
// face for this slot".
type MaterialID uint32

// NoMaterial marks a block face (or an instanced-mesh block's six faces) as
// not contributing a quad to the surface mesh.
const NoMaterial MaterialID = ^MaterialID(0)

// Face indexes the six faces of a block, in the fixed order the mesher
// contract expects.
type Face uint8

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
	faceCount
)
