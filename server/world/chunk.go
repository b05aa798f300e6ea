package world

import "github.com/go-gl/mathgl/mgl32"

// ChunkPos addresses a chunk by its integer chunk coordinates.
type ChunkPos struct {
	X, Z int32
}

// Chunk is a 16x256x16 voxel tile. See the package design notes for the
// neighbor-readiness and dirty/ready state machine; Chunk itself only
// tracks the counters and flags, the World orchestrates neighbor lookups
// by coordinate through the circle index (see World.loadChunkAt and
// World.disposeChunk), so chunks hold no references to each other.
type Chunk struct {
	pos ChunkPos
	reg *Registry

	// voxels is laid out [x][z][y] so that a vertical scan over y for a
	// fixed (x,z) is contiguous in memory.
	voxels      [ChunkWidth][ChunkWidth][WorldHeight]BlockID
	heightmap   [ChunkWidth][ChunkWidth]int16
	lightHeight [ChunkWidth][ChunkWidth]int16
	equilevels  [WorldHeight]bool

	solidMesh Mesh
	waterMesh Mesh

	// instances maps a block kind to the linear voxel indices currently
	// holding a reserved instance slot in that kind's shared InstancedMesh.
	instances map[BlockID]map[int]InstanceHandle

	neighbors uint8
	dirty     bool
	ready     bool
}

func newChunk(pos ChunkPos, reg *Registry) *Chunk {
	return &Chunk{
		pos:       pos,
		reg:       reg,
		dirty:     true,
		instances: make(map[BlockID]map[int]InstanceHandle),
	}
}

// Pos returns the chunk's coordinates.
func (c *Chunk) Pos() ChunkPos { return c.pos }

// Dirty reports whether the chunk's content has changed since its last
// remesh.
func (c *Chunk) Dirty() bool { return c.dirty }

// Ready reports whether all four cardinal neighbors are loaded, i.e.
// whether the chunk is safe to mesh with full skirts.
func (c *Chunk) Ready() bool { return c.ready }

// NeedsRemesh reports the meshability invariant from the package design:
// a chunk is meshable iff it is both ready and dirty.
func (c *Chunk) NeedsRemesh() bool { return c.dirty && c.ready }

// Neighbors returns the number of the four cardinal neighbors currently
// loaded, in [0,4].
func (c *Chunk) Neighbors() uint8 { return c.neighbors }

// HasMesh reports whether the chunk currently owns a solid or water mesh.
func (c *Chunk) HasMesh() bool { return c.solidMesh != nil || c.waterMesh != nil }

// Equilevel reports whether every cell at row y is the same block.
func (c *Chunk) Equilevel(y int) bool { return c.equilevels[y] }

// GetBlock returns the block at chunk-local coordinates. y outside
// [0,WorldHeight) returns Empty; callers resolving world-space queries are
// responsible for the bedrock/below-zero and unknown/not-loaded boundary
// behavior described in the World contract.
func (c *Chunk) GetBlock(x, y, z int) BlockID {
	if y < 0 || y >= WorldHeight {
		return Empty
	}
	return c.voxels[x][z][y]
}

// SetBlock writes a single cell. It is a no-op if the value is unchanged.
// On a real change it updates the heightmap/lit-height incrementally,
// clears the equi-level bit at y, marks the chunk dirty, and returns the
// positions of up to two edge-adjacent neighbors that must also be marked
// dirty (the World performs that marking, since Chunk holds no neighbor
// references).
func (c *Chunk) SetBlock(x, y, z int, b BlockID) []ChunkPos {
	old := c.voxels[x][z][y]
	if old == b {
		return nil
	}
	c.voxels[x][z][y] = b
	c.updateExtents(x, z, y, old, b)
	c.equilevels[y] = false
	c.dirty = true
	return c.edgeNeighbors(x, z)
}

// SetColumn bulk-fills [start,start+count) along Y with a single block. It
// is intended for use by the loader only (via ColumnBuffer), and updates
// the heightmap/lit-height once for the whole range rather than once per
// cell.
func (c *Chunk) SetColumn(x, z int, start, count int32, b BlockID) {
	if count <= 0 {
		return
	}
	end := start + count
	for y := start; y < end; y++ {
		c.voxels[x][z][y] = b
	}
	c.extendRange(&c.heightmap[x][z], x, z, start, end, b == Empty, func(v BlockID) bool { return v == Empty })
	nonSolid := !c.reg.Block(b).Solid
	c.extendRange(&c.lightHeight[x][z], x, z, start, end, nonSolid, func(v BlockID) bool { return !c.reg.Block(v).Solid })
}

// setVoxelForLoad writes a single decoration cell during initial column
// fill. Unlike SetBlock it does not touch the dirty flag (a chunk under
// construction is already dirty) and does not report neighbors (neighbor
// notification during load happens once, after the whole chunk is built).
func (c *Chunk) setVoxelForLoad(x, y, z int, b BlockID) {
	old := c.voxels[x][z][y]
	if old == b {
		return
	}
	c.voxels[x][z][y] = b
	c.updateExtents(x, z, y, old, b)
}

func (c *Chunk) updateExtents(x, z, y int, old, neu BlockID) {
	if (old == Empty) != (neu == Empty) {
		c.extendSingle(&c.heightmap[x][z], x, z, y, neu == Empty, func(v BlockID) bool { return v == Empty })
	}
	oldSolid, newSolid := c.reg.Block(old).Solid, c.reg.Block(neu).Solid
	if oldSolid != newSolid {
		c.extendSingle(&c.lightHeight[x][z], x, z, y, !newSolid, func(v BlockID) bool { return !c.reg.Block(v).Solid })
	}
}

// extendSingle applies the incremental heightmap/lit-height update rule to
// a single-cell write at row y: if the cell became "empty-like" and y was
// the recorded top, scan downward for the new top; if it became
// "non-empty-like" and y is at or above the recorded top, the top becomes
// y+1.
func (c *Chunk) extendSingle(top *int16, x, z, y int, becameEmptyLike bool, emptyLike func(BlockID) bool) {
	if becameEmptyLike {
		if int(*top) == y+1 {
			ny := y
			for ny > 0 && emptyLike(c.voxels[x][z][ny-1]) {
				ny--
			}
			*top = int16(ny)
		}
		return
	}
	if y+1 > int(*top) {
		*top = int16(y + 1)
	}
}

// extendRange is extendSingle generalized to a bulk [start,end) write of a
// single uniform block.
func (c *Chunk) extendRange(top *int16, x, z int, start, end int32, becameEmptyLike bool, emptyLike func(BlockID) bool) {
	if becameEmptyLike {
		if int32(*top) > start && int32(*top) <= end {
			ny := int(start)
			for ny > 0 && emptyLike(c.voxels[x][z][ny-1]) {
				ny--
			}
			*top = int16(ny)
		}
		return
	}
	if end > int32(*top) {
		*top = int16(end)
	}
}

func (c *Chunk) edgeNeighbors(x, z int) []ChunkPos {
	var out []ChunkPos
	if x == 0 {
		out = append(out, ChunkPos{c.pos.X - 1, c.pos.Z})
	}
	if x == ChunkWidth-1 {
		out = append(out, ChunkPos{c.pos.X + 1, c.pos.Z})
	}
	if z == 0 {
		out = append(out, ChunkPos{c.pos.X, c.pos.Z - 1})
	}
	if z == ChunkWidth-1 {
		out = append(out, ChunkPos{c.pos.X, c.pos.Z + 1})
	}
	return out
}

// notifyNeighborLoaded is called on an existing chunk when a new edge
// neighbor has just been created next to it.
func (c *Chunk) notifyNeighborLoaded() {
	assertInvariant(c.neighbors < 4, "neighbor counter overflow for chunk %v", c.pos)
	c.neighbors++
	if c.neighbors == 4 {
		c.ready = true
	}
}

// notifyNeighborUnloaded is called on a surviving chunk when one of its
// edge neighbors is disposed. If this drops the chunk from ready to
// not-ready, its meshes are released so it rebuilds proper skirts the next
// time it becomes ready. It reports whether the chunk had a mesh that was
// just dropped (the caller uses this to mark frontier level 0 dirty).
func (c *Chunk) notifyNeighborUnloaded() (droppedMesh bool) {
	assertInvariant(c.neighbors > 0, "neighbor counter underflow for chunk %v", c.pos)
	wasReady := c.ready
	c.neighbors--
	c.ready = c.neighbors == 4
	if wasReady && !c.ready && c.HasMesh() {
		c.disposeMeshes()
		c.dirty = true
		return true
	}
	return false
}

func (c *Chunk) disposeMeshes() {
	if c.solidMesh != nil {
		c.solidMesh.Dispose()
		c.solidMesh = nil
	}
	if c.waterMesh != nil {
		c.waterMesh.Dispose()
		c.waterMesh = nil
	}
}

// dispose releases this chunk's owned resources: its meshes and any
// instance slots reserved in shared instanced meshes.
func (c *Chunk) dispose() {
	c.disposeMeshes()
	c.releaseInstances()
}

func (c *Chunk) releaseInstances() {
	for block, slots := range c.instances {
		def := c.reg.Block(block)
		if def.InstancedMesh == nil {
			continue
		}
		for _, h := range slots {
			def.InstancedMesh.RemoveInstance(h)
		}
	}
	c.instances = make(map[BlockID]map[int]InstanceHandle)
}

func linearIndex(x, y, z int) int {
	return (x*ChunkWidth+z)*WorldHeight + y
}

// rebuildInstances drops all previously recorded instance slots and walks
// every non-equi-level row, reserving a fresh instance for each cell whose
// block kind carries an InstancedMesh.
func (c *Chunk) rebuildInstances(originX, originZ float32) {
	c.releaseInstances()
	for y := 0; y < WorldHeight; y++ {
		if c.equilevels[y] {
			continue
		}
		for x := 0; x < ChunkWidth; x++ {
			for z := 0; z < ChunkWidth; z++ {
				b := c.voxels[x][z][y]
				def := c.reg.Block(b)
				if def.InstancedMesh == nil {
					continue
				}
				h := def.InstancedMesh.AddInstance(mgl32.Vec3{originX + float32(x) + 0.5, float32(y), originZ + float32(z) + 0.5})
				slots, ok := c.instances[b]
				if !ok {
					slots = make(map[int]InstanceHandle)
					c.instances[b] = slots
				}
				slots[linearIndex(x, y, z)] = h
			}
		}
	}
}
