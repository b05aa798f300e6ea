package world

import (
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Config configures a World at construction time. Registry, Mesher and
// Loader are required; the rest carry sensible defaults from const.go.
type Config struct {
	Registry *Registry
	Mesher   Mesher
	Loader   Loader
	// FrontierLoader generates frontier columns; defaults to Loader.
	FrontierLoader Loader
	// Bedrock is the block reported for queries at y < 0 and prefilled into
	// the scratch buffer's bottom skirt.
	Bedrock BlockID

	ChunkRadius    int32
	FrontierRadius int32
	FrontierLevels int

	ChunksToLoadPerFrame    int
	ChunksToMeshPerFrame    int
	LODChunksToMeshPerFrame int

	Log *slog.Logger
}

func (c *Config) setDefaults() {
	if c.ChunkRadius <= 0 {
		c.ChunkRadius = ChunkRadius
	}
	if c.FrontierRadius <= 0 {
		c.FrontierRadius = FrontierRadius
	}
	if c.FrontierLevels <= 0 {
		c.FrontierLevels = FrontierLevels
	}
	if c.ChunksToLoadPerFrame <= 0 {
		c.ChunksToLoadPerFrame = NumChunksToLoadPerFrame
	}
	if c.ChunksToMeshPerFrame <= 0 {
		c.ChunksToMeshPerFrame = NumChunksToMeshPerFrame
	}
	if c.LODChunksToMeshPerFrame <= 0 {
		c.LODChunksToMeshPerFrame = NumLODChunksToMeshPerFrame
	}
	if c.FrontierLoader == nil {
		c.FrontierLoader = c.Loader
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
}

func (c *Config) validate() error {
	if c.Registry == nil {
		return &ConfigError{Op: "world.New", Msg: "Registry is required"}
	}
	if c.Mesher == nil {
		return &ConfigError{Op: "world.New", Msg: "Mesher is required"}
	}
	if c.Loader == nil {
		return &ConfigError{Op: "world.New", Msg: "Loader is required"}
	}
	return nil
}

// World is the top-level coordinator: it owns the chunk disk, the
// frontier pyramid, the registry, and the single reusable padded scratch
// buffer that chunk remeshing borrows.
type World struct {
	conf Config

	circle   *Circle[*Chunk]
	frontier *Frontier
	scratch  *PaddedVolume
	colBuf   *ColumnBuffer

	loadBacklog     int
	lastBacklogWarn time.Time
}

// New validates conf, applies defaults, and returns an empty World
// centered at the origin. The caller should call Recenter to populate it.
func New(conf Config) (*World, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	conf.setDefaults()

	w := &World{
		conf:    conf,
		circle:  NewCircle[*Chunk](conf.ChunkRadius),
		scratch: &PaddedVolume{},
		colBuf:  NewColumnBuffer(),
	}
	w.frontier = NewFrontier(conf.ChunkRadius, conf.FrontierRadius, conf.FrontierLevels, conf.FrontierLoader, conf.Mesher, conf.Registry)

	for x := 0; x < ChunkWidth+2; x++ {
		for z := 0; z < ChunkWidth+2; z++ {
			w.scratch.Buffer[x][0][z] = conf.Bedrock
		}
	}
	return w, nil
}

func chunkDiv(v int32) (chunk, local int32) {
	return v >> 4, v & 15
}

// GetBlock returns the block at world-space (x,y,z). Queries below y=0
// return the configured bedrock block; queries at or above WorldHeight
// return Empty; queries into a not-yet-loaded chunk return Unknown.
func (w *World) GetBlock(x, y, z int32) BlockID {
	if y < 0 {
		return w.conf.Bedrock
	}
	if y >= WorldHeight {
		return Empty
	}
	cx, lx := chunkDiv(x)
	cz, lz := chunkDiv(z)
	c, ok := w.circle.Get(cx, cz)
	if !ok {
		return Unknown
	}
	return c.GetBlock(int(lx), int(y), int(lz))
}

// SetBlock writes a block at world-space (x,y,z), a no-op outside the
// vertical range or into a chunk that isn't currently loaded. Any edge
// neighbors the write touches are flagged dirty so their next remesh
// picks up the boundary change.
func (w *World) SetBlock(x, y, z int32, b BlockID) {
	if y < 0 || y >= WorldHeight {
		return
	}
	cx, lx := chunkDiv(x)
	cz, lz := chunkDiv(z)
	c, ok := w.circle.Get(cx, cz)
	if !ok {
		return
	}
	for _, npos := range c.SetBlock(int(lx), int(y), int(lz), b) {
		if n, ok := w.circle.Get(npos.X, npos.Z); ok {
			n.dirty = true
		}
	}
}

// IsBlockLit reports whether (x,y,z) sits at or above the column's
// lit/unlit cutoff (the top solid cell height). Unloaded columns and
// below-bedrock queries are reported unlit.
func (w *World) IsBlockLit(x, y, z int32) bool {
	if y < 0 {
		return false
	}
	cx, lx := chunkDiv(x)
	cz, lz := chunkDiv(z)
	c, ok := w.circle.Get(cx, cz)
	if !ok {
		return false
	}
	return y >= int32(c.lightHeight[lx][lz])
}

// Chunk returns the loaded chunk at the given chunk coordinate, if any.
func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	return w.circle.Get(pos.X, pos.Z)
}

// Registry returns the world's block/material registry.
func (w *World) Registry() *Registry { return w.conf.Registry }

var edgeOffsets = [4]ChunkPos{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}

// Recenter re-centers the chunk disk and frontier pyramid on the chunk
// containing (x,y,z) (y is accepted for API symmetry with entity position
// and otherwise unused), evicts anything that fell out of range, and
// admits up to ChunksToLoadPerFrame new chunks in nearest-first order.
func (w *World) Recenter(x, y, z float64) {
	_ = y
	cx := int32(math.Floor(x)) >> 4
	cz := int32(math.Floor(z)) >> 4

	w.circle.Center(cx, cz, func(px, pz int32, c *Chunk) {
		w.disposeChunk(ChunkPos{X: px, Z: pz}, c)
	})
	w.frontier.Center(cx, cz)

	loaded := 0
	backlog := 0
	for _, o := range w.circle.Offsets() {
		pos := ChunkPos{X: cx + o.di, Z: cz + o.dj}
		if _, ok := w.circle.Get(pos.X, pos.Z); ok {
			continue
		}
		if loaded < w.conf.ChunksToLoadPerFrame {
			w.loadChunkAt(pos)
			loaded++
			continue
		}
		backlog++
	}
	w.loadBacklog = backlog

	if w.loadBacklog > 0 && time.Since(w.lastBacklogWarn) > time.Second {
		w.conf.Log.Warn("chunk load backlog building", "backlog", w.loadBacklog)
		w.lastBacklogWarn = time.Now()
	}
}

func (w *World) disposeChunk(pos ChunkPos, c *Chunk) {
	hadMesh := c.HasMesh()
	c.dispose()
	for _, off := range edgeOffsets {
		npos := ChunkPos{X: pos.X + off.X, Z: pos.Z + off.Z}
		if n, ok := w.circle.Get(npos.X, npos.Z); ok {
			if n.notifyNeighborUnloaded() {
				w.frontier.MarkDirty(0)
			}
		}
	}
	if hadMesh {
		w.frontier.MarkDirty(0)
	}
}

func (w *World) loadChunkAt(pos ChunkPos) {
	c := newChunk(pos, w.conf.Registry)

	w.colBuf.beginChunk()
	for lx := 0; lx < ChunkWidth; lx++ {
		for lz := 0; lz < ChunkWidth; lz++ {
			w.colBuf.Clear()
			ax := pos.X*ChunkWidth + int32(lx)
			az := pos.Z*ChunkWidth + int32(lz)
			w.conf.Loader(ax, az, w.colBuf)
			first := lx == 0 && lz == 0
			w.colBuf.fillChunk(lx, lz, c, first)
		}
	}
	w.colBuf.fillEquilevels(&c.equilevels)

	w.circle.Set(pos.X, pos.Z, c)
	w.frontier.EnsureTile(0, pos.X, pos.Z)

	for _, off := range edgeOffsets {
		npos := ChunkPos{X: pos.X + off.X, Z: pos.Z + off.Z}
		if n, ok := w.circle.Get(npos.X, npos.Z); ok {
			n.notifyNeighborLoaded()
			c.notifyNeighborLoaded()
		}
	}
}

// Remesh walks the chunk disk in nearest-first order, remeshing dirty
// chunks that are ready to be meshed (all four edge neighbors loaded).
// The first 9 visits (the 3x3 core around the center, which nearest-first
// iteration order always visits first) are exempt from the per-frame
// budget, guaranteeing the immediate neighborhood is always kept current.
// Frontier levels are then remeshed bottom-up.
func (w *World) Remesh() {
	visited := 0
	remeshedPastCore := 0
	w.circle.Each(func(x, z int32, c *Chunk) bool {
		visited++
		if !c.NeedsRemesh() {
			return false
		}
		hadMesh := c.HasMesh()
		w.remeshChunk(c)
		if !hadMesh {
			w.frontier.MarkDirty(0)
		}
		if visited > 9 {
			remeshedPastCore++
			if remeshedPastCore >= w.conf.ChunksToMeshPerFrame {
				return true
			}
		}
		return false
	})

	w.frontier.Remesh(w)
}

func (w *World) remeshChunk(c *Chunk) {
	assertInvariant(c.dirty, "remesh called on non-dirty chunk %v", c.pos)

	originX := float32(c.pos.X * ChunkWidth)
	originZ := float32(c.pos.Z * ChunkWidth)
	c.rebuildInstances(originX, originZ)

	w.fillScratch(c)
	newSolid, newWater := w.conf.Mesher.MeshChunk(w.scratch, c.solidMesh, c.waterMesh)
	if newSolid != c.solidMesh && c.solidMesh != nil {
		c.solidMesh.Dispose()
	}
	if newWater != c.waterMesh && c.waterMesh != nil {
		c.waterMesh.Dispose()
	}
	c.solidMesh, c.waterMesh = newSolid, newWater
	if c.solidMesh != nil {
		c.solidMesh.SetPosition(originX, 0, originZ)
	}
	if c.waterMesh != nil {
		c.waterMesh.SetPosition(originX, 0, originZ)
	}
	c.dirty = false
}

// fillScratch copies c's interior plus a one-cell skirt borrowed from its
// four edge neighbors (Empty where a neighbor isn't loaded) into the
// World's single reusable PaddedVolume. Nothing outside this call may
// read or write the scratch buffer concurrently: the single-threaded
// frame loop is the only caller.
func (w *World) fillScratch(c *Chunk) {
	s := w.scratch
	cx, cz := c.pos.X, c.pos.Z

	for x := 0; x < ChunkWidth; x++ {
		for z := 0; z < ChunkWidth; z++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[x+1][y+1][z+1] = c.voxels[x][z][y]
			}
			s.Heightmap[x+1][z+1] = c.heightmap[x][z]
			s.LightHeight[x+1][z+1] = c.lightHeight[x][z]
		}
	}
	for y := 0; y < WorldHeight; y++ {
		s.Equilevels[y+1] = c.equilevels[y]
	}
	s.Equilevels[0] = true
	s.Equilevels[WorldHeight+1] = true

	if n, ok := w.circle.Get(cx+1, cz); ok {
		for z := 0; z < ChunkWidth; z++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[ChunkWidth+1][y+1][z+1] = n.GetBlock(0, y, z)
			}
			s.Heightmap[ChunkWidth+1][z+1] = n.heightmap[0][z]
			s.LightHeight[ChunkWidth+1][z+1] = n.lightHeight[0][z]
		}
	} else {
		for z := 0; z < ChunkWidth; z++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[ChunkWidth+1][y+1][z+1] = Empty
			}
		}
	}
	if n, ok := w.circle.Get(cx-1, cz); ok {
		for z := 0; z < ChunkWidth; z++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[0][y+1][z+1] = n.GetBlock(ChunkWidth-1, y, z)
			}
			s.Heightmap[0][z+1] = n.heightmap[ChunkWidth-1][z]
			s.LightHeight[0][z+1] = n.lightHeight[ChunkWidth-1][z]
		}
	} else {
		for z := 0; z < ChunkWidth; z++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[0][y+1][z+1] = Empty
			}
		}
	}
	if n, ok := w.circle.Get(cx, cz+1); ok {
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[x+1][y+1][ChunkWidth+1] = n.GetBlock(x, y, 0)
			}
			s.Heightmap[x+1][ChunkWidth+1] = n.heightmap[x][0]
			s.LightHeight[x+1][ChunkWidth+1] = n.lightHeight[x][0]
		}
	} else {
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[x+1][y+1][ChunkWidth+1] = Empty
			}
		}
	}
	if n, ok := w.circle.Get(cx, cz-1); ok {
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[x+1][y+1][0] = n.GetBlock(x, y, ChunkWidth-1)
			}
			s.Heightmap[x+1][0] = n.heightmap[x][ChunkWidth-1]
			s.LightHeight[x+1][0] = n.lightHeight[x][ChunkWidth-1]
		}
	} else {
		for x := 0; x < ChunkWidth; x++ {
			for y := 0; y < WorldHeight; y++ {
				s.Buffer[x+1][y+1][0] = Empty
			}
		}
	}
}

// Frontier exposes the LOD pyramid for console/test inspection.
func (w *World) Frontier() *Frontier { return w.frontier }

// Stats summarizes the currently loaded disk, for the console's "stats"
// command.
type Stats struct {
	LoadedChunks int
	CenterX      int32
	CenterZ      int32
}

func (w *World) Stats() Stats {
	cx, cz := w.circle.CenterPos()
	n := 0
	w.circle.Each(func(_, _ int32, _ *Chunk) bool { n++; return false })
	return Stats{LoadedChunks: n, CenterX: cx, CenterZ: cz}
}

func (s Stats) String() string {
	return fmt.Sprintf("chunks=%d center=(%d,%d)", s.LoadedChunks, s.CenterX, s.CenterZ)
}
