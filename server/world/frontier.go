package world

import (
	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
)

// TilePos addresses a frontier tile: chunk-scale coordinates at level L
// cover a 2^L x 2^L block of base chunks.
type TilePos struct {
	X, Z  int32
	Level int
}

// quadrant returns which of the 4 slots (0..3) within its pack a tile
// occupies, and the int64 pack key (hashed via fasthash, kept distinct
// from the xxhash family the Registry uses) that addresses its shared
// multi-mesh.
func quadrant(x, z int32) (idx int, packKey int64) {
	idx = int((x&1)<<1 | (z & 1))
	packKey = int64(fnv1a.HashUint64(uint64(uint32(x>>1))<<32 | uint64(uint32(z>>1))))
	return
}

// pack is the shared GPU resource for four adjacent same-level tiles: one
// multi-mesh per layer (opaque, water), individually maskable per
// quadrant. The multi-mesh only self-destructs once every quadrant has
// been cleared. Its live quadrant bitmask is additionally mirrored into
// the owning level's intintmap so disposal bookkeeping never has to walk
// pointers to decide whether a pack has gone empty.
type pack struct {
	solid, water Mesh
	key          int64
	enabled      [MultiMeshSide * MultiMeshSide]bool
}

func (p *pack) empty() bool {
	for _, e := range p.enabled {
		if e {
			return false
		}
	}
	return true
}

// tile is one frontier LOD cell. mask's bit k is set iff child tile k (at
// level-1, the same 2x2 quadrant layout) currently has a mesh; the tile is
// drawn iff mask != 0b1111 (its finer children don't fully cover it yet).
type tile struct {
	pos    TilePos
	meshed bool
	mask   uint8
	pk     *pack
	quad   int
}

// level is one of the frontier's concentric LOD circles.
type level struct {
	circle *Circle[*tile]
	packs  map[int64]*pack
	masks  *intintmap.Map // packKey -> live quadrant bitmask, mirrors pack.enabled
	dirty  bool
	index  int
}

// Frontier is the pyramid of FrontierLevels concentric circles of coarse
// tiles described in the package design. Level 0 tiles are 1:1 with base
// chunks; level L covers 2^L x 2^L chunks.
type Frontier struct {
	levels []*level
	loader Loader
	mesher Mesher
	reg    *Registry
}

// levelRadius geometrically blends the chunk radius with FrontierRadius
// across the pyramid: each level's tile-grid radius is half the previous
// level's, starting from a radius derived from the configured chunk and
// frontier radii.
func levelRadius(chunkRadius, frontierRadius int32, nLevels int) []int32 {
	base := chunkRadius + frontierRadius
	radii := make([]int32, nLevels)
	r := base
	for l := 0; l < nLevels; l++ {
		radii[l] = r
		r = (r + 1) / 2
		if r < 1 {
			r = 1
		}
	}
	return radii
}

// NewFrontier builds an empty pyramid of nLevels circles.
func NewFrontier(chunkRadius, frontierRadius int32, nLevels int, loader Loader, mesher Mesher, reg *Registry) *Frontier {
	radii := levelRadius(chunkRadius, frontierRadius, nLevels)
	f := &Frontier{loader: loader, mesher: mesher, reg: reg}
	for l := 0; l < nLevels; l++ {
		f.levels = append(f.levels, &level{
			circle: NewCircle[*tile](radii[l]),
			packs:  make(map[int64]*pack),
			masks:  intintmap.New(64, 0.6),
			index:  l,
		})
	}
	return f
}

// MarkDirty marks level L (if it exists) as needing a remesh pass.
func (f *Frontier) MarkDirty(l int) {
	if l >= 0 && l < len(f.levels) {
		f.levels[l].dirty = true
	}
}

// Center shifts every level's circle, each at half the horizontal
// resolution of the one before it (i.e. coordinates right-shifted by one
// additional bit per level relative to the base chunk coordinate).
func (f *Frontier) Center(cx, cz int32) {
	for _, lv := range f.levels {
		lcx, lcz := cx>>int32(lv.index), cz>>int32(lv.index)
		lv.circle.Center(lcx, lcz, func(x, z int32, t *tile) {
			f.disposeTile(lv, t)
		})
	}
}

func (f *Frontier) disposeTile(lv *level, t *tile) {
	if !t.meshed {
		return
	}
	t.pk.enabled[t.quad] = false
	lv.masks.Put(t.pk.key, int64(packBitmask(t.pk)))
	if t.pk.empty() {
		if t.pk.solid != nil {
			t.pk.solid.Dispose()
		}
		if t.pk.water != nil {
			t.pk.water.Dispose()
		}
		delete(lv.packs, t.pk.key)
		lv.masks.Put(t.pk.key, 0)
	}
	if lv.index+1 < len(f.levels) {
		f.MarkDirty(lv.index + 1)
	}
}

// packBitmask folds a pack's per-quadrant enabled flags into the small
// integer mirrored in the level's intintmap.
func packBitmask(p *pack) uint8 {
	var m uint8
	for i, e := range p.enabled {
		if e {
			m |= 1 << uint(i)
		}
	}
	return m
}

// Remesh processes every level bottom-up: level L is only meshed after
// level L-1 has had a chance to settle, since L's visibility mask depends
// on L-1's tiles having meshes.
func (f *Frontier) Remesh(w *World) {
	for _, lv := range f.levels {
		f.remeshLevel(w, lv)
	}
}

func (f *Frontier) remeshLevel(w *World, lv *level) {
	if !lv.dirty {
		return
	}
	budget := w.conf.LODChunksToMeshPerFrame
	exhausted := false
	lv.circle.Each(func(x, z int32, t *tile) bool {
		if t.meshed {
			return false
		}
		if budget <= 0 {
			exhausted = true
			return true
		}
		f.buildTile(w, lv, t)
		budget--
		return false
	})

	f.updateMasks(lv)
	lv.dirty = exhausted
}

// ensureTile returns the tile at (x,z) in level lv, creating (and
// packing) it if it doesn't exist yet.
func (f *Frontier) ensureTile(lv *level, x, z int32) *tile {
	if t, ok := lv.circle.Get(x, z); ok {
		return t
	}
	quad, key := quadrant(x, z)
	pk, ok := lv.packs[key]
	if !ok {
		pk = &pack{key: key}
		lv.packs[key] = pk
		lv.masks.Put(key, 0)
	}
	t := &tile{pos: TilePos{X: x, Z: z, Level: lv.index}, pk: pk, quad: quad}
	lv.circle.Set(x, z, t)
	return t
}

func (f *Frontier) buildTile(w *World, lv *level, t *tile) {
	side := int32(ChunkWidth) / FrontierLOD
	stride := int32(FrontierLOD) << uint(lv.index)
	strip := NewHeightStrip(side)

	baseX := (t.pos.X << uint(lv.index)) * ChunkWidth
	baseZ := (t.pos.Z << uint(lv.index)) * ChunkWidth

	col := NewColumnBuffer()
	for i := int32(0); i < side+2; i++ {
		for j := int32(0); j < side+2; j++ {
			ax := baseX + (i-1)*stride
			az := baseZ + (j-1)*stride
			col.Clear()
			f.loader(ax, az, col)
			col.seal()
			solidTop, waterTop := highestCells(col, f.reg)
			strip.Solid[i][j] = int16(solidTop)
			strip.Water[i][j] = int16(waterTop)
		}
	}

	tileSide := int32(ChunkWidth) << uint(lv.index)
	t.pk.solid = f.mesher.MeshFrontier(strip, t.quad, baseX, baseZ, tileSide, tileSide, int32(lv.index), t.pk.solid, true)
	t.pk.water = f.mesher.MeshFrontier(strip, t.quad, baseX, baseZ, tileSide, tileSide, int32(lv.index), t.pk.water, false)
	t.pk.enabled[t.quad] = true
	t.meshed = true
	lv.masks.Put(t.pk.key, int64(packBitmask(t.pk)))

	// A freshly meshed tile needs a coarser surrogate above it: seed the
	// parent tile (if it doesn't already exist) and mark its level dirty so
	// remeshLevel has something to build on the next pass.
	if lv.index+1 < len(f.levels) {
		parent := f.levels[lv.index+1]
		f.ensureTile(parent, t.pos.X>>1, t.pos.Z>>1)
		f.MarkDirty(lv.index + 1)
	}
}

// highestCells scans a sealed run stack for the top of its highest solid
// run and the top of its highest non-empty, non-solid run (water), the two
// samples a frontier quadrant column contributes to its opaque and water
// strips. A column with no such run reports 0 for that strip.
func highestCells(col *ColumnBuffer, reg *Registry) (solidTop, waterTop int32) {
	for _, r := range col.runs {
		// A run is uninteresting once we already know both tops, but runs
		// are few per column so a full pass is cheap and simple.
		if r.block == Empty {
			continue
		}
		if reg.Block(r.block).Solid {
			if r.top > solidTop {
				solidTop = r.top
			}
		} else if r.top > waterTop {
			waterTop = r.top
		}
	}
	return
}

// updateMasks recomputes every tile's child-coverage mask from the level
// below, and shows/hides each tile's quadrant accordingly.
func (f *Frontier) updateMasks(lv *level) {
	if lv.index == 0 {
		return
	}
	child := f.levels[lv.index-1]
	lv.circle.Each(func(x, z int32, t *tile) bool {
		if !t.meshed {
			return false
		}
		var mask uint8
		for k := 0; k < 4; k++ {
			cx := x*2 + int32(k>>1)
			cz := z*2 + int32(k&1)
			if ct, ok := child.circle.Get(cx, cz); ok && ct.meshed {
				mask |= 1 << uint(k)
			}
		}
		if mask == t.mask {
			return false
		}
		t.mask = mask
		shown := mask != 0b1111
		word := maskWordFromLevel(lv, t.pk)
		if t.pk.solid != nil {
			t.pk.solid.Show(word, shown)
		}
		if t.pk.water != nil {
			t.pk.water.Show(word, shown)
		}
		return false
	})
}

// maskWordFromLevel reads a pack's live-quadrant bitmask back from the level's
// intintmap (the authoritative mirror updated by buildTile and
// disposeTile) and spreads it into the 64-bit word pushed to the GPU
// mesh's show/mask attribute, one 16-bit lane per quadrant so a mesher
// can fit a finer per-quadrant mask in each lane if it wants to.
func maskWordFromLevel(lv *level, p *pack) uint64 {
	bits, _ := lv.masks.Get(p.key)
	var w uint64
	for i := 0; i < MultiMeshSide*MultiMeshSide; i++ {
		if bits&(1<<uint(i)) != 0 {
			w |= 1 << uint(i*16)
		}
	}
	return w
}

// TileMeshed reports whether the tile at (x,z,level) exists and has a
// mesh, for tests exercising invariant 6.
func (f *Frontier) TileMeshed(x, z int32, lv int) bool {
	if lv < 0 || lv >= len(f.levels) {
		return false
	}
	t, ok := f.levels[lv].circle.Get(x, z)
	return ok && t.meshed
}

// TileMask returns the tile's 4-bit child-coverage mask.
func (f *Frontier) TileMask(x, z int32, lv int) (uint8, bool) {
	if lv < 0 || lv >= len(f.levels) {
		return 0, false
	}
	t, ok := f.levels[lv].circle.Get(x, z)
	if !ok {
		return 0, false
	}
	return t.mask, true
}

// EnsureTile exposes tile creation for World.loadChunkAt to seed a level 0
// tile for each newly loaded chunk (level 0 tiles mirror the chunk circle 1:1).
func (f *Frontier) EnsureTile(lv int, x, z int32) {
	f.ensureTile(f.levels[lv], x, z)
}
