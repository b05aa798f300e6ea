package world

import (
	"image/color"
	"testing"
)

type recordingMesh struct{ shown bool }

func (m *recordingMesh) SetPosition(x, y, z float32)  {}
func (m *recordingMesh) Show(mask uint64, shown bool) { m.shown = shown }
func (m *recordingMesh) Dispose()                     {}

type recordingMesher struct{ chunkMeshes int }

func (m *recordingMesher) MeshChunk(buf *PaddedVolume, oldSolid, oldWater Mesh) (Mesh, Mesh) {
	m.chunkMeshes++
	return &recordingMesh{}, nil
}

func (m *recordingMesher) MeshFrontier(strip *HeightStrip, maskIndex int, px, pz, nx, nz, lod int32, old Mesh, isSolid bool) Mesh {
	if !isSolid {
		return nil
	}
	return &recordingMesh{}
}

func flatWorldLoader(ax, az int32, col *ColumnBuffer) {
	col.Push(BlockID(2), 8)
}

func newTestWorld(t *testing.T, chunkRadius int32) (*World, *recordingMesher) {
	t.Helper()
	reg := NewRegistry()
	if _, err := reg.AddMaterialOfColor("stone", color.RGBA{R: 150, G: 150, B: 150, A: 255}, false); err != nil {
		t.Fatal(err)
	}
	mesher := &recordingMesher{}
	w, err := New(Config{
		Registry:                reg,
		Mesher:                  mesher,
		Loader:                  flatWorldLoader,
		Bedrock:                 BlockID(2),
		ChunkRadius:             chunkRadius,
		FrontierRadius:          2,
		FrontierLevels:          2,
		ChunksToLoadPerFrame:    64,
		ChunksToMeshPerFrame:    64,
		LODChunksToMeshPerFrame: 64,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, mesher
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected an error when Registry/Mesher/Loader are all missing")
	}
}

func TestGetBlockBoundarySemantics(t *testing.T) {
	w, _ := newTestWorld(t, 3)
	w.Recenter(0, 0, 0)

	if got := w.GetBlock(0, -1, 0); got != w.conf.Bedrock {
		t.Fatalf("GetBlock below y=0 = %v, want bedrock", got)
	}
	if got := w.GetBlock(0, WorldHeight, 0); got != Empty {
		t.Fatalf("GetBlock at y=WorldHeight = %v, want Empty", got)
	}
	if got := w.GetBlock(100000, 5, 100000); got != Unknown {
		t.Fatalf("GetBlock in an unloaded chunk = %v, want Unknown", got)
	}
	if got := w.GetBlock(0, 3, 0); got != BlockID(2) {
		t.Fatalf("GetBlock(0,3,0) = %v, want the loaded stone block", got)
	}
}

func TestRecenterLoadsChunksWithinRadius(t *testing.T) {
	w, _ := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)

	if _, ok := w.Chunk(ChunkPos{0, 0}); !ok {
		t.Fatal("expected the center chunk to be loaded")
	}
	if _, ok := w.Chunk(ChunkPos{1000, 1000}); ok {
		t.Fatal("a far-away chunk should not be loaded")
	}
}

func TestRecenterAtSamePositionIsIdempotent(t *testing.T) {
	w, _ := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)
	w.Remesh()
	c, ok := w.Chunk(ChunkPos{0, 0})
	if !ok {
		t.Fatal("expected the center chunk to be loaded")
	}
	meshBefore := c.solidMesh

	w.Recenter(0, 0, 0)
	if c.solidMesh != meshBefore {
		t.Fatal("recentering at an unchanged position should not touch existing meshes")
	}
}

func TestSetBlockMarksEdgeNeighborDirty(t *testing.T) {
	w, _ := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)
	w.Remesh()

	neighbor, ok := w.Chunk(ChunkPos{1, 0})
	if !ok {
		t.Fatal("expected neighbor chunk (1,0) to be loaded")
	}
	neighbor.dirty = false

	w.SetBlock(ChunkWidth-1, 10, 0, BlockID(2))
	if !neighbor.dirty {
		t.Fatal("writing to the edge column should mark the edge neighbor dirty")
	}
}

func TestSetBlockOutsideVerticalRangeIsNoop(t *testing.T) {
	w, _ := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)
	w.SetBlock(0, -1, 0, BlockID(2))
	w.SetBlock(0, WorldHeight, 0, BlockID(2))
	// No panic and no visible effect: below-range and at-range writes are
	// silently dropped, since Chunk.voxels only spans [0,WorldHeight).
}

func TestRemeshBuildsReadyChunks(t *testing.T) {
	w, mesher := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)
	w.Remesh()

	c, ok := w.Chunk(ChunkPos{0, 0})
	if !ok {
		t.Fatal("expected the center chunk to be loaded")
	}
	if !c.Ready() {
		t.Fatal("the center chunk should be ready: all 4 edge neighbors are within radius 2")
	}
	if c.Dirty() {
		t.Fatal("a remeshed chunk should no longer be dirty")
	}
	if mesher.chunkMeshes == 0 {
		t.Fatal("expected at least one chunk to have been meshed")
	}
}

func TestRemeshSkipsNotReadyChunks(t *testing.T) {
	w, _ := newTestWorld(t, 2)
	w.Recenter(0, 0, 0)
	w.Remesh()

	edge, ok := w.Chunk(ChunkPos{2, 0})
	if !ok {
		t.Fatal("expected the rim chunk (2,0) to be loaded")
	}
	if edge.Ready() {
		t.Fatal("a rim chunk missing its outward neighbor should not be ready")
	}
	if !edge.Dirty() {
		t.Fatal("an unmeshed chunk should remain dirty")
	}
}

func TestRecenterTracksLoadBacklog(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.AddMaterialOfColor("stone", color.RGBA{R: 150, G: 150, B: 150, A: 255}, false); err != nil {
		t.Fatal(err)
	}
	w, err := New(Config{
		Registry:             reg,
		Mesher:               &recordingMesher{},
		Loader:               flatWorldLoader,
		ChunkRadius:          2,
		ChunksToLoadPerFrame: 1,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w.Recenter(0, 0, 0)
	if w.loadBacklog == 0 {
		t.Fatal("expected a nonzero backlog after admitting only 1 of many chunks in range")
	}

	for i := 0; i < 100 && w.loadBacklog > 0; i++ {
		w.Recenter(0, 0, 0)
	}
	if w.loadBacklog != 0 {
		t.Fatalf("expected the backlog to drain to 0 once every in-range chunk is loaded, got %d", w.loadBacklog)
	}
}

func TestStatsReportsLoadedChunkCount(t *testing.T) {
	w, _ := newTestWorld(t, 1)
	w.Recenter(0, 0, 0)

	stats := w.Stats()
	if stats.LoadedChunks == 0 {
		t.Fatal("expected at least one loaded chunk after Recenter")
	}
	if stats.CenterX != 0 || stats.CenterZ != 0 {
		t.Fatalf("Stats center = (%d,%d), want (0,0)", stats.CenterX, stats.CenterZ)
	}
}
