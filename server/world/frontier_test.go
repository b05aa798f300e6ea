package world

import (
	"image/color"
	"testing"
)

type frontierFakeMesh struct{ disposed bool }

func (m *frontierFakeMesh) SetPosition(x, y, z float32)  {}
func (m *frontierFakeMesh) Show(mask uint64, shown bool) {}
func (m *frontierFakeMesh) Dispose()                     { m.disposed = true }

type frontierFakeMesher struct{ builds int }

func (m *frontierFakeMesher) MeshChunk(*PaddedVolume, Mesh, Mesh) (Mesh, Mesh) { return nil, nil }

func (m *frontierFakeMesher) MeshFrontier(strip *HeightStrip, maskIndex int, px, pz, nx, nz, lod int32, old Mesh, isSolid bool) Mesh {
	m.builds++
	return &frontierFakeMesh{}
}

func frontierTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if _, err := reg.AddMaterialOfColor("stone", color.RGBA{R: 200, G: 200, B: 200, A: 255}, false); err != nil {
		t.Fatal(err)
	}
	return reg
}

func flatFrontierLoader(_, _ int32, col *ColumnBuffer) {
	col.Push(BlockID(2), 40)
}

func TestQuadrantPacksFourNeighborsTogether(t *testing.T) {
	seen := map[int64]map[int]bool{}
	for _, p := range [][2]int32{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		idx, key := quadrant(p[0], p[1])
		if seen[key] == nil {
			seen[key] = map[int]bool{}
		}
		if seen[key][idx] {
			t.Fatalf("duplicate quadrant index %d for key %d", idx, key)
		}
		seen[key][idx] = true
	}
	if len(seen) != 1 {
		t.Fatalf("expected all 4 tiles to share one pack key, got %d distinct keys", len(seen))
	}
	for _, quadrants := range seen {
		if len(quadrants) != 4 {
			t.Fatalf("expected 4 distinct quadrant indices, got %v", quadrants)
		}
	}
}

func TestQuadrantDifferentPacksFarApart(t *testing.T) {
	_, k1 := quadrant(0, 0)
	_, k2 := quadrant(10, 10)
	if k1 == k2 {
		t.Fatal("distant tiles should not share a pack key")
	}
}

func TestPackEmpty(t *testing.T) {
	p := &pack{}
	if !p.empty() {
		t.Fatal("a fresh pack should be empty")
	}
	p.enabled[2] = true
	if p.empty() {
		t.Fatal("a pack with any enabled quadrant should not be empty")
	}
}

func TestFrontierEnsureTileAndRemeshBuildsLevel0(t *testing.T) {
	reg := frontierTestRegistry(t)
	mesher := &frontierFakeMesher{}
	w := &World{conf: Config{LODChunksToMeshPerFrame: 16}}
	f := NewFrontier(4, 4, 3, flatFrontierLoader, mesher, reg)
	w.frontier = f

	f.EnsureTile(0, 0, 0)
	f.MarkDirty(0)
	f.Remesh(w)

	if !f.TileMeshed(0, 0, 0) {
		t.Fatal("expected tile (0,0,L0) to be meshed after Remesh")
	}
	if mesher.builds == 0 {
		t.Fatal("expected MeshFrontier to have been invoked")
	}
}

func TestFrontierRemeshRespectsBudget(t *testing.T) {
	reg := frontierTestRegistry(t)
	mesher := &frontierFakeMesher{}
	w := &World{conf: Config{LODChunksToMeshPerFrame: 1}}
	f := NewFrontier(4, 4, 2, flatFrontierLoader, mesher, reg)
	w.frontier = f

	f.EnsureTile(0, 0, 0)
	f.EnsureTile(0, 1, 0)
	f.EnsureTile(0, -1, 0)
	f.MarkDirty(0)
	f.Remesh(w)

	meshedCount := 0
	for _, pos := range [][2]int32{{0, 0}, {1, 0}, {-1, 0}} {
		if f.TileMeshed(pos[0], pos[1], 0) {
			meshedCount++
		}
	}
	if meshedCount != 1 {
		t.Fatalf("expected exactly 1 tile built under a budget of 1, got %d", meshedCount)
	}
}

func TestFrontierRemeshPopulatesHigherLevels(t *testing.T) {
	reg := frontierTestRegistry(t)
	mesher := &frontierFakeMesher{}
	w := &World{conf: Config{LODChunksToMeshPerFrame: 16}}
	f := NewFrontier(8, 8, 3, flatFrontierLoader, mesher, reg)
	w.frontier = f

	f.EnsureTile(0, 0, 0)
	f.MarkDirty(0)
	f.Remesh(w)

	if !f.TileMeshed(0, 0, 0) {
		t.Fatal("expected tile (0,0,L0) to be meshed")
	}
	if !f.TileMeshed(0, 0, 1) {
		t.Fatal("expected a level-1 parent tile to be seeded and meshed once its child is built")
	}
	if !f.TileMeshed(0, 0, 2) {
		t.Fatal("expected a level-2 parent tile to be seeded and meshed once its level-1 child is built")
	}
}

func TestFrontierCenterDisposesOutOfRangeTiles(t *testing.T) {
	reg := frontierTestRegistry(t)
	mesher := &frontierFakeMesher{}
	w := &World{conf: Config{LODChunksToMeshPerFrame: 16}}
	f := NewFrontier(2, 2, 2, flatFrontierLoader, mesher, reg)
	w.frontier = f

	f.EnsureTile(0, 0, 0)
	f.MarkDirty(0)
	f.Remesh(w)
	if !f.TileMeshed(0, 0, 0) {
		t.Fatal("setup: expected tile (0,0,L0) to be meshed")
	}

	f.Center(1000, 1000)
	if f.TileMeshed(0, 0, 0) {
		t.Fatal("a tile far outside the new center should have been disposed")
	}
}
