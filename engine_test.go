package terrain

import (
	"image/color"
	"log/slog"
	"testing"
	"time"

	"github.com/briarrock/terrain/server"
	"github.com/briarrock/terrain/server/world"
)

type nopMesh struct{}

func (nopMesh) SetPosition(x, y, z float32) {}
func (nopMesh) Show(mask uint64, shown bool) {}
func (nopMesh) Dispose() {}

type nopMesher struct{}

func (nopMesher) MeshChunk(*world.PaddedVolume, world.Mesh, world.Mesh) (world.Mesh, world.Mesh) {
	return nopMesh{}, nil
}

func (nopMesher) MeshFrontier(*world.HeightStrip, int, int32, int32, int32, int32, int32, world.Mesh, bool) world.Mesh {
	return nil
}

func flatLoader(ax, az int32, col *world.ColumnBuffer) {
	col.Push(world.BlockID(2), 4)
}

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	reg := world.NewRegistry()
	if _, err := reg.AddMaterialOfColor("stone", color.RGBA{R: 150, G: 150, B: 150, A: 255}, false); err != nil {
		t.Fatal(err)
	}
	w, err := world.New(world.Config{
		Registry:                reg,
		Mesher:                  nopMesher{},
		Loader:                  flatLoader,
		ChunkRadius:             2,
		FrontierRadius:          2,
		FrontierLevels:          2,
		ChunksToLoadPerFrame:    64,
		ChunksToMeshPerFrame:    64,
		LODChunksToMeshPerFrame: 64,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func TestNewAssignsUniqueID(t *testing.T) {
	w1 := newTestWorld(t)
	w2 := newTestWorld(t)

	e1, err := New(server.Config{}, w1, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e2, err := New(server.Config{}, w2, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e1.ID() == e2.ID() {
		t.Fatal("two engines should be assigned distinct ids")
	}
}

func TestNewWiresWorldRemeshIntoHarness(t *testing.T) {
	w := newTestWorld(t)
	w.Recenter(0, 0, 0)

	updated := false
	e, err := New(server.Config{}, w, func() { updated = true }, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c, ok := w.Chunk(world.ChunkPos{X: 0, Z: 0})
	if !ok {
		t.Fatal("expected the center chunk to be loaded")
	}
	if !c.Dirty() {
		t.Fatal("setup: expected the center chunk to start dirty")
	}

	start := time.Now()
	e.Timing().Pump(start)
	if c.Dirty() {
		t.Fatal("expected Pump's remesh phase to have cleared the chunk's dirty flag")
	}

	e.Timing().Pump(start.Add(time.Second / world.TicksPerSecond))
	if !updated {
		t.Fatal("expected the update callback to run once a full tick interval has elapsed")
	}
}

func TestLogStatsDoesNotPanic(t *testing.T) {
	w := newTestWorld(t)
	w.Recenter(0, 0, 0)

	e, err := New(server.Config{Log: slog.Default()}, w, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.LogStats()
}

func TestChunkLogTagIsStableAndPositionSensitive(t *testing.T) {
	a := chunkLogTag(world.ChunkPos{X: 3, Z: 7})
	b := chunkLogTag(world.ChunkPos{X: 3, Z: 7})
	if a != b {
		t.Fatal("chunkLogTag should be deterministic for the same position")
	}
	if c := chunkLogTag(world.ChunkPos{X: 3, Z: 8}); c == a {
		t.Fatal("chunkLogTag should differ for distinct positions (collisions aside)")
	}
}
