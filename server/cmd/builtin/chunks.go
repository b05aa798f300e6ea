package builtin

import (
	"github.com/briarrock/terrain/server/cmd"
	"github.com/briarrock/terrain/server/world"
)

// Chunks reports whether a single chunk is loaded and, if so, its
// neighbor/dirty/ready/mesh state.
type Chunks struct {
	w *world.World
}

// NewChunks returns the "chunks" command.
func NewChunks(w *world.World) *Chunks {
	return &Chunks{w: w}
}

func (c *Chunks) Name() string  { return "chunks" }
func (c *Chunks) Usage() string { return "chunks <cx> <cz>" }

func (c *Chunks) Execute(args []string, _ cmd.Source, out *cmd.Output) {
	if len(args) != 2 {
		out.Printf("usage: %s", c.Usage())
		return
	}
	cx, cz, ok := parseChunkPos(args)
	if !ok {
		out.Printf("usage: %s", c.Usage())
		return
	}
	chunk, ok := c.w.Chunk(world.ChunkPos{X: cx, Z: cz})
	if !ok {
		out.Printf("(%d,%d): not loaded", cx, cz)
		return
	}
	out.Printf("(%d,%d): neighbors=%d ready=%v dirty=%v mesh=%v",
		cx, cz, chunk.Neighbors(), chunk.Ready(), chunk.Dirty(), chunk.HasMesh())
}
