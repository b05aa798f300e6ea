// Package terrain is the top-level entry point: Engine wraps a World,
// built by the caller from a Registry, a Loader and a Mesher, together with
// the Timing harness that drives it, the way the teacher's own Server wires
// a world, a player list and a listener together behind one constructor.
package terrain

import (
	"log/slog"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/briarrock/terrain/server"
	"github.com/briarrock/terrain/server/timing"
	"github.com/briarrock/terrain/server/world"
)

// Engine is the single-process coordinator for one running world: it
// owns the World, the Timing harness driving it, and an identity used to
// tell multiple engines apart in logs (tests standing up several worlds
// being the common case).
type Engine struct {
	id  uuid.UUID
	log *slog.Logger

	world   *world.World
	harness *timing.Harness
}

// New wraps an already-built World in an Engine: it assigns the engine its
// identity, wires World.Remesh as the Timing harness's remesh step, and
// attaches update/render as the harness's other two callbacks. The World is
// built by the caller (via world.New) rather than by New itself, since a
// caller's update/render closures usually need to reach the same World the
// Engine ends up driving.
func New(conf server.Config, w *world.World, update, render timing.Callback) (*Engine, error) {
	log := conf.Log
	if log == nil {
		log = slog.Default()
	}
	id := uuid.New()
	log = log.With("engine", id.String())

	e := &Engine{id: id, log: log, world: w}
	e.harness = timing.New(update, w.Remesh, render, log)
	return e, nil
}

// ID returns the engine's identity, suitable for log correlation when
// several engines run in the same process.
func (e *Engine) ID() uuid.UUID { return e.id }

// World returns the engine's World.
func (e *Engine) World() *world.World { return e.world }

// Timing returns the Harness driving this engine's World.
func (e *Engine) Timing() *timing.Harness { return e.harness }

// LogStats emits a debug-level structured log line summarizing the
// currently loaded disk, tagging the center chunk with chunkLogTag rather
// than its raw coordinates.
func (e *Engine) LogStats() {
	s := e.world.Stats()
	e.log.Debug("engine stats",
		"chunks", s.LoadedChunks,
		"center_tag", chunkLogTag(world.ChunkPos{X: s.CenterX, Z: s.CenterZ}),
	)
}

// chunkLogTag derives a short, stable debug tag for a chunk position from
// its xxhash, attached to structured log lines instead of the raw
// coordinates so high-volume per-chunk logs stay grep-friendly at a
// glance.
func chunkLogTag(pos world.ChunkPos) uint32 {
	var buf [8]byte
	buf[0] = byte(pos.X)
	buf[1] = byte(pos.X >> 8)
	buf[2] = byte(pos.X >> 16)
	buf[3] = byte(pos.X >> 24)
	buf[4] = byte(pos.Z)
	buf[5] = byte(pos.Z >> 8)
	buf[6] = byte(pos.Z >> 16)
	buf[7] = byte(pos.Z >> 24)
	return uint32(xxhash.Sum64(buf[:]))
}
