// Package builtin implements the console's built-in commands: stats,
// recenter, chunks and frontier. Each constructor closes over the World
// (and, for stats, the timing.Harness) it reports on or mutates.
package builtin

import (
	"github.com/briarrock/terrain/server/cmd"
	"github.com/briarrock/terrain/server/timing"
	"github.com/briarrock/terrain/server/world"
)

// Stats reports the loaded-chunk count, current center, and the rolling
// per-phase timing averages.
type Stats struct {
	w *world.World
	h *timing.Harness
}

// NewStats returns the "stats" command.
func NewStats(w *world.World, h *timing.Harness) *Stats {
	return &Stats{w: w, h: h}
}

func (s *Stats) Name() string  { return "stats" }
func (s *Stats) Usage() string { return "stats" }

func (s *Stats) Execute(_ []string, _ cmd.Source, out *cmd.Output) {
	out.Printf("world: %s", s.w.Stats())
	if s.h == nil {
		return
	}
	t := s.h.Stats()
	out.Printf("update=%.4fs remesh=%.4fs render=%.4fs quarantined=%v",
		t.UpdateSeconds, t.RemeshSeconds, t.RenderSeconds, s.h.Quarantined())
}
