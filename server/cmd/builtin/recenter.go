package builtin

import (
	"strconv"

	"github.com/briarrock/terrain/server/cmd"
	"github.com/briarrock/terrain/server/world"
)

// Recenter moves the loaded disk's center to an explicit world position,
// bypassing whatever normally drives World.Recenter (a moving viewpoint).
// It's meant for manual testing from the console.
type Recenter struct {
	w *world.World
}

// NewRecenter returns the "recenter" command.
func NewRecenter(w *world.World) *Recenter {
	return &Recenter{w: w}
}

func (r *Recenter) Name() string  { return "recenter" }
func (r *Recenter) Usage() string { return "recenter <x> <z>" }

func (r *Recenter) Execute(args []string, _ cmd.Source, out *cmd.Output) {
	if len(args) != 2 {
		out.Printf("usage: %s", r.Usage())
		return
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		out.Error(err)
		return
	}
	z, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		out.Error(err)
		return
	}
	r.w.Recenter(x, 0, z)
	out.Printf("recentered on (%.1f, %.1f)", x, z)
}
