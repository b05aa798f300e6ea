package builtin

import (
	"strconv"

	"github.com/briarrock/terrain/server/cmd"
	"github.com/briarrock/terrain/server/world"
)

// Frontier reports whether a given tile (x, z, level) has been meshed and
// its current child-coverage mask.
type Frontier struct {
	w *world.World
}

// NewFrontier returns the "frontier" command.
func NewFrontier(w *world.World) *Frontier {
	return &Frontier{w: w}
}

func (f *Frontier) Name() string  { return "frontier" }
func (f *Frontier) Usage() string { return "frontier <x> <z> <level>" }

func (f *Frontier) Execute(args []string, _ cmd.Source, out *cmd.Output) {
	if len(args) != 3 {
		out.Printf("usage: %s", f.Usage())
		return
	}
	x, z, ok := parseChunkPos(args[:2])
	if !ok {
		out.Printf("usage: %s", f.Usage())
		return
	}
	level, err := strconv.Atoi(args[2])
	if err != nil {
		out.Error(err)
		return
	}
	fr := f.w.Frontier()
	meshed := fr.TileMeshed(x, z, level)
	mask, _ := fr.TileMask(x, z, level)
	out.Printf("tile(%d,%d,L%d): meshed=%v mask=%04b", x, z, level, meshed, mask)
}

func parseChunkPos(args []string) (x, z int32, ok bool) {
	xi, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	zi, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	return int32(xi), int32(zi), true
}
