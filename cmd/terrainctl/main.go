// Command terrainctl wires a Registry, a procedural Loader, and a
// headless Mesher into a World driven by a timing.Harness, and exposes it
// through an interactive console. It exists as a runnable demonstration
// of the server packages, not as a renderer: MeshChunk/MeshFrontier build
// nothing and return nil meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	terrain "github.com/briarrock/terrain"
	"github.com/briarrock/terrain/server"
	"github.com/briarrock/terrain/server/cmd"
	"github.com/briarrock/terrain/server/cmd/builtin"
	"github.com/briarrock/terrain/server/console"
	"github.com/briarrock/terrain/server/world"
)

func main() {
	configPath := flag.String("config", "terrainctl.toml", "path to the TOML config file")
	flag.Parse()

	userConf, err := server.ReadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read config:", err)
		os.Exit(1)
	}
	conf, err := userConf.Config()
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolve config:", err)
		os.Exit(1)
	}

	reg, palette, err := newRegistry()
	if err != nil {
		conf.Log.Error("build registry", "err", err)
		os.Exit(1)
	}
	conf.Bedrock = palette.bedrock

	w, err := world.New(conf.WorldConfig(reg, loggingMesher{}, palette.loader()))
	if err != nil {
		conf.Log.Error("build world", "err", err)
		os.Exit(1)
	}

	viewer := &viewpoint{pos: mgl32.Vec3{0, 80, 0}}
	engine, err := terrain.New(conf, w,
		func() { viewer.step(1.0 / float64(world.TicksPerSecond)) },
		func() { w.Recenter(float64(viewer.pos.X()), float64(viewer.pos.Y()), float64(viewer.pos.Z())) },
	)
	if err != nil {
		conf.Log.Error("build engine", "err", err)
		os.Exit(1)
	}
	h := engine.Timing()

	cmd.Register(builtin.NewStats(w, h))
	cmd.Register(builtin.NewRecenter(w))
	cmd.Register(builtin.NewChunks(w))
	cmd.Register(builtin.NewFrontier(w))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go console.New(conf.Log).Run(ctx)

	conf.Log.Info("terrainctl started", "engine", engine.ID(), "chunk_radius", conf.ChunkRadius, "frontier_levels", conf.FrontierLevels)
	runLoop(ctx, engine)
	conf.Log.Info("terrainctl stopped")
}

func runLoop(ctx context.Context, e *terrain.Engine) {
	h := e.Timing()
	ticker := time.NewTicker(time.Second / time.Duration(world.TicksPerSecond) / world.TickResolution)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			h.Pump(now)
			if h.Quarantined() {
				return
			}
			if tick++; tick%(world.TicksPerSecond*world.TickResolution*10) == 0 {
				e.LogStats()
			}
		}
	}
}

// viewpoint is the stand-in for a moving camera: it walks a slow circle
// around the origin so Recenter has something to chase.
type viewpoint struct {
	pos   mgl32.Vec3
	angle float64
}

func (v *viewpoint) step(dt float64) {
	v.angle += dt * 0.1
	const radius = float32(64)
	v.pos[0] = radius * float32(math.Cos(v.angle))
	v.pos[2] = radius * float32(math.Sin(v.angle))
}

// palette holds the block identifiers terrainctl's procedural loader
// needs, resolved once at registry construction time rather than assumed.
type palette struct {
	bedrock, stone, dirt, grass, water world.BlockID
}

// newRegistry builds the small flat-color block palette terrainctl
// generates terrain from: bedrock, stone, dirt, grass and water.
func newRegistry() (*world.Registry, palette, error) {
	reg := world.NewRegistry()

	if _, err := reg.AddMaterialOfColor("bedrock", color.RGBA{R: 40, G: 40, B: 40, A: 255}, false); err != nil {
		return nil, palette{}, err
	}
	if _, err := reg.AddMaterialOfColor("stone", color.RGBA{R: 120, G: 120, B: 120, A: 255}, false); err != nil {
		return nil, palette{}, err
	}
	if _, err := reg.AddMaterialOfColor("dirt", color.RGBA{R: 110, G: 80, B: 50, A: 255}, false); err != nil {
		return nil, palette{}, err
	}
	if _, err := reg.AddMaterialOfColor("grass", color.RGBA{R: 70, G: 140, B: 60, A: 255}, false); err != nil {
		return nil, palette{}, err
	}
	if _, err := reg.AddMaterialOfColor("water", color.RGBA{R: 40, G: 90, B: 180, A: 160}, true); err != nil {
		return nil, palette{}, err
	}

	var p palette
	var err error
	if p.bedrock, err = reg.AddBlock([]string{"bedrock"}, true); err != nil {
		return nil, palette{}, err
	}
	if p.stone, err = reg.AddBlock([]string{"stone"}, true); err != nil {
		return nil, palette{}, err
	}
	if p.dirt, err = reg.AddBlock([]string{"dirt"}, true); err != nil {
		return nil, palette{}, err
	}
	if p.grass, err = reg.AddBlock([]string{"grass", "dirt", "grass"}, true); err != nil {
		return nil, palette{}, err
	}
	if p.water, err = reg.AddBlock([]string{"water"}, false); err != nil {
		return nil, palette{}, err
	}
	return reg, p, nil
}

// loader returns a deterministic sine-hill terrain generator: stone up to
// a rolling height, a dirt layer, a grass cap, and water filling anything
// still below sea level.
func (p palette) loader() world.Loader {
	const seaLevel = 62
	return func(ax, az int32, col *world.ColumnBuffer) {
		height := int32(56 + 10*math.Sin(float64(ax)*0.05) + 6*math.Cos(float64(az)*0.08))
		if height < 1 {
			height = 1
		}

		col.Push(p.stone, height-4)
		col.Push(p.dirt, height-1)
		col.Push(p.grass, height)
		if height < seaLevel {
			col.Push(p.water, seaLevel)
		}
	}
}

// loggingMesher stands in for a real GPU mesher: it returns nil meshes,
// since terrainctl has no renderer to hand geometry to.
type loggingMesher struct{}

func (m loggingMesher) MeshChunk(buf *world.PaddedVolume, oldSolid, oldWater world.Mesh) (world.Mesh, world.Mesh) {
	return nil, nil
}

func (m loggingMesher) MeshFrontier(strip *world.HeightStrip, maskIndex int, px, pz, nx, nz int32, lod int32, old world.Mesh, isSolid bool) world.Mesh {
	return nil
}
