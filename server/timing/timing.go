// Package timing implements the frame-budget harness that drives a
// World's update, remesh and render passes on a deterministic cadence: a
// fixed-tick update loop bounded by TicksPerFrame, followed by one
// remesh pass and one render pass per pump. The harness is
// single-threaded and cooperative: Pump is meant to be called once per
// host animation frame (or, in tests, once per synthetic tick) from the
// same goroutine that owns the World.
package timing

import (
	"log/slog"
	"time"

	"github.com/briarrock/terrain/server/internal/ring"
	"github.com/briarrock/terrain/server/world"
)

// Callback is one of the three phases a Harness drives.
type Callback func()

// Harness sequences a World's update/remesh/render callbacks on a fixed
// tick rate, tracks a 60-sample rolling average duration for each phase,
// and quarantines all three callbacks permanently if any of them panics.
type Harness struct {
	update, remesh, render Callback
	log                    *slog.Logger

	tickInterval time.Duration
	lastUpdate   time.Time
	started      bool
	quarantined  bool

	updateMeter *ring.Meter
	remeshMeter *ring.Meter
	renderMeter *ring.Meter
}

// New builds a Harness ticking at world.TicksPerSecond. Any of the three
// callbacks may be nil, in which case that phase is skipped.
func New(update, remesh, render Callback, log *slog.Logger) *Harness {
	if log == nil {
		log = slog.Default()
	}
	return &Harness{
		update:       update,
		remesh:       remesh,
		render:       render,
		log:          log,
		tickInterval: time.Second / time.Duration(world.TicksPerSecond),
		updateMeter:  ring.NewMeter(),
		remeshMeter:  ring.NewMeter(),
		renderMeter:  ring.NewMeter(),
	}
}

// Quarantined reports whether a prior panic has permanently disabled all
// three callbacks.
func (h *Harness) Quarantined() bool { return h.quarantined }

// Pump advances the harness by one frame at time now. It drains up to
// world.TicksPerFrame fixed update ticks, guards against a death spiral
// (a backlog the update phase can't keep up with) by snapping the update
// clock forward to now once the per-frame tick cap is hit, then runs one
// remesh pass and one render pass.
func (h *Harness) Pump(now time.Time) {
	if h.quarantined {
		return
	}
	if !h.started {
		h.lastUpdate = now
		h.started = true
	}

	ticks := 0
	for now.Sub(h.lastUpdate) >= h.tickInterval && ticks < world.TicksPerFrame {
		h.invoke(h.update, h.updateMeter)
		if h.quarantined {
			return
		}
		h.lastUpdate = h.lastUpdate.Add(h.tickInterval)
		ticks++
	}
	if ticks == world.TicksPerFrame && now.Sub(h.lastUpdate) >= h.tickInterval {
		// The update phase can't keep pace with real time; rather than let
		// the backlog grow without bound, snap the clock forward and accept
		// the dropped ticks.
		h.lastUpdate = now
	}

	h.invoke(h.remesh, h.remeshMeter)
	if h.quarantined {
		return
	}
	h.invoke(h.render, h.renderMeter)
}

// invoke runs cb (if non-nil) under a recover that quarantines all three
// callbacks on panic, and records its duration in m regardless of outcome.
func (h *Harness) invoke(cb Callback, m *ring.Meter) {
	if cb == nil {
		return
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			h.quarantine(r)
		}
		m.Record(time.Since(start).Seconds())
	}()
	cb()
}

func (h *Harness) quarantine(r any) {
	h.quarantined = true
	h.update, h.remesh, h.render = nil, nil, nil
	h.log.Error("frame callback panicked, freezing world in place", "panic", r)
}

// Stats reports the current rolling-average duration, in seconds, of each
// phase. A zero value means that phase hasn't recorded a sample yet (or
// is nil).
type Stats struct {
	UpdateSeconds float64
	RemeshSeconds float64
	RenderSeconds float64
}

func (h *Harness) Stats() Stats {
	return Stats{
		UpdateSeconds: h.updateMeter.Average(),
		RemeshSeconds: h.remeshMeter.Average(),
		RenderSeconds: h.renderMeter.Average(),
	}
}
