package timing

import (
	"testing"
	"time"
)

func TestPumpDrainsFixedTicks(t *testing.T) {
	ticks := 0
	h := New(func() { ticks++ }, nil, nil, nil)

	base := time.Unix(0, 0)
	h.Pump(base)
	if ticks != 0 {
		t.Fatalf("first pump should only seed the clock, got %d ticks", ticks)
	}

	h.Pump(base.Add(3 * h.tickInterval))
	if ticks != 3 {
		t.Fatalf("ticks = %d, want 3", ticks)
	}
}

func TestPumpCapsTicksPerFrameAndSnapsForward(t *testing.T) {
	ticks := 0
	h := New(func() { ticks++ }, nil, nil, nil)

	base := time.Unix(0, 0)
	h.Pump(base)
	// Way more ticks owed than the per-frame cap allows.
	h.Pump(base.Add(100 * h.tickInterval))

	if ticks != 4 { // world.TicksPerFrame
		t.Fatalf("ticks = %d, want capped at 4", ticks)
	}
	// The clock should have snapped forward rather than retain the backlog.
	remaining := base.Add(100 * h.tickInterval).Sub(h.lastUpdate)
	if remaining != 0 {
		t.Fatalf("expected clock to snap forward, backlog = %v", remaining)
	}
}

func TestPanicQuarantinesAllCallbacks(t *testing.T) {
	remeshCalled := false
	h := New(
		func() { panic("boom") },
		func() { remeshCalled = true },
		nil,
		nil,
	)

	base := time.Unix(0, 0)
	h.Pump(base)
	// The seeding pump runs remesh before any update has panicked.
	remeshCalled = false
	h.Pump(base.Add(h.tickInterval))

	if !h.Quarantined() {
		t.Fatal("expected harness to be quarantined after update panic")
	}
	if remeshCalled {
		t.Fatal("remesh should not run once quarantined")
	}

	// A further pump must be a complete no-op.
	h.Pump(base.Add(10 * h.tickInterval))
	if remeshCalled {
		t.Fatal("quarantined harness resumed calling callbacks")
	}
}

func TestStatsReflectRecordedSamples(t *testing.T) {
	h := New(func() {}, func() {}, func() {}, nil)
	base := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		h.Pump(base.Add(time.Duration(i) * h.tickInterval))
	}
	stats := h.Stats()
	if stats.UpdateSeconds < 0 || stats.RemeshSeconds < 0 || stats.RenderSeconds < 0 {
		t.Fatalf("unexpected negative stats: %+v", stats)
	}
}
