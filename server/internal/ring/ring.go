// Package ring implements a small rolling-window performance meter, used to
// publish per-callback timing averages (remesh/render/update) without
// allocating or blocking the hot path that records samples.
package ring

import (
	"math"
	"sync/atomic"
)

const window = 60

// Meter is a fixed 60-sample rolling window of float64 durations (seconds),
// safe for one writer and any number of concurrent readers. Samples are
// recorded by a single owner goroutine, and each Record publishes the new
// average through an atomic word; Average is lock-free and only loads that
// word, so readers never tear a partial float.
type Meter struct {
	samples [window]float64
	pos     int
	filled  int
	sum     float64

	published atomic.Uint64
}

// NewMeter returns an empty Meter.
func NewMeter() *Meter {
	return &Meter{}
}

// Record adds one sample (in seconds) to the window, evicting the oldest
// sample once the window is full, and republishes the new average.
func (m *Meter) Record(v float64) {
	if m.filled < window {
		m.samples[m.pos] = v
		m.sum += v
		m.filled++
	} else {
		old := m.samples[m.pos]
		m.samples[m.pos] = v
		m.sum += v - old
	}
	m.pos = (m.pos + 1) % window
	avg := 0.0
	if m.filled > 0 {
		avg = m.sum / float64(m.filled)
	}
	m.published.Store(math.Float64bits(avg))
}

// Average returns the most recently published rolling average. It never
// blocks and is safe to call from any goroutine, including while Record is
// concurrently updating the window.
func (m *Meter) Average() float64 {
	return math.Float64frombits(m.published.Load())
}

// Filled reports how many samples the window currently holds, in [0,60].
func (m *Meter) Filled() int {
	return m.filled
}
