package hrmonitor

import (
	"sync/atomic"
	"time"
)

// Window is the outcome of one aggregation window.
type Window struct {
	// Beats counted since the previous window boundary.
	Beats uint32
	// BPM is Beats scaled to one minute.
	BPM uint32
	// Valid is false for the first window of a session, which starts before
	// the filter has settled.
	Valid bool
}

// Aggregator counts beats over a fixed window. Observe is called from the
// sampling loop and WindowElapsed from the window timer; the counter is
// exchanged atomically so no beat is lost at a window boundary.
type Aggregator struct {
	beats      atomic.Uint32
	settled    atomic.Bool
	multiplier uint32
}

// Window lengths accepted by NewAggregator.
const (
	MinWindow = time.Millisecond
	MaxWindow = time.Minute
)

// NewAggregator returns an Aggregator for windows of the given length. The
// length is clamped to [MinWindow, MaxWindow] and truncated to milliseconds.
func NewAggregator(window time.Duration) *Aggregator {
	if window < MinWindow {
		window = MinWindow
	}
	if window > MaxWindow {
		window = MaxWindow
	}
	return &Aggregator{
		multiplier: uint32(time.Minute.Milliseconds() / window.Milliseconds()),
	}
}

// Observe counts a detected beat.
func (a *Aggregator) Observe(beat bool) {
	if beat {
		a.beats.Add(1)
	}
}

// Beats returns the beats counted in the current window so far.
func (a *Aggregator) Beats() uint32 {
	return a.beats.Load()
}

// WindowElapsed closes the current window and starts a new one.
func (a *Aggregator) WindowElapsed() Window {
	n := a.beats.Swap(0)
	return Window{
		Beats: n,
		BPM:   n * a.multiplier,
		Valid: a.settled.Swap(true),
	}
}

// Reset discards the current count and marks the next window as unsettled.
func (a *Aggregator) Reset() {
	a.beats.Store(0)
	a.settled.Store(false)
}
