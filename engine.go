package hrmonitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cgxeiji/hrmonitor/max30100"
)

// Sensor is the PPG sensor driven by the engine. *max30100.Device implements
// it.
type Sensor interface {
	PowerOn() error
	PowerOff() error
	Reset() error
	Configure(max30100.Config) error
	IRRed() (ir, red uint16, err error)
}

// Stats are running counters of an engine.
type Stats struct {
	// ReadErrors counts sensor reads that failed and were skipped.
	ReadErrors uint64
	// Dropped counts notifications the display queue did not accept in time.
	Dropped uint64
	// Windows counts heart rate results reported.
	Windows uint64
}

// Engine is the heart rate monitor: it samples the sensor, detects beats,
// aggregates them into BPM and sequences the sensor power state according to
// the on/off toggle.
type Engine struct {
	cfg    Config
	sensor Sensor
	timer  WindowTimer
	logger *zap.SugaredLogger

	notifier   *Notifier
	filter     *Filter
	detector   *BeatDetector
	aggregator *Aggregator
	spo2       *spo2Estimator

	// desired is written by Toggle only.
	desired atomic.Bool
	// state mirrors lifecycle.state for readers outside the sampling loop.
	state atomic.Int32

	lc lifecycle

	readErrors atomic.Uint64
	windows    atomic.Uint64
}

// New returns an engine sampling sensor and sending display notifications
// to queue. The engine starts Off.
func New(cfg Config, sensor Sensor, queue chan<- Message, options ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sensor == nil {
		return nil, fmt.Errorf("hrmonitor: %w: nil sensor", ErrInvalidConfig)
	}

	e := &Engine{
		cfg:        cfg,
		sensor:     sensor,
		timer:      NewWindowTimer(),
		logger:     zap.NewNop().Sugar(),
		filter:     NewFilter(cfg.DCShift),
		detector:   NewBeatDetector(cfg.MinBeatAmplitude, cfg.MaxBeatAmplitude),
		aggregator: NewAggregator(cfg.Window),
	}
	if cfg.SpO2 {
		e.spo2 = newSpO2Estimator()
	}
	for _, opt := range options {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop().Sugar()
	}
	if e.timer == nil {
		e.timer = NewWindowTimer()
	}
	e.notifier = NewNotifier(queue, cfg.Display.NotifyTimeout, e.logger)

	return e, nil
}

// Toggle flips the desired on/off state. It never blocks and has no other
// side effect, so it may be called from any goroutine, including edge
// handlers.
func (e *Engine) Toggle() {
	for {
		old := e.desired.Load()
		if e.desired.CompareAndSwap(old, !old) {
			return
		}
	}
}

// Desired reports whether the monitor is requested to be on.
func (e *Engine) Desired() bool {
	return e.desired.Load()
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Stats returns the running counters.
func (e *Engine) Stats() Stats {
	return Stats{
		ReadErrors: e.readErrors.Load(),
		Dropped:    e.notifier.Dropped(),
		Windows:    e.windows.Load(),
	}
}

// Run samples every TickPeriod until ctx is done. A session still active at
// that point is shut down without waiting for the shutdown delay. Errors
// starting a session are logged; they do not stop Run.
func (e *Engine) Run(ctx context.Context) error {
	tick := time.NewTicker(e.cfg.TickPeriod)
	defer tick.Stop()

	e.logger.Infow("heart rate monitor running", "tick", e.cfg.TickPeriod, "window", e.cfg.Window)

	for {
		select {
		case <-ctx.Done():
			e.halt()
			return ctx.Err()
		case <-tick.C:
		}

		if err := e.Step(); err != nil {
			e.logger.Errorw("could not start measurement", "error", err)
		}
	}
}

// sample reads the sensor once and feeds the beat pipeline. A failed read
// skips the tick.
func (e *Engine) sample() {
	ir, red, err := e.sensor.IRRed()
	if err != nil {
		n := e.readErrors.Add(1)
		e.logger.Debugw("skipping tick after sensor read failure", "error", err, "failures", n)
		return
	}

	beat := e.detector.Update(e.filter.Update(ir))
	e.aggregator.Observe(beat)
	if e.spo2 != nil {
		e.spo2.add(ir, red)
	}
}

// windowElapsed runs on the timer goroutine at every window boundary.
func (e *Engine) windowElapsed() {
	w := e.aggregator.WindowElapsed()
	if !w.Valid {
		e.logger.Debugw("discarding first window", "beats", w.Beats)
		return
	}

	bpm := w.BPM
	if bpm > 255 {
		bpm = 255
	}
	var spo2 uint8
	if e.spo2 != nil {
		spo2 = e.spo2.value()
	}

	e.windows.Add(1)
	e.logger.Infow("heart rate", "bpm", w.BPM, "beats", w.Beats, "spo2", spo2)
	e.notifier.Notify(HeartRate(uint8(bpm), spo2))
}
