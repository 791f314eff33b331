package hrmonitor

import (
	"errors"
	"fmt"
)

// State is a lifecycle state of the monitor.
type State int32

// Lifecycle states. A session always runs Off → Initializing → (Measuring →)
// ShuttingDown → Off.
const (
	StateOff State = iota
	StateInitializing
	StateMeasuring
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "off"
	case StateInitializing:
		return "initializing"
	case StateMeasuring:
		return "measuring"
	case StateShuttingDown:
		return "shutting down"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// lifecycle is owned by the sampling loop.
type lifecycle struct {
	state State
	// ticks spent in the current state
	ticks int
	// faulted holds the engine in Off after a failed start until the toggle
	// is observed off.
	faulted bool
}

// Step runs one sampling tick: it advances the lifecycle and, while
// measuring, processes one sample. It returns an error when a session could
// not be started; the session is then shut down again.
func (e *Engine) Step() error {
	desired := e.desired.Load()

	switch e.lc.state {
	case StateOff:
		if !desired {
			e.lc.faulted = false
			return nil
		}
		if e.lc.faulted {
			return nil
		}
		e.transition(StateInitializing)
		if err := e.startSession(); err != nil {
			e.lc.faulted = true
			e.beginShutdown()
			return err
		}

	case StateInitializing:
		if !desired {
			e.beginShutdown()
			return nil
		}
		e.lc.ticks++
		if e.lc.ticks%e.cfg.ProgressInterval == 0 {
			e.notifier.Notify(Progress(progressStep(e.lc.ticks / e.cfg.ProgressInterval)))
		}
		if e.lc.ticks >= e.cfg.ticks(e.cfg.SettleDelay) {
			e.transition(StateMeasuring)
		}

	case StateMeasuring:
		if !desired {
			e.beginShutdown()
			return nil
		}
		e.sample()

	case StateShuttingDown:
		e.lc.ticks++
		if e.lc.ticks >= e.cfg.ticks(e.cfg.ShutdownDelay) {
			e.notifier.Notify(Off())
			e.transition(StateOff)
		}
	}

	return nil
}

func (e *Engine) transition(s State) {
	e.logger.Debugw("lifecycle transition", "from", e.lc.state, "to", s)
	e.lc.state = s
	e.lc.ticks = 0
	e.state.Store(int32(s))
}

// startSession clears all signal state, brings the sensor up and arms the
// window timer.
func (e *Engine) startSession() error {
	e.logger.Info("starting measurement")
	e.notifier.Notify(Startup())

	e.filter.Reset()
	e.detector.Reset()
	e.aggregator.Reset()
	if e.spo2 != nil {
		e.spo2.reset()
	}

	if err := e.sensor.Reset(); err != nil {
		return fmt.Errorf("hrmonitor: could not reset sensor: %w", err)
	}
	if err := e.sensor.PowerOn(); err != nil {
		return fmt.Errorf("hrmonitor: could not power on sensor: %w", err)
	}
	if err := e.sensor.Configure(e.cfg.Sensor.Config); err != nil {
		return fmt.Errorf("hrmonitor: could not configure sensor: %w", err)
	}
	if err := e.timer.Start(e.cfg.Window, e.windowElapsed); err != nil {
		return fmt.Errorf("hrmonitor: could not start window timer: %w", err)
	}

	return nil
}

// beginShutdown enters ShuttingDown: the timer is stopped before the sensor
// is powered down so no window closes on a dead sensor.
func (e *Engine) beginShutdown() {
	e.transition(StateShuttingDown)
	e.logger.Info("stopping measurement")

	e.timer.Stop()
	if err := e.powerDown(); err != nil {
		e.logger.Warnw("could not power down sensor", "error", err)
	}
	e.notifier.Notify(Shutdown())
}

func (e *Engine) powerDown() error {
	return errors.Join(e.sensor.Reset(), e.sensor.PowerOff())
}

// halt ends any session immediately.
func (e *Engine) halt() {
	switch e.lc.state {
	case StateOff:
		return
	case StateInitializing, StateMeasuring:
		e.beginShutdown()
	}
	e.notifier.Notify(Off())
	e.transition(StateOff)
}

func progressStep(n int) uint8 {
	if n > 255 {
		return 255
	}
	return uint8(n)
}
