package hrmonitor

import "go.uber.org/zap"

// An Option configures an engine. It returns an option restoring the
// previous value.
type Option func(e *Engine) Option

// WithLogger sets the logger used by the engine. By default nothing is
// logged.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Engine) Option {
		old := e.logger
		e.logger = logger
		return WithLogger(old)
	}
}

// WithTimer replaces the timer that closes BPM windows. By default a
// ticker-backed timer is used.
func WithTimer(t WindowTimer) Option {
	return func(e *Engine) Option {
		old := e.timer
		e.timer = t
		return WithTimer(old)
	}
}
