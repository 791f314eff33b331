// Package button turns presses of a GPIO push button into toggle calls.
package button

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/host"
)

// pollTimeout bounds each edge wait so cancellation is noticed.
const pollTimeout = 100 * time.Millisecond

// Open initializes the host and returns the named pin, e.g. "GPIO17".
func Open(name string) (gpio.PinIn, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: could not initialize host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("button: no pin named %q", name)
	}
	return p, nil
}

// Setup configures pin as a floating input with rising edge detection. It
// must be called before Watch.
func Setup(pin gpio.PinIn) error {
	if err := pin.In(gpio.Float, gpio.RisingEdge); err != nil {
		return fmt.Errorf("button: could not set up %s: %w", pin, err)
	}
	return nil
}

// Watch calls toggle on every rising edge of a pin prepared by Setup until
// ctx is done, then disables edge detection. Edges arriving within debounce
// of the previous accepted edge are ignored. toggle must not block.
func Watch(ctx context.Context, pin gpio.PinIn, debounce time.Duration, toggle func(), logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	defer func() {
		if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
			logger.Warnw("could not disable edge detection", "pin", pin.Name(), "error", err)
		}
	}()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !pin.WaitForEdge(pollTimeout) {
			continue
		}

		now := time.Now()
		if !last.IsZero() && now.Sub(last) < debounce {
			logger.Debugw("ignoring button bounce", "pin", pin.Name(), "since", now.Sub(last))
			continue
		}
		last = now

		logger.Debugw("button pressed", "pin", pin.Name())
		toggle()
	}
}
