// Package display consumes the monitor's notification queue and renders each
// message on one or more outputs.
package display

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cgxeiji/hrmonitor"
)

// Renderer shows a notification.
type Renderer interface {
	Render(m hrmonitor.Message) error
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(m hrmonitor.Message) error

// Render implements Renderer.
func (f RendererFunc) Render(m hrmonitor.Message) error {
	return f(m)
}

// Multi renders every message on all renderers and joins their errors.
type Multi []Renderer

// Render implements Renderer.
func (r Multi) Render(m hrmonitor.Message) error {
	var errs []error
	for _, rr := range r {
		if err := rr.Render(m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewQueue returns the bounded queue the engine sends on.
func NewQueue(size int) chan hrmonitor.Message {
	return make(chan hrmonitor.Message, size)
}

// Run renders messages from queue until ctx is done or queue is closed.
// Render errors are logged and do not stop the loop.
func Run(ctx context.Context, queue <-chan hrmonitor.Message, r Renderer, logger *zap.SugaredLogger) error {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-queue:
			if !ok {
				return nil
			}
			if err := r.Render(m); err != nil {
				logger.Warnw("could not render message", "message", m.String(), "error", err)
			}
		}
	}
}
