package hrmonitor

import (
	"errors"
	"sync"
	"time"
)

// ErrTimerRunning is returned when starting a window timer that is already
// running.
var ErrTimerRunning = errors.New("hrmonitor: timer already running")

// WindowTimer calls a function periodically until stopped.
type WindowTimer interface {
	// Start begins calling fn every period.
	Start(period time.Duration, fn func()) error
	// Stop halts the timer. Once Stop returns fn is not running and will not
	// be called again until the next Start.
	Stop()
}

type tickerTimer struct {
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewWindowTimer returns a WindowTimer backed by a time.Ticker.
func NewWindowTimer() WindowTimer {
	return &tickerTimer{}
}

func (t *tickerTimer) Start(period time.Duration, fn func()) error {
	if period <= 0 {
		return errors.New("hrmonitor: timer period must be positive")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return ErrTimerRunning
	}
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)

		tick := time.NewTicker(period)
		defer tick.Stop()

		for {
			select {
			case <-stop:
				return
			case <-tick.C:
			}

			// Stop may race with the tick.
			select {
			case <-stop:
				return
			default:
				fn()
			}
		}
	}(t.stop, t.done)

	return nil
}

func (t *tickerTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop = nil
	t.done = nil
}
