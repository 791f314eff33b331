package hrmonitor

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultNotifyTimeout is how long Notify waits on a full display queue
// before dropping the message.
const DefaultNotifyTimeout = 50 * time.Millisecond

// Notifier pushes messages onto the display queue. It is safe for
// concurrent use by the sampling loop and the window timer.
type Notifier struct {
	queue   chan<- Message
	timeout time.Duration
	logger  *zap.SugaredLogger
	dropped atomic.Uint64
}

// NewNotifier returns a Notifier sending on queue. A send that cannot
// complete within timeout is dropped.
func NewNotifier(queue chan<- Message, timeout time.Duration, logger *zap.SugaredLogger) *Notifier {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Notifier{
		queue:   queue,
		timeout: timeout,
		logger:  logger,
	}
}

// Notify enqueues m and reports whether it was accepted.
func (n *Notifier) Notify(m Message) bool {
	select {
	case n.queue <- m:
		return true
	default:
	}

	t := time.NewTimer(n.timeout)
	defer t.Stop()

	select {
	case n.queue <- m:
		return true
	case <-t.C:
		n.dropped.Add(1)
		n.logger.Warnw("display queue full, dropping message", "message", m.String(), "timeout", n.timeout)
		return false
	}
}

// Dropped returns the number of messages dropped so far.
func (n *Notifier) Dropped() uint64 {
	return n.dropped.Load()
}
