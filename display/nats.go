package display

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cgxeiji/hrmonitor"
)

// Publisher publishes raw payloads. *nats.Conn implements it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Frame is the msgpack payload published for each message.
type Frame struct {
	// Session identifies the measurement session, renewed at every Startup.
	Session string            `msgpack:"session"`
	Time    time.Time         `msgpack:"time"`
	Message hrmonitor.Message `msgpack:"message"`
}

// NATSRenderer publishes messages as msgpack frames so remote screens can
// mirror the device display.
type NATSRenderer struct {
	pub     Publisher
	subject string
	now     func() time.Time

	mu      sync.Mutex
	session string
}

// NewNATSRenderer returns a renderer publishing on subject.
func NewNATSRenderer(pub Publisher, subject string) *NATSRenderer {
	return &NATSRenderer{
		pub:     pub,
		subject: subject,
		now:     time.Now,
	}
}

// ConnectNATS connects to a NATS server, reconnecting forever.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("hrmonitor"),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("display: could not connect to NATS: %w", err)
	}
	return nc, nil
}

// Render implements Renderer.
func (r *NATSRenderer) Render(m hrmonitor.Message) error {
	r.mu.Lock()
	if m.Kind == hrmonitor.KindStartup || r.session == "" {
		r.session = uuid.NewString()
	}
	f := Frame{
		Session: r.session,
		Time:    r.now().UTC(),
		Message: m,
	}
	r.mu.Unlock()

	b, err := msgpack.Marshal(&f)
	if err != nil {
		return fmt.Errorf("display: could not encode frame: %w", err)
	}
	if err := r.pub.Publish(r.subject, b); err != nil {
		return fmt.Errorf("display: could not publish frame: %w", err)
	}
	return nil
}
