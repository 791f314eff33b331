package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/tarm/serial"

	"github.com/cgxeiji/hrmonitor"
)

// LineRenderer writes each message as one CRLF terminated text line, e.g.
// "HR 72 98", for a display module on a serial link.
type LineRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineRenderer returns a renderer writing to w.
func NewLineRenderer(w io.Writer) *LineRenderer {
	return &LineRenderer{w: w}
}

// OpenSerial opens a serial port for a LineRenderer.
func OpenSerial(device string, baud int) (io.ReadWriteCloser, error) {
	p, err := serial.OpenPort(&serial.Config{Name: device, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("display: could not open serial port %s: %w", device, err)
	}
	return p, nil
}

// Render implements Renderer.
func (r *LineRenderer) Render(m hrmonitor.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := io.WriteString(r.w, m.String()+"\r\n"); err != nil {
		return fmt.Errorf("display: could not write line: %w", err)
	}
	return nil
}
