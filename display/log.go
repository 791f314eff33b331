package display

import (
	"go.uber.org/zap"

	"github.com/cgxeiji/hrmonitor"
)

// LogRenderer writes every message to a logger.
type LogRenderer struct {
	logger *zap.SugaredLogger
}

// NewLogRenderer returns a renderer logging at info level.
func NewLogRenderer(logger *zap.SugaredLogger) *LogRenderer {
	return &LogRenderer{logger: logger}
}

// Render implements Renderer.
func (r *LogRenderer) Render(m hrmonitor.Message) error {
	switch m.Kind {
	case hrmonitor.KindHeartRate:
		r.logger.Infow("display", "kind", m.Kind, "bpm", m.BPM, "spo2", m.SpO2)
	case hrmonitor.KindProgress:
		r.logger.Debugw("display", "kind", m.Kind, "step", m.Step)
	default:
		r.logger.Infow("display", "kind", m.Kind)
	}
	return nil
}
