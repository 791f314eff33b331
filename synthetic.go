package hrmonitor

import (
	"math"
	"sync"
	"time"

	"github.com/cgxeiji/hrmonitor/max30100"
)

// SyntheticSensor produces a noiseless PPG-like waveform: a sine at a fixed
// heart rate riding on a constant baseline. It needs no hardware and
// advances one sample period per read.
type SyntheticSensor struct {
	mu sync.Mutex

	bpm    float64
	period time.Duration
	phase  float64
	on     bool

	// IR and Red hold the baseline and the peak-to-peak swing per channel.
	IR, Red struct {
		DC, Swing float64
	}
}

// NewSyntheticSensor returns a sensor beating at bpm, sampled every period.
func NewSyntheticSensor(bpm float64, period time.Duration) *SyntheticSensor {
	s := &SyntheticSensor{
		bpm:    bpm,
		period: period,
	}
	s.IR.DC, s.IR.Swing = 30000, 200
	s.Red.DC, s.Red.Swing = 25000, 120
	return s
}

// PowerOn implements Sensor.
func (s *SyntheticSensor) PowerOn() error {
	s.mu.Lock()
	s.on = true
	s.mu.Unlock()
	return nil
}

// PowerOff implements Sensor.
func (s *SyntheticSensor) PowerOff() error {
	s.mu.Lock()
	s.on = false
	s.mu.Unlock()
	return nil
}

// Reset implements Sensor. It restarts the waveform.
func (s *SyntheticSensor) Reset() error {
	s.mu.Lock()
	s.phase = 0
	s.mu.Unlock()
	return nil
}

// Configure implements Sensor.
func (s *SyntheticSensor) Configure(c max30100.Config) error {
	_, err := c.Options()
	return err
}

// IRRed implements Sensor. A powered down sensor reads zero.
func (s *SyntheticSensor) IRRed() (ir, red uint16, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.on {
		return 0, 0, nil
	}

	v := math.Sin(2 * math.Pi * s.phase)
	s.phase += s.bpm / 60 * s.period.Seconds()
	if s.phase >= 1 {
		s.phase--
	}

	ir = uint16(math.Round(s.IR.DC + s.IR.Swing/2*v))
	red = uint16(math.Round(s.Red.DC + s.Red.Swing/2*v))

	return ir, red, nil
}
