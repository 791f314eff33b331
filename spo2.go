package hrmonitor

import "sync/atomic"

const spo2Samples = 128

// spo2Estimator derives an oxygen saturation estimate from the ratio of the
// red and infrared pulsatile components. It is fed by the sampling loop and
// read by the window timer.
type spo2Estimator struct {
	red *tSeries
	ir  *tSeries

	last atomic.Uint32
}

func newSpO2Estimator() *spo2Estimator {
	return &spo2Estimator{
		red: newTSeries(spo2Samples),
		ir:  newTSeries(spo2Samples),
	}
}

func (s *spo2Estimator) add(ir, red uint16) {
	s.ir.add(ir)
	s.red.add(red)
	if !s.ir.full() {
		return
	}
	s.last.Store(uint32(spo2(s.red.acdc(), s.ir.acdc())))
}

// value returns the latest estimate in percent, or 0 if there is none.
func (s *spo2Estimator) value() uint8 {
	return uint8(s.last.Load())
}

func (s *spo2Estimator) reset() {
	s.red.reset()
	s.ir.reset()
	s.last.Store(0)
}

func spo2(redACDC, irACDC float64) uint8 {
	if irACDC == 0 {
		return 0
	}
	v := 104 - 17*redACDC/irACDC
	if v <= 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return uint8(v)
}
