package hrmonitor

// Filter converts raw infrared samples into a de-trended AC signal: the DC
// baseline is removed first, then the remainder is smoothed by the FIR.
type Filter struct {
	dc  dcEstimator
	fir fir
}

// NewFilter returns a Filter whose DC estimator averages over roughly
// 2^dcShift samples.
func NewFilter(dcShift uint) *Filter {
	return &Filter{
		dc: dcEstimator{shift: dcShift},
	}
}

// Update feeds one raw infrared sample and returns the AC sample.
func (f *Filter) Update(rawIR uint16) int16 {
	baseline := f.dc.add(rawIR)
	return f.fir.lowPass(saturate16(int32(rawIR) - baseline))
}

// Offset returns the write position of the FIR ring buffer. After n updates
// since the last Reset it equals n mod 32.
func (f *Filter) Offset() int {
	return int(f.fir.offset)
}

// Reset clears the baseline estimate and the FIR history.
func (f *Filter) Reset() {
	f.dc.reset()
	f.fir.reset()
}
