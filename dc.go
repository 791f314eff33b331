package hrmonitor

// dcEstimator tracks the slowly varying baseline of a raw sample stream with
// a single-pole IIR in 17.15 fixed point. The effective window is 2^shift
// samples.
type dcEstimator struct {
	acc   int32
	shift uint
}

func (e *dcEstimator) add(x uint16) int32 {
	e.acc += ((int32(x) << 15) - e.acc) >> e.shift
	return e.acc >> 15
}

func (e *dcEstimator) reset() {
	e.acc = 0
}
