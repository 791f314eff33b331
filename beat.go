package hrmonitor

// Default amplitude gate of the beat detector, in filter output units.
// Cycles at or below DefaultMinBeatAmplitude are noise floor crossings,
// cycles at or above DefaultMaxBeatAmplitude are motion artifacts.
const (
	DefaultMinBeatAmplitude = 20
	DefaultMaxBeatAmplitude = 1000
)

// BeatDetector finds heart beats as rising zero crossings of the AC signal,
// gated by the peak-to-peak amplitude of the cycle that just completed.
type BeatDetector struct {
	minAmplitude int32
	maxAmplitude int32

	ac struct {
		prev int16
		cur  int16
		// running extremes of the current half cycle
		max int16
		min int16
	}
	// reference captured at the last rising edge
	ref struct {
		max int16
		min int16
	}
	positive bool
	negative bool
}

// NewBeatDetector returns a detector signalling beats for cycles whose
// amplitude lies strictly between lo and hi.
func NewBeatDetector(lo, hi int32) *BeatDetector {
	return &BeatDetector{
		minAmplitude: lo,
		maxAmplitude: hi,
	}
}

// Update feeds one AC sample and reports whether it completes a beat.
func (b *BeatDetector) Update(ac int16) bool {
	beat := false

	b.ac.prev = b.ac.cur
	b.ac.cur = ac

	// Rising edge
	if b.ac.prev < 0 && b.ac.cur >= 0 {
		b.ref.max = b.ac.max
		b.ref.min = b.ac.min

		b.positive = true
		b.negative = false
		b.ac.max = 0

		amplitude := int32(b.ref.max) - int32(b.ref.min)
		if amplitude > b.minAmplitude && amplitude < b.maxAmplitude {
			beat = true
		}
	}

	// Falling edge
	if b.ac.prev > 0 && b.ac.cur <= 0 {
		b.positive = false
		b.negative = true
		b.ac.min = 0
	}

	if b.positive && b.ac.cur > b.ac.prev {
		b.ac.max = b.ac.cur
	}
	if b.negative && b.ac.cur < b.ac.prev {
		b.ac.min = b.ac.cur
	}

	return beat
}

// Reset forgets all edge state.
func (b *BeatDetector) Reset() {
	*b = BeatDetector{
		minAmplitude: b.minAmplitude,
		maxAmplitude: b.maxAmplitude,
	}
}
