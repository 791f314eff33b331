package hrmonitor

import "math"

const (
	firSize  = 32
	firMask  = firSize - 1
	firHalf  = 12
	firTaps  = 2*firHalf - 1
	firShift = 15
)

// firCoeffs holds one half of a 23-tap linear-phase low-pass FIR filter,
// scaled by 2^15. The last entry is the center tap.
var firCoeffs = [firHalf]int32{172, 321, 579, 927, 1360, 1858, 2390, 2916, 3391, 3768, 4012, 4096}

type fir struct {
	buffer [firSize]int16
	offset uint8
}

// lowPass pushes din into the ring buffer and returns the filtered value.
func (f *fir) lowPass(din int16) int16 {
	f.buffer[f.offset] = din

	z := firCoeffs[firHalf-1] * int32(f.buffer[(f.offset-(firHalf-1))&firMask])

	for i := uint8(0); i < firHalf-1; i++ {
		z += firCoeffs[i] * (int32(f.buffer[(f.offset-i)&firMask]) + int32(f.buffer[(f.offset-(firTaps-1)+i)&firMask]))
	}

	f.offset = (f.offset + 1) & firMask

	return saturate16(z >> firShift)
}

func (f *fir) reset() {
	*f = fir{}
}

func saturate16(v int32) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
