package hrmonitor

import (
	"math"
	"testing"
)

// armed returns a detector that has seen one rising edge and is tracking a
// positive half cycle.
func armed(t *testing.T) *BeatDetector {
	t.Helper()
	d := NewBeatDetector(DefaultMinBeatAmplitude, DefaultMaxBeatAmplitude)
	for _, ac := range []int16{-1, 1} {
		if d.Update(ac) {
			t.Fatal("beat while arming detector")
		}
	}
	return d
}

// cycle feeds one full cycle with the given extremes and reports whether the
// closing rising edge was a beat.
func cycle(t *testing.T, d *BeatDetector, peak, trough int16) bool {
	t.Helper()
	for _, ac := range []int16{peak, -1, trough} {
		if d.Update(ac) {
			t.Fatalf("beat before the rising edge of cycle (%d, %d)", peak, trough)
		}
	}
	return d.Update(1)
}

func TestBeatAmplitudeGate(t *testing.T) {
	tests := []struct {
		name          string
		peak, trough  int16
		wantAmplitude int
		want          bool
	}{
		{"noise floor", 10, -10, 20, false},
		{"just above noise floor", 11, -10, 21, true},
		{"typical", 120, -90, 210, true},
		{"just below artifact", 500, -499, 999, true},
		{"motion artifact", 500, -500, 1000, false},
		{"large artifact", 3000, -3000, 6000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := int(tt.peak) - int(tt.trough); got != tt.wantAmplitude {
				t.Fatalf("bad test case: amplitude %d, want %d", got, tt.wantAmplitude)
			}
			d := armed(t)
			if got := cycle(t, d, tt.peak, tt.trough); got != tt.want {
				t.Errorf("beat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBeatCustomGate(t *testing.T) {
	d := NewBeatDetector(100, 200)
	d.Update(-1)
	d.Update(1)

	if cycle(t, d, 50, -50) {
		t.Error("amplitude 100 detected with gate (100, 200)")
	}
	if !cycle(t, d, 75, -75) {
		t.Error("amplitude 150 missed with gate (100, 200)")
	}
}

func TestBeatFirstEdgeUsesZeroReference(t *testing.T) {
	d := NewBeatDetector(DefaultMinBeatAmplitude, DefaultMaxBeatAmplitude)

	// falling then rising without any positive half seen: the reference max
	// is still 0 so the amplitude is just the trough depth.
	d.Update(5)
	d.Update(-1)
	d.Update(-30)
	if !d.Update(1) {
		t.Error("first rising edge after a 30 deep trough was not a beat")
	}
}

func TestBeatReset(t *testing.T) {
	d := armed(t)
	d.Update(100)
	d.Update(-1)
	d.Update(-100)
	d.Reset()

	// the stored trough is gone, so this edge sees amplitude 0
	if d.Update(1) {
		t.Error("beat right after reset")
	}
	if d.minAmplitude != DefaultMinBeatAmplitude || d.maxAmplitude != DefaultMaxBeatAmplitude {
		t.Error("reset lost the amplitude gate")
	}
}

func TestBeatsOnSineWave(t *testing.T) {
	const (
		samples = 2000 // 20s at 10ms
		period  = 100  // 1s
	)

	f := NewFilter(DefaultDCShift)
	d := NewBeatDetector(DefaultMinBeatAmplitude, DefaultMaxBeatAmplitude)

	beats := 0
	for k := 0; k < samples; k++ {
		raw := 30000 + 100*math.Sin(2*math.Pi*float64(k)/period)
		if d.Update(f.Update(uint16(math.Round(raw)))) {
			beats++
		}
	}

	// one beat per period, give or take the edges of the window
	if beats < 18 || beats > 22 {
		t.Errorf("beats = %d, want 20±2", beats)
	}
}
