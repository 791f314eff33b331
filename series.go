package hrmonitor

// tSeries keeps the last len(buffer) raw samples of one LED channel together
// with their extremes.
type tSeries struct {
	buffer []uint16
	idx    int
	filled int

	max uint16
	min uint16
}

func newTSeries(size int) *tSeries {
	return &tSeries{
		buffer: make([]uint16, size),
	}
}

func (t *tSeries) add(e uint16) {
	t.idx++
	t.idx %= len(t.buffer)

	old := t.buffer[t.idx]
	t.buffer[t.idx] = e
	if t.filled < len(t.buffer) {
		t.filled++
	}

	if t.filled == 1 {
		t.max = e
		t.min = e
		return
	}

	if t.filled == len(t.buffer) && (old == t.max || old == t.min) {
		t.max = e
		t.min = e
		for _, b := range t.buffer {
			t.minmax(b)
		}
		return
	}
	t.minmax(e)
}

func (t *tSeries) minmax(v uint16) {
	if v > t.max {
		t.max = v
	}
	if v < t.min {
		t.min = v
	}
}

func (t *tSeries) full() bool {
	return t.filled == len(t.buffer)
}

// acdc returns the ratio of the pulsatile swing to the baseline.
func (t *tSeries) acdc() float64 {
	if t.min == 0 {
		return 0
	}

	return float64(t.max-t.min) / float64(t.min)
}

func (t *tSeries) reset() {
	for i := range t.buffer {
		t.buffer[i] = 0
	}
	t.idx = 0
	t.filled = 0
	t.max = 0
	t.min = 0
}
