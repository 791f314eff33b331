package hrmonitor

import (
	"testing"
	"time"
)

func TestSyntheticSensor(t *testing.T) {
	s := NewSyntheticSensor(60, 10*time.Millisecond)

	if ir, red, _ := s.IRRed(); ir != 0 || red != 0 {
		t.Errorf("powered down sensor read (%d, %d)", ir, red)
	}

	s.PowerOn()
	var lo, hi uint16 = 0xFFFF, 0
	for i := 0; i < 100; i++ {
		ir, _, err := s.IRRed()
		if err != nil {
			t.Fatal(err)
		}
		if ir < lo {
			lo = ir
		}
		if ir > hi {
			hi = ir
		}
	}
	if lo != 29900 || hi != 30100 {
		t.Errorf("one period spans [%d, %d], want [29900, 30100]", lo, hi)
	}

	s.Reset()
	if ir, red, _ := s.IRRed(); ir != 30000 || red != 25000 {
		t.Errorf("after reset read (%d, %d), want (30000, 25000)", ir, red)
	}
}
