package hrmonitor

import "testing"

func TestMessageString(t *testing.T) {
	tests := []struct {
		m    Message
		want string
	}{
		{Off(), "OFF"},
		{Startup(), "STARTUP"},
		{Progress(7), "PROGRESS 7"},
		{HeartRate(72, 98), "HR 72 98"},
		{HeartRate(255, 0), "HR 255 0"},
		{Shutdown(), "SHUTDOWN"},
		{Message{Kind: 42}, "KIND(42)"},
	}

	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.m, got, tt.want)
		}
	}
}
