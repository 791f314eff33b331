package hrmonitor

import "fmt"

// Kind identifies a display notification.
type Kind uint8

// Notification kinds.
const (
	KindOff Kind = iota
	KindStartup
	KindProgress
	KindHeartRate
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindOff:
		return "OFF"
	case KindStartup:
		return "STARTUP"
	case KindProgress:
		return "PROGRESS"
	case KindHeartRate:
		return "HR"
	case KindShutdown:
		return "SHUTDOWN"
	}
	return fmt.Sprintf("KIND(%d)", uint8(k))
}

// Message is a notification for the display. Only the fields belonging to
// its Kind are meaningful.
type Message struct {
	Kind Kind  `msgpack:"kind"`
	Step uint8 `msgpack:"step,omitempty"`
	BPM  uint8 `msgpack:"bpm,omitempty"`
	SpO2 uint8 `msgpack:"spo2,omitempty"`
}

// Off tells the display the monitor is off.
func Off() Message { return Message{Kind: KindOff} }

// Startup tells the display a measurement session is starting.
func Startup() Message { return Message{Kind: KindStartup} }

// Progress advances the settle progress indicator to step.
func Progress(step uint8) Message { return Message{Kind: KindProgress, Step: step} }

// HeartRate carries a measurement result. A spo2 of 0 means no estimate.
func HeartRate(bpm, spo2 uint8) Message {
	return Message{Kind: KindHeartRate, BPM: bpm, SpO2: spo2}
}

// Shutdown tells the display the session is ending.
func Shutdown() Message { return Message{Kind: KindShutdown} }

// String renders the message as a single display line, e.g. "HR 72 98".
func (m Message) String() string {
	switch m.Kind {
	case KindProgress:
		return fmt.Sprintf("%v %d", m.Kind, m.Step)
	case KindHeartRate:
		return fmt.Sprintf("%v %d %d", m.Kind, m.BPM, m.SpO2)
	}
	return m.Kind.String()
}
