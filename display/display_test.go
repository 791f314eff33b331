package display

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cgxeiji/hrmonitor"
)

func TestRunRendersInOrder(t *testing.T) {
	queue := NewQueue(4)
	want := []hrmonitor.Message{
		hrmonitor.Startup(),
		hrmonitor.Progress(1),
		hrmonitor.HeartRate(72, 98),
		hrmonitor.Off(),
	}
	for _, m := range want {
		queue <- m
	}
	close(queue)

	var got []hrmonitor.Message
	r := RendererFunc(func(m hrmonitor.Message) error {
		got = append(got, m)
		return nil
	})
	if err := Run(context.Background(), queue, r, nil); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rendered %v, want %v", got, want)
	}
}

func TestRunLogsRenderErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	queue := NewQueue(2)
	queue <- hrmonitor.Startup()
	queue <- hrmonitor.Shutdown()
	close(queue)

	calls := 0
	r := RendererFunc(func(m hrmonitor.Message) error {
		calls++
		return errors.New("display unplugged")
	})
	if err := Run(context.Background(), queue, r, zap.New(core).Sugar()); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if n := logs.FilterMessage("could not render message").Len(); n != 2 {
		t.Errorf("logged %d render errors, want 2", n)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- Run(ctx, NewQueue(1), Multi{}, nil)
	}()
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want %v", err, context.Canceled)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	rendered := 0
	r := Multi{
		RendererFunc(func(hrmonitor.Message) error { return errA }),
		RendererFunc(func(hrmonitor.Message) error { rendered++; return nil }),
		RendererFunc(func(hrmonitor.Message) error { return errB }),
	}

	err := r.Render(hrmonitor.Off())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("Render() = %v, want both errors", err)
	}
	if rendered != 1 {
		t.Errorf("healthy renderer called %d times, want 1", rendered)
	}
	if err := (Multi{}).Render(hrmonitor.Off()); err != nil {
		t.Errorf("empty Multi = %v", err)
	}
}

func TestLineRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineRenderer(&buf)
	for _, m := range []hrmonitor.Message{
		hrmonitor.Startup(),
		hrmonitor.Progress(3),
		hrmonitor.HeartRate(72, 98),
		hrmonitor.Shutdown(),
		hrmonitor.Off(),
	} {
		if err := r.Render(m); err != nil {
			t.Fatal(err)
		}
	}

	want := "STARTUP\r\nPROGRESS 3\r\nHR 72 98\r\nSHUTDOWN\r\nOFF\r\n"
	if got := buf.String(); got != want {
		t.Errorf("wrote %q, want %q", got, want)
	}
}

func TestLogRenderer(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewLogRenderer(zap.New(core).Sugar())

	for _, m := range []hrmonitor.Message{
		hrmonitor.Startup(),
		hrmonitor.Progress(1),
		hrmonitor.HeartRate(60, 0),
	} {
		if err := r.Render(m); err != nil {
			t.Fatal(err)
		}
	}

	// Progress is logged at debug level.
	if n := logs.Len(); n != 2 {
		t.Fatalf("logged %d entries, want 2", n)
	}
	hr := logs.All()[1].ContextMap()
	if hr["bpm"] != uint8(60) {
		t.Errorf("bpm field = %#v", hr["bpm"])
	}
}

type publication struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	pubs []publication
	err  error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.pubs = append(p.pubs, publication{subject, data})
	return nil
}

func TestNATSRendererFrames(t *testing.T) {
	pub := &fakePublisher{}
	r := NewNATSRenderer(pub, "hrmonitor.display")
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	msgs := []hrmonitor.Message{
		hrmonitor.Startup(),
		hrmonitor.HeartRate(72, 98),
		hrmonitor.Startup(),
	}
	for _, m := range msgs {
		if err := r.Render(m); err != nil {
			t.Fatal(err)
		}
	}
	if len(pub.pubs) != len(msgs) {
		t.Fatalf("published %d frames, want %d", len(pub.pubs), len(msgs))
	}

	frames := make([]Frame, len(pub.pubs))
	for i, p := range pub.pubs {
		if p.subject != "hrmonitor.display" {
			t.Errorf("frame %d on %q", i, p.subject)
		}
		if err := msgpack.Unmarshal(p.data, &frames[i]); err != nil {
			t.Fatal(err)
		}
		if frames[i].Message != msgs[i] {
			t.Errorf("frame %d carries %v, want %v", i, frames[i].Message, msgs[i])
		}
		if !frames[i].Time.Equal(now) {
			t.Errorf("frame %d at %v, want %v", i, frames[i].Time, now)
		}
	}

	if frames[0].Session == "" || frames[0].Session != frames[1].Session {
		t.Errorf("session changed within a measurement: %q, %q", frames[0].Session, frames[1].Session)
	}
	if frames[2].Session == frames[1].Session {
		t.Error("session not renewed at startup")
	}
}

func TestNATSRendererPublishError(t *testing.T) {
	errDown := errors.New("connection closed")
	r := NewNATSRenderer(&fakePublisher{err: errDown}, "x")
	if err := r.Render(hrmonitor.Off()); !errors.Is(err, errDown) {
		t.Errorf("Render() = %v, want %v", err, errDown)
	}
}
