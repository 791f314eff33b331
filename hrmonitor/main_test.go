package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cgxeiji/hrmonitor"
	"github.com/cgxeiji/hrmonitor/display"
)

func TestMeasureRendersShutdownAfterCancel(t *testing.T) {
	cfg := hrmonitor.DefaultConfig()
	cfg.TickPeriod = time.Millisecond
	cfg.SettleDelay = 5 * time.Millisecond
	cfg.ShutdownDelay = 5 * time.Millisecond

	queue := display.NewQueue(cfg.Display.QueueSize)
	engine, err := hrmonitor.New(cfg, hrmonitor.NewSyntheticSensor(60, cfg.TickPeriod), queue)
	if err != nil {
		t.Fatal(err)
	}

	var rendered []hrmonitor.Kind
	r := display.RendererFunc(func(m hrmonitor.Message) error {
		rendered = append(rendered, m.Kind)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() {
		errc <- measure(ctx, engine, queue, r, zap.NewNop().Sugar())
	}()

	engine.Toggle()
	deadline := time.Now().Add(2 * time.Second)
	for engine.State() != hrmonitor.StateMeasuring {
		if time.Now().After(deadline) {
			t.Fatalf("engine stuck in %v", engine.State())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("measure() = %v, want %v", err, context.Canceled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("measure did not return after cancel")
	}

	want := []hrmonitor.Kind{hrmonitor.KindStartup, hrmonitor.KindShutdown, hrmonitor.KindOff}
	if len(rendered) != len(want) {
		t.Fatalf("rendered %v, want %v", rendered, want)
	}
	for i := range want {
		if rendered[i] != want[i] {
			t.Errorf("rendered %v, want %v", rendered, want)
			break
		}
	}
	if engine.State() != hrmonitor.StateOff {
		t.Errorf("state after cancel = %v, want %v", engine.State(), hrmonitor.StateOff)
	}
	if _, open := <-queue; open {
		t.Error("queue still open after measure returned")
	}
}
