package button

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpiotest"
)

func watch(t *testing.T, debounce time.Duration, edges int) int32 {
	t.Helper()

	pin := &gpiotest.Pin{N: "GPIO17", Num: 17, EdgesChan: make(chan gpio.Level)}
	if err := Setup(pin); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var toggles atomic.Int32
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, pin, debounce, func() { toggles.Add(1) }, nil)
	}()

	for i := 0; i < edges; i++ {
		pin.EdgesChan <- gpio.High
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch() = %v, want %v", err, context.Canceled)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}

	return toggles.Load()
}

func TestWatchTogglesOnEdges(t *testing.T) {
	if got := watch(t, 0, 3); got != 3 {
		t.Errorf("toggles = %d, want 3", got)
	}
}

func TestWatchDebounces(t *testing.T) {
	if got := watch(t, time.Hour, 4); got != 1 {
		t.Errorf("toggles = %d, want 1", got)
	}
}

func TestSetupError(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17", Num: 17}
	if err := Setup(pin); err == nil {
		t.Error("Setup() succeeded on a pin without edge detection")
	}
}
