package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/cgxeiji/hrmonitor"
	"github.com/cgxeiji/hrmonitor/button"
	"github.com/cgxeiji/hrmonitor/display"
	"github.com/cgxeiji/hrmonitor/max30100"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "path to the YAML configuration")
		simulate = flag.Float64("simulate", 0, "use a synthetic sensor beating at this BPM instead of the MAX30100")
		debug    = flag.Bool("debug", false, "enable debug logging")
		on       = flag.Bool("on", false, "start measuring without waiting for the button")
	)
	flag.Parse()

	cfg := hrmonitor.DefaultConfig()
	if *cfgPath != "" {
		var err error
		if cfg, err = hrmonitor.LoadConfig(*cfgPath); err != nil {
			log.Fatal(err)
		}
	}
	cfg.Debug = cfg.Debug || *debug

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, *simulate, *on, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(err)
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	var l *zap.Logger
	var err error
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return l.Sugar(), nil
}

func run(cfg hrmonitor.Config, simulate float64, on bool, logger *zap.SugaredLogger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sensor, closeSensor, err := openSensor(cfg, simulate, logger)
	if err != nil {
		return err
	}
	defer closeSensor()

	renderer, closeDisplay, err := openDisplay(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDisplay()

	queue := display.NewQueue(cfg.Display.QueueSize)
	engine, err := hrmonitor.New(cfg, sensor, queue, hrmonitor.WithLogger(logger.Named("engine")))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if cfg.Button.Pin != "" {
		pin, err := button.Open(cfg.Button.Pin)
		if err != nil {
			return err
		}
		if err := button.Setup(pin); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := button.Watch(ctx, pin, cfg.Button.Debounce, engine.Toggle, logger.Named("button")); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorw("button watcher stopped", "error", err)
			}
		}()
	}

	if on {
		engine.Toggle()
	}

	err = measure(ctx, engine, queue, renderer, logger)
	cancel()
	wg.Wait()

	st := engine.Stats()
	logger.Infow("stopped", "results", st.Windows, "read_errors", st.ReadErrors, "dropped", st.Dropped)

	return err
}

// measure runs engine until ctx is done. The display keeps rendering until
// the engine has returned, so the messages sent while halting still reach
// it.
func measure(ctx context.Context, engine *hrmonitor.Engine, queue chan hrmonitor.Message, r display.Renderer, logger *zap.SugaredLogger) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := display.Run(context.Background(), queue, r, logger.Named("display")); err != nil {
			logger.Errorw("display stopped", "error", err)
		}
	}()

	err := engine.Run(ctx)
	close(queue)
	<-done

	return err
}

func openSensor(cfg hrmonitor.Config, simulate float64, logger *zap.SugaredLogger) (hrmonitor.Sensor, func(), error) {
	if simulate > 0 {
		logger.Infow("using synthetic sensor", "bpm", simulate)
		return hrmonitor.NewSyntheticSensor(simulate, cfg.TickPeriod), func() {}, nil
	}

	dev, err := max30100.Open(cfg.Sensor.Bus, cfg.Sensor.Addr)
	if err != nil {
		return nil, nil, err
	}
	rev, err := dev.RevID()
	if err != nil {
		dev.Close()
		return nil, nil, err
	}
	logger.Infow("MAX30100 detected", "part", fmt.Sprintf("0x%02x", max30100.PartID), "rev", rev)

	if temp, err := dev.Temperature(); err == nil {
		logger.Infow("sensor temperature", "celsius", temp)
	}
	if err := dev.PowerOff(); err != nil {
		dev.Close()
		return nil, nil, err
	}

	return dev, func() {
		if err := dev.Close(); err != nil {
			logger.Warnw("could not close sensor", "error", err)
		}
	}, nil
}

func openDisplay(cfg hrmonitor.Config, logger *zap.SugaredLogger) (display.Renderer, func(), error) {
	renderers := display.Multi{display.NewLogRenderer(logger.Named("screen"))}
	var closers []io.Closer

	if url := cfg.Display.NATS.URL; url != "" {
		nc, err := display.ConnectNATS(url)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, closerFunc(func() error { return nc.Drain() }))
		renderers = append(renderers, display.NewNATSRenderer(nc, cfg.Display.NATS.Subject))
	}

	if dev := cfg.Display.Serial.Device; dev != "" {
		port, err := display.OpenSerial(dev, cfg.Display.Serial.Baud)
		if err != nil {
			closeAll(closers, logger)
			return nil, nil, err
		}
		closers = append(closers, port)
		renderers = append(renderers, display.NewLineRenderer(port))
	}

	return renderers, func() { closeAll(closers, logger) }, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func closeAll(closers []io.Closer, logger *zap.SugaredLogger) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warnw("could not close display output", "error", err)
		}
	}
}
