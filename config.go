package hrmonitor

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cgxeiji/hrmonitor/max30100"
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults of the reference configuration.
const (
	DefaultTickPeriod       = 10 * time.Millisecond
	DefaultWindow           = 20 * time.Second
	DefaultSettleDelay      = 2 * time.Second
	DefaultShutdownDelay    = 2 * time.Second
	DefaultProgressInterval = 10
	DefaultDCShift          = 4
)

// Config holds the tunables of the engine and of the collaborators the
// command wires around it.
type Config struct {
	Debug bool `yaml:"debug"`

	// TickPeriod is the sampling period.
	TickPeriod time.Duration `yaml:"tick_period"`
	// Window is the BPM aggregation window.
	Window time.Duration `yaml:"window"`
	// SettleDelay is spent in Initializing before sampling starts.
	SettleDelay time.Duration `yaml:"settle_delay"`
	// ShutdownDelay is spent in ShuttingDown before Off is reported.
	ShutdownDelay time.Duration `yaml:"shutdown_delay"`
	// ProgressInterval is the number of settle ticks per progress message.
	ProgressInterval int `yaml:"progress_interval"`

	// DCShift sets the DC estimator window to 2^DCShift samples.
	DCShift uint `yaml:"dc_shift"`
	// MinBeatAmplitude and MaxBeatAmplitude bound, exclusively, the cycle
	// amplitude accepted as a beat.
	MinBeatAmplitude int32 `yaml:"min_beat_amplitude"`
	MaxBeatAmplitude int32 `yaml:"max_beat_amplitude"`

	// SpO2 enables the oxygen saturation estimate.
	SpO2 bool `yaml:"spo2"`

	Sensor  SensorConfig  `yaml:"sensor"`
	Button  ButtonConfig  `yaml:"button"`
	Display DisplayConfig `yaml:"display"`
}

// SensorConfig locates and sets up the PPG sensor.
type SensorConfig struct {
	Bus  string `yaml:"bus"`
	Addr uint16 `yaml:"addr"`

	max30100.Config `yaml:",inline"`
}

// ButtonConfig locates the on/off button.
type ButtonConfig struct {
	Pin      string        `yaml:"pin"`
	Debounce time.Duration `yaml:"debounce"`
}

// DisplayConfig sets up the display queue and its renderers.
type DisplayConfig struct {
	QueueSize     int           `yaml:"queue_size"`
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	Serial struct {
		Device string `yaml:"device"`
		Baud   int    `yaml:"baud"`
	} `yaml:"serial"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	c := Config{
		TickPeriod:       DefaultTickPeriod,
		Window:           DefaultWindow,
		SettleDelay:      DefaultSettleDelay,
		ShutdownDelay:    DefaultShutdownDelay,
		ProgressInterval: DefaultProgressInterval,
		DCShift:          DefaultDCShift,
		MinBeatAmplitude: DefaultMinBeatAmplitude,
		MaxBeatAmplitude: DefaultMaxBeatAmplitude,
		Sensor: SensorConfig{
			Addr:   max30100.Addr,
			Config: max30100.DefaultConfig(),
		},
		Button: ButtonConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
	c.Display.QueueSize = 8
	c.Display.NotifyTimeout = DefaultNotifyTimeout
	c.Display.NATS.Subject = "hrmonitor.display"
	c.Display.Serial.Baud = 115200
	return c
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("hrmonitor: could not read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("hrmonitor: could not parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}

// Validate checks that the engine can run with c.
func (c Config) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return fmt.Errorf("hrmonitor: %w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.TickPeriod <= 0:
		return invalid("tick_period must be positive, got %v", c.TickPeriod)
	case c.Window < MinWindow || c.Window > MaxWindow:
		return invalid("window must be between %v and %v, got %v", MinWindow, MaxWindow, c.Window)
	case c.Window < c.TickPeriod:
		return invalid("window %v is shorter than tick_period %v", c.Window, c.TickPeriod)
	case c.SettleDelay < 0 || c.ShutdownDelay < 0:
		return invalid("delays must not be negative")
	case c.ProgressInterval <= 0:
		return invalid("progress_interval must be positive, got %d", c.ProgressInterval)
	case c.DCShift == 0 || c.DCShift > 15:
		return invalid("dc_shift must be between 1 and 15, got %d", c.DCShift)
	case c.MinBeatAmplitude < 0 || c.MaxBeatAmplitude <= c.MinBeatAmplitude:
		return invalid("beat amplitude gate (%d, %d) is empty", c.MinBeatAmplitude, c.MaxBeatAmplitude)
	case c.Display.QueueSize < 0:
		return invalid("display queue_size must not be negative")
	case c.Display.NotifyTimeout < 0:
		return invalid("display notify_timeout must not be negative")
	}

	if _, err := c.Sensor.Options(); err != nil {
		return invalid("%v", err)
	}

	return nil
}

// ticks returns how many tick periods cover d, at least one.
func (c Config) ticks(d time.Duration) int {
	n := int((d + c.TickPeriod - 1) / c.TickPeriod)
	if n < 1 {
		n = 1
	}
	return n
}
