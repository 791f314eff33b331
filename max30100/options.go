package max30100

import (
	"fmt"
	"math"
)

// Mode is the operating mode of the device.
type Mode byte

// Operating modes
const (
	ModeHR   Mode = 0b010
	ModeSpO2 Mode = 0b011
)

func (m Mode) String() string {
	switch m {
	case ModeHR:
		return "hr"
	case ModeSpO2:
		return "spo2"
	}
	return fmt.Sprintf("mode(%#x)", byte(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts "hr" and
// "spo2".
func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "hr":
		*m = ModeHR
	case "spo2":
		*m = ModeSpO2
	default:
		return fmt.Errorf("max30100: unknown mode %q", b)
	}
	return nil
}

// Config is the measurement setup applied by Configure.
type Config struct {
	Mode Mode `yaml:"mode"`
	// SampleRate in samples/s: 50, 100, 167, 200, 400, 600, 800 or 1000.
	SampleRate int `yaml:"sample_rate"`
	// PulseWidth of the LEDs in µs: 200, 400, 800 or 1600.
	PulseWidth int `yaml:"pulse_width"`
	// RedCurrent and IRCurrent in mA, 0 to 50. Rounded down to the nearest
	// supported step.
	RedCurrent float64 `yaml:"red_current"`
	IRCurrent  float64 `yaml:"ir_current"`
	// HighRes enables 16-bit ADC resolution.
	HighRes bool `yaml:"high_res"`
}

// DefaultConfig returns SpO2 mode at 100 samples/s, 1600µs pulses, 27.1mA on
// both LEDs and 16-bit resolution.
func DefaultConfig() Config {
	return Config{
		Mode:       ModeSpO2,
		SampleRate: 100,
		PulseWidth: 1600,
		RedCurrent: 27.1,
		IRCurrent:  27.1,
		HighRes:    true,
	}
}

// Options returns the device options equivalent to c.
func (c Config) Options() ([]Option, error) {
	sr, ok := sampleRates[c.SampleRate]
	if !ok {
		return nil, fmt.Errorf("max30100: unsupported sample rate %d", c.SampleRate)
	}
	pw, ok := pulseWidths[c.PulseWidth]
	if !ok {
		return nil, fmt.Errorf("max30100: unsupported pulse width %dus", c.PulseWidth)
	}
	if c.Mode != ModeHR && c.Mode != ModeSpO2 {
		return nil, fmt.Errorf("max30100: unsupported mode %v", c.Mode)
	}

	return []Option{
		SetMode(c.Mode),
		SampleRate(sr),
		PulseWidth(pw),
		LEDCurrent(c.RedCurrent, c.IRCurrent),
		HighRes(c.HighRes),
	}, nil
}

// Option defines a functional option for the device.
type Option func(d *Device) (Option, error)

// Options applies options in order and stops at the first failure. The
// returned option restores the value replaced by the last one.
func (d *Device) Options(options ...Option) (restore Option, err error) {
	for _, opt := range options {
		if restore, err = opt(d); err != nil {
			return nil, err
		}
	}
	return restore, nil
}

// update rewrites register reg keeping the bits in keep and setting the bits
// in set. It returns the previous value of the bits outside keep.
func (d *Device) update(reg, keep, set byte) (byte, error) {
	v, err := d.Read(reg)
	if err != nil {
		return 0, err
	}
	if err := d.Write(reg, v&keep|set); err != nil {
		return 0, err
	}
	return v &^ keep, nil
}

// SetMode sets the operation mode of the device.
func SetMode(mode Mode) Option {
	return func(d *Device) (Option, error) {
		old, err := d.update(ModeCfg, modeMask, byte(mode))
		if err != nil {
			return nil, fmt.Errorf("max30100: could not configure mode: %w", err)
		}

		return SetMode(Mode(old)), nil
	}
}

// SampleRate sets the SpO2 sample rate control of the device.
func SampleRate(sr byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.update(SpO2Cfg, srMask, sr&^srMask)
		if err != nil {
			return nil, fmt.Errorf("max30100: could not configure sample rate: %w", err)
		}

		return SampleRate(old), nil
	}
}

// PulseWidth sets the LED pulse width of the device.
func PulseWidth(pw byte) Option {
	return func(d *Device) (Option, error) {
		old, err := d.update(SpO2Cfg, pwMask, pw&^pwMask)
		if err != nil {
			return nil, fmt.Errorf("max30100: could not configure pulse width: %w", err)
		}

		return PulseWidth(old), nil
	}
}

// HighRes enables or disables the 16-bit ADC resolution.
func HighRes(enabled bool) Option {
	return func(d *Device) (Option, error) {
		var flag byte
		if enabled {
			flag = spo2HighRes
		}
		old, err := d.update(SpO2Cfg, ^spo2HighRes, flag)
		if err != nil {
			return nil, fmt.Errorf("max30100: could not configure resolution: %w", err)
		}

		return HighRes(old != 0), nil
	}
}

// LEDCurrent sets the drive current of the red and IR LEDs. Values are
// clamped to 0 to 50mA and rounded down to the nearest supported step.
func LEDCurrent(red, ir float64) Option {
	return func(d *Device) (Option, error) {
		old, err := d.Read(LedCfg)
		if err != nil {
			return nil, fmt.Errorf("max30100: could not configure LED current: %w", err)
		}
		if err := d.Write(LedCfg, ledCode(red)<<4|ledCode(ir)); err != nil {
			return nil, fmt.Errorf("max30100: could not configure LED current: %w", err)
		}

		return LEDCurrent(ledCurrents[old>>4], ledCurrents[old&0x0F]), nil
	}
}

func ledCode(current float64) byte {
	if math.IsNaN(current) || current <= 0 {
		return 0
	}
	code := byte(0)
	for i, c := range ledCurrents {
		if c <= current {
			code = byte(i)
		}
	}
	return code
}
