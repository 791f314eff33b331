package max30100

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrNotDevice throws an error when the device part ID does not match a
	// MAX30100 signature (0x11).
	ErrNotDevice = errors.New("max30100: part ID does not match (0x11)")
	// ErrTimeout is returned when a register flag does not settle in time.
	ErrTimeout = errors.New("max30100: timeout waiting for device")
)

const pollTimeout = 100 * time.Millisecond

// Device defines a MAX30100 device.
type Device struct {
	dev *i2c.Dev
	bus i2c.BusCloser
}

// Open initializes the host and returns the MAX30100 found on the named bus.
//
// Argument "busName" can be used to specify the exact bus to use ("/dev/i2c-2", "I2C2", "2").
// If "busName" is an empty string "" the first available bus will be used.
// Argument "addr" can be used to specify an alternative address; 0 selects
// the default (0x57).
func Open(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("max30100: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("max30100: could not open I2C bus: %w", err)
	}

	d, err := New(bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	d.bus = bus

	return d, nil
}

// New returns the MAX30100 at addr on an already opened bus. The device is
// left in its current state.
func New(bus i2c.Bus, addr uint16) (*Device, error) {
	if addr == 0 {
		addr = Addr
	}

	d := &Device{
		dev: &i2c.Dev{
			Addr: addr,
			Bus:  bus,
		},
	}

	part, err := d.Read(RegPartID)
	if err != nil {
		return nil, fmt.Errorf("max30100: could not get part ID: %w", err)
	}
	if part != PartID {
		return nil, ErrNotDevice
	}

	return d, nil
}

// Close shuts the device down and releases the bus if Open created it.
func (d *Device) Close() error {
	err := d.PowerOff()
	if d.bus != nil {
		if cerr := d.bus.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// PartID returns the part ID of the device.
func (d *Device) PartID() (byte, error) {
	part, err := d.Read(RegPartID)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not get part ID: %w", err)
	}
	return part, nil
}

// RevID returns the revision ID of the device.
func (d *Device) RevID() (byte, error) {
	rev, err := d.Read(RegRevID)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not get revision ID: %w", err)
	}
	return rev, nil
}

// Read returns the value of register reg.
func (d *Device) Read(reg byte) (byte, error) {
	b, err := d.ReadBytes(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n bytes in one transaction starting at register reg. The
// register pointer auto-increments, except on FIFOData which yields
// consecutive FIFO bytes.
func (d *Device) ReadBytes(reg byte, n int) ([]byte, error) {
	b := make([]byte, n)
	if err := d.dev.Tx([]byte{reg}, b); err != nil {
		return nil, fmt.Errorf("max30100: could not read %d bytes at 0x%02x: %w", n, reg, err)
	}
	return b, nil
}

// Write sets register reg to v.
func (d *Device) Write(reg, v byte) error {
	n, err := d.dev.Write([]byte{reg, v})
	switch {
	case err != nil:
		return fmt.Errorf("max30100: could not write 0x%02x: %w", reg, err)
	case n != 2:
		return fmt.Errorf("max30100: short write to 0x%02x: %d of 2 bytes", reg, n)
	}
	return nil
}

func (d *Device) waitClear(reg, flag byte) error {
	deadline := time.Now().Add(pollTimeout)
	for {
		state, err := d.Read(reg)
		if err != nil {
			return fmt.Errorf("could not wait for %#x in %#x to clear: %w", flag, reg, err)
		}
		if state&flag == 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
	}
}

// Reset resets the device. All configurations, thresholds, and data registers
// are reset to their power-on state.
func (d *Device) Reset() error {
	if _, err := d.update(ModeCfg, ^modeRESET, modeRESET); err != nil {
		return fmt.Errorf("max30100: could not reset: %w", err)
	}
	return nil
}

// PowerOn wakes the device from power-save mode.
func (d *Device) PowerOn() error {
	if _, err := d.update(ModeCfg, ^modeSHDN, 0); err != nil {
		return fmt.Errorf("max30100: could not power on: %w", err)
	}
	return nil
}

// PowerOff sets the device into power-save mode.
func (d *Device) PowerOff() error {
	if _, err := d.update(ModeCfg, ^modeSHDN, modeSHDN); err != nil {
		return fmt.Errorf("max30100: could not power off: %w", err)
	}
	return nil
}

// Configure applies mode, sample rate, LED setup and resolution.
func (d *Device) Configure(c Config) error {
	opts, err := c.Options()
	if err != nil {
		return err
	}
	if _, err := d.Options(opts...); err != nil {
		return err
	}
	return nil
}

// Available returns the number of unread samples in the FIFO.
func (d *Device) Available() (int, error) {
	wr, err := d.Read(FIFOWrPtr)
	if err != nil {
		return 0, err
	}
	rd, err := d.Read(FIFORdPtr)
	if err != nil {
		return 0, err
	}

	return (fifoDepth + int(wr) - int(rd)) % fifoDepth, nil
}

// IRRed reads one sample from the FIFO and returns the raw IR and red values.
func (d *Device) IRRed() (ir, red uint16, err error) {
	b, err := d.ReadBytes(FIFOData, 4)
	if err != nil {
		return 0, 0, err
	}

	ir = uint16(b[0])<<8 | uint16(b[1])
	red = uint16(b[2])<<8 | uint16(b[3])

	return ir, red, nil
}

// Temperature returns the die temperature in °C.
func (d *Device) Temperature() (float64, error) {
	if _, err := d.update(ModeCfg, ^modeTEMP, modeTEMP); err != nil {
		return 0, fmt.Errorf("max30100: could not enable temperature: %w", err)
	}
	if err := d.waitClear(ModeCfg, modeTEMP); err != nil {
		return 0, fmt.Errorf("max30100: could not read temperature: %w", err)
	}

	i, err := d.Read(TempInt)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read integer part of temperature: %w", err)
	}

	f, err := d.Read(TempFrac)
	if err != nil {
		return 0, fmt.Errorf("max30100: could not read fractional part of temperature: %w", err)
	}

	return float64(int8(i)) + (float64(f&0x0F) * 0.0625), nil
}
