// Package pcf8591 is a driver for the PCF8591 8-bit A/D and D/A converter.
//
// The chip has four analog inputs and one analog output behind a single
// control register on the I2C bus. Conversions run one cycle behind the input
// selector, so the first read after switching channels returns the previous
// channel's result and must be thrown away. The driver remembers which channel
// it last selected: repeated reads of the same input skip the select command
// and its discard read entirely, which matters when polling one input in a
// tight loop.
//
// A Device is not safe for concurrent use; callers sharing one across
// goroutines must serialize access themselves.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/PCF8591.pdf
package pcf8591

import (
	"io"

	"github.com/go-daq/smbus"
)

// Bus is the connection the driver talks to the chip over. It is already
// bound to one device address and is exclusively owned by the Device.
// *smbus.Conn implements it.
type Bus interface {
	io.Reader
	io.Writer
	Close() error
}

var _ Bus = (*smbus.Conn)(nil)

// Pin identifies one of the four physical analog input pins.
type Pin uint8

const (
	AIN0 Pin = iota
	AIN1
	AIN2
	AIN3
)

// control returns the command byte that points the chip's selector at p.
func (p Pin) control() byte {
	switch p {
	case AIN1:
		return ctrlAIN1
	case AIN2:
		return ctrlAIN2
	case AIN3:
		return ctrlAIN3
	default:
		return ctrlAIN0
	}
}

// Device is a driver for a single PCF8591 on an open bus connection.
type Device struct {
	bus      Bus
	vref     float64
	lsb      float64 // volts per count, vref/255
	selected Pin
	// primed reports whether selected still matches the chip's selector
	// register and the stale conversion after the switch has been discarded.
	primed bool
}

// Open opens /dev/i2c-<bus> and returns a driver for the chip at addr. vref
// is the voltage on the chip's reference input; a raw reading of 255 maps to
// vref. Bus errors propagate unchanged.
func Open(bus int, addr uint8, vref float64) (*Device, error) {
	conn, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, err
	}
	return New(conn, vref), nil
}

// New creates a driver on an already-open connection, which must be bound to
// the chip's address. The Device takes ownership of the connection and closes
// it on Close.
func New(bus Bus, vref float64) *Device {
	return &Device{
		bus:  bus,
		vref: vref,
		lsb:  vref / 255,
	}
}

// ReadPin returns the 8-bit conversion result for pin, scaled linearly so
// that 0 is 0 V and 255 is the reference voltage.
func (d *Device) ReadPin(pin Pin) (uint8, error) {
	if !d.primed || d.selected != pin {
		if err := d.selectPin(pin); err != nil {
			return 0, err
		}
	}
	var buf [1]byte
	if _, err := d.bus.Read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// selectPin points the chip's selector at pin and burns the mandatory discard
// read. The conversion pipeline lags the selector by one cycle, so the first
// read after a switch still holds the previous channel's result.
func (d *Device) selectPin(pin Pin) error {
	if _, err := d.bus.Write([]byte{pin.control()}); err != nil {
		// Nothing reached the chip; whatever was selected before still is.
		return err
	}
	var buf [1]byte
	if _, err := d.bus.Read(buf[:]); err != nil {
		// The selector moved but the stale conversion is still queued. A
		// later cache hit would hand it to the caller, so drop the cache.
		d.primed = false
		return err
	}
	d.selected = pin
	d.primed = true
	return nil
}

// ReadVoltage returns the conversion result for pin in volts.
func (d *Device) ReadVoltage(pin Pin) (float64, error) {
	raw, err := d.ReadPin(pin)
	if err != nil {
		return 0, err
	}
	return float64(raw) / 255 * d.vref, nil
}

// WriteOutput sets the analog output to the raw 8-bit value. Driving the
// output moves the control register away from pure input mode, so the cached
// input selection is dropped and the next read re-selects.
func (d *Device) WriteOutput(value uint8) error {
	d.primed = false
	_, err := d.bus.Write([]byte{ctrlOutput, value})
	return err
}

// WriteVoltage sets the analog output to vout, truncated to the step below.
// Values outside [0, vref] are not range-checked and wrap through the 8-bit
// conversion.
func (d *Device) WriteVoltage(vout float64) error {
	return d.WriteOutput(uint8(vout / d.lsb))
}

// Close releases the bus connection.
func (d *Device) Close() error {
	return d.bus.Close()
}
