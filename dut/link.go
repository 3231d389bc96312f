// Package dut talks to the device under test over SPI.
//
// Every exchange is one chip-select frame. The first byte is an opcode; a
// status read clocks one extra byte back.
package dut

import (
	"errors"

	"tinygo.org/x/drivers"

	"testseq/core"
)

// Opcodes understood by the device under test.
const (
	OpBegin  byte = 0xB1
	OpAbort  byte = 0xAB
	OpStatus byte = 0x5A
)

var ErrNoSPI = errors.New("dut: spi bus not configured")

// OpError records which opcode failed.
type OpError struct {
	Op  byte
	Err error
}

func (e *OpError) Error() string {
	return "dut: " + opName(e.Op) + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

func opName(op byte) string {
	switch op {
	case OpBegin:
		return "begin"
	case OpAbort:
		return "abort"
	case OpStatus:
		return "status"
	}
	return "op"
}

// Link is a DUT connection. The chip select is active low and idles high.
type Link struct {
	spi  drivers.SPI
	gpio core.GPIODriver
	cs   core.Pin

	tx [2]byte
	rx [2]byte
}

// New creates a link on spi using cs as chip select.
func New(spi drivers.SPI, gpio core.GPIODriver, cs core.Pin) *Link {
	return &Link{spi: spi, gpio: gpio, cs: cs}
}

// Configure drives chip select high (deselected).
func (l *Link) Configure() error {
	if l.gpio == nil {
		return core.ErrNoGPIO
	}
	if err := l.gpio.ConfigureDirection(l.cs, core.PinOutput); err != nil {
		return err
	}
	return l.gpio.SetPin(l.cs, true)
}

// Begin starts the DUT self test.
func (l *Link) Begin() error {
	_, err := l.frame(OpBegin, 1)
	return err
}

// Abort stops a running self test.
func (l *Link) Abort() error {
	_, err := l.frame(OpAbort, 1)
	return err
}

// Status reads the DUT result byte.
func (l *Link) Status() (byte, error) {
	return l.frame(OpStatus, 2)
}

func (l *Link) frame(op byte, n int) (byte, error) {
	if l.spi == nil {
		return 0, ErrNoSPI
	}
	l.tx[0], l.tx[1] = op, 0
	l.rx[0], l.rx[1] = 0, 0

	if err := l.gpio.SetPin(l.cs, false); err != nil {
		return 0, &OpError{Op: op, Err: err}
	}
	err := l.spi.Tx(l.tx[:n], l.rx[:n])
	// always release the bus
	if csErr := l.gpio.SetPin(l.cs, true); err == nil {
		err = csErr
	}
	if err != nil {
		return 0, &OpError{Op: op, Err: err}
	}
	return l.rx[n-1], nil
}
