//go:build rp2040

package main

import (
	"errors"
	"machine"

	"testseq/core"
)

// numGPIO is the number of user GPIOs on the RP2040 (GPIO0-GPIO29).
const numGPIO = 30

var errInvalidPin = errors.New("invalid gpio pin")

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configured [numGPIO]bool
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

// ConfigureDirection configures a pin as a digital input or output
func (d *RPGPIODriver) ConfigureDirection(pin core.Pin, mode core.PinMode) error {
	if pin >= numGPIO {
		return errInvalidPin
	}
	pinMode := machine.PinOutput
	if mode == core.PinInput {
		pinMode = machine.PinInput
	}
	machine.Pin(pin).Configure(machine.PinConfig{Mode: pinMode})
	d.configured[pin] = true
	return nil
}

// SetPin sets the pin to high (true) or low (false).
// Called from the tick source, so it only touches the pin register.
func (d *RPGPIODriver) SetPin(pin core.Pin, level bool) error {
	if pin >= numGPIO || !d.configured[pin] {
		return errInvalidPin
	}
	machine.Pin(pin).Set(level)
	return nil
}
