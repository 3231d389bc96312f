package core

// Pin identifies a hardware GPIO pin number
type Pin uint32

// PinMode is the direction a pin is configured for.
type PinMode uint8

const (
	PinOutput PinMode = iota
	PinInput
)

func (m PinMode) String() string {
	if m == PinInput {
		return "input"
	}
	return "output"
}

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureDirection configures a pin as a digital input or output.
	// Returns error if pin is invalid or already in use
	ConfigureDirection(pin Pin, mode PinMode) error

	// SetPin sets the pin to high (true) or low (false).
	// Must be safe to call from interrupt context.
	SetPin(pin Pin, level bool) error
}

// NoPin marks an optional output as unused.
const NoPin Pin = 0xFFFFFFFF

// output is a pin the core drives. A NoPin output ignores writes.
type output struct {
	gpio GPIODriver
	pin  Pin
}

func (o output) configure(level bool) error {
	if o.pin == NoPin {
		return nil
	}
	if o.gpio == nil {
		return ErrNoGPIO
	}
	if err := o.gpio.ConfigureDirection(o.pin, PinOutput); err != nil {
		return err
	}
	return o.gpio.SetPin(o.pin, level)
}

func (o output) set(level bool) {
	if o.pin == NoPin || o.gpio == nil {
		return
	}
	// Output writes are best effort; a failing pin must not stall dispatch.
	_ = o.gpio.SetPin(o.pin, level)
}
