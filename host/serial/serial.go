package serial

import (
	"io"
	"time"

	"testseq/config"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush discards unread input and unsent output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration
}

// DefaultBaud matches the sequencer firmware UART.
const DefaultBaud = 115200

// DefaultConfig returns a default configuration for the sequencer board
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// FromConfig converts the serial section of a sequencer config.
func FromConfig(c config.Serial) *Config {
	cfg := DefaultConfig(c.Device)
	if c.Baud > 0 {
		cfg.Baud = c.Baud
	}
	return cfg
}
