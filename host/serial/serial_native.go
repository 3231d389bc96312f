package serial

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

var ErrNoConfig = errors.New("serial: config cannot be nil")

// NativePort is a board connection opened through tarm/serial.
// Read, Write, Close and Flush come straight from the embedded port.
type NativePort struct {
	*serial.Port
	device string
}

// Open opens the sequencer's serial device. A zero baud rate falls back to
// DefaultBaud.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, ErrNoConfig
	}
	baud := cfg.Baud
	if baud <= 0 {
		baud = DefaultBaud
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Device, err)
	}
	glog.V(1).Infof("serial: opened %s at %d baud", cfg.Device, baud)

	return &NativePort{Port: port, device: cfg.Device}, nil
}

// Device returns the path the port was opened on.
func (p *NativePort) Device() string { return p.device }
