// Package config holds the sequencer's build and run time settings.
package config

import (
	"errors"
	"strconv"
	"time"
)

// Unused marks an optional pin as not connected.
const Unused = -1

// Pins maps sequencer signals to GPIO numbers. A negative value disables
// the signal.
type Pins struct {
	Status    int `yaml:"status"`
	Ready     int `yaml:"ready"`
	Busy      int `yaml:"busy"`
	Abort     int `yaml:"abort"`
	Done      int `yaml:"done"`
	DUTSelect int `yaml:"dut_select"`
	Stimulus  int `yaml:"stimulus"`
}

// Serial describes the command/diagnostic port.
type Serial struct {
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
}

// DUT configures the SPI link to the device under test.
type DUT struct {
	Enabled   bool   `yaml:"enabled"`
	Frequency uint32 `yaml:"frequency"`
}

// Stimulus configures the pulse train driven while a test runs.
type Stimulus struct {
	Enabled bool          `yaml:"enabled"`
	Period  time.Duration `yaml:"period"`
}

// Config is the complete sequencer configuration.
type Config struct {
	TickPeriod time.Duration `yaml:"tick_period"`
	// NoTickEvents keeps the status toggle but stops the tick source from
	// posting Tick events.
	NoTickEvents  bool     `yaml:"no_tick_events"`
	QueueCapacity int      `yaml:"queue_capacity"`
	DiagDepth     int      `yaml:"diag_depth"`
	Verbose       bool     `yaml:"verbose"`
	Pins          Pins     `yaml:"pins"`
	Serial        Serial   `yaml:"serial"`
	DUT           DUT      `yaml:"dut"`
	Stimulus      Stimulus `yaml:"stimulus"`
}

var (
	ErrTickPeriod    = errors.New("tick period must be positive")
	ErrQueueCapacity = errors.New("queue capacity must be a power of two >= 2")
	ErrDiagDepth     = errors.New("diagnostic depth must be positive")
	ErrBaud          = errors.New("baud rate must be positive")
	ErrPinConflict   = errors.New("pin assigned twice")
	ErrStimulusRate  = errors.New("stimulus period must be positive")
)

// Default returns the reference board configuration (Raspberry Pi Pico).
func Default() Config {
	return Config{
		TickPeriod:    time.Second,
		QueueCapacity: 16,
		DiagDepth:     16,
		Pins: Pins{
			Status:    25, // on-board LED
			Ready:     2,
			Busy:      3,
			Abort:     4,
			Done:      5,
			DUTSelect: 17,
			Stimulus:  6,
		},
		Serial: Serial{
			Device: "/dev/ttyACM0",
			Baud:   115200,
		},
		DUT: DUT{
			Frequency: 1000000,
		},
		Stimulus: Stimulus{
			Period: time.Millisecond,
		},
	}
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = def.TickPeriod
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = def.QueueCapacity
	}
	if cfg.DiagDepth == 0 {
		cfg.DiagDepth = def.DiagDepth
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = def.Serial.Baud
	}
	if cfg.DUT.Frequency == 0 {
		cfg.DUT.Frequency = def.DUT.Frequency
	}
	if cfg.Stimulus.Period == 0 {
		cfg.Stimulus.Period = def.Stimulus.Period
	}
}

// Validate checks the configuration for values the firmware cannot run with.
func (c *Config) Validate() error {
	if c.TickPeriod <= 0 {
		return ErrTickPeriod
	}
	if n := c.QueueCapacity; n < 2 || n&(n-1) != 0 {
		return ErrQueueCapacity
	}
	if c.DiagDepth <= 0 {
		return ErrDiagDepth
	}
	if c.Serial.Baud <= 0 {
		return ErrBaud
	}
	if c.Stimulus.Enabled && c.Stimulus.Period <= 0 {
		return ErrStimulusRate
	}
	return c.Pins.validate()
}

func (p Pins) validate() error {
	seen := make(map[int]string)
	for _, e := range p.entries() {
		if e.pin < 0 {
			continue
		}
		if other, ok := seen[e.pin]; ok {
			return &pinError{pin: e.pin, first: other, second: e.name}
		}
		seen[e.pin] = e.name
	}
	return nil
}

type pinError struct {
	pin           int
	first, second string
}

func (e *pinError) Error() string {
	return ErrPinConflict.Error() + ": gpio" + strconv.Itoa(e.pin) + " used by " + e.first + " and " + e.second
}

func (e *pinError) Unwrap() error { return ErrPinConflict }

type pinEntry struct {
	name string
	pin  int
}

func (p Pins) entries() []pinEntry {
	return []pinEntry{
		{"status", p.Status},
		{"ready", p.Ready},
		{"busy", p.Busy},
		{"abort", p.Abort},
		{"done", p.Done},
		{"dut_select", p.DUTSelect},
		{"stimulus", p.Stimulus},
	}
}
