package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.TickPeriod != time.Second {
		t.Errorf("Expected tick period 1s, got %v", cfg.TickPeriod)
	}
	if cfg.QueueCapacity != 16 {
		t.Errorf("Expected queue capacity 16, got %d", cfg.QueueCapacity)
	}
	if cfg.Serial.Baud != 115200 {
		t.Errorf("Expected baud 115200, got %d", cfg.Serial.Baud)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero tick", func(c *Config) { c.TickPeriod = 0 }, ErrTickPeriod},
		{"capacity not power of two", func(c *Config) { c.QueueCapacity = 12 }, ErrQueueCapacity},
		{"capacity one", func(c *Config) { c.QueueCapacity = 1 }, ErrQueueCapacity},
		{"no diag depth", func(c *Config) { c.DiagDepth = 0 }, ErrDiagDepth},
		{"no baud", func(c *Config) { c.Serial.Baud = 0 }, ErrBaud},
		{"stimulus without period", func(c *Config) {
			c.Stimulus.Enabled = true
			c.Stimulus.Period = 0
		}, ErrStimulusRate},
		{"pin conflict", func(c *Config) { c.Pins.Done = c.Pins.Ready }, ErrPinConflict},
		{"unused pins may repeat", func(c *Config) {
			c.Pins.Abort = Unused
			c.Pins.Done = Unused
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}
