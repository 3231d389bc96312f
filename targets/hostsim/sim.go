//go:build !tinygo

package main

import (
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"testseq/config"
	"testseq/core"
)

// simGPIO logs pin changes instead of driving hardware.
type simGPIO struct {
	mu     sync.Mutex
	names  map[core.Pin]string
	modes  map[core.Pin]core.PinMode
	levels map[core.Pin]bool
	status core.Pin
}

var errNotConfigured = errors.New("pin not configured")

func newSimGPIO(pins config.Pins) *simGPIO {
	g := &simGPIO{
		names:  make(map[core.Pin]string),
		modes:  make(map[core.Pin]core.PinMode),
		levels: make(map[core.Pin]bool),
		status: core.NoPin,
	}
	add := func(name string, n int) {
		if n >= 0 {
			g.names[core.Pin(n)] = name
		}
	}
	add("status", pins.Status)
	add("ready", pins.Ready)
	add("busy", pins.Busy)
	add("abort", pins.Abort)
	add("done", pins.Done)
	add("dut_select", pins.DUTSelect)
	add("stimulus", pins.Stimulus)
	if pins.Status >= 0 {
		g.status = core.Pin(pins.Status)
	}
	return g
}

func (g *simGPIO) name(pin core.Pin) string {
	if n, ok := g.names[pin]; ok {
		return n
	}
	return "gpio"
}

func (g *simGPIO) ConfigureDirection(pin core.Pin, mode core.PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modes[pin] = mode
	glog.V(1).Infof("gpio%d (%s) configured as %s", pin, g.name(pin), mode)
	return nil
}

func (g *simGPIO) SetPin(pin core.Pin, level bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.modes[pin]; !ok {
		return errNotConfigured
	}
	changed := g.levels[pin] != level
	g.levels[pin] = level
	if !changed {
		return nil
	}
	// the status pin toggles every tick
	v := glog.Level(1)
	if pin == g.status {
		v = 3
	}
	if glog.V(v) {
		glog.Infof("gpio%d (%s) = %v", pin, g.name(pin), level)
	}
	return nil
}

func (g *simGPIO) Level(pin core.Pin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

// simDUT answers like a device that always completes with a fixed status.
type simDUT struct {
	status  byte
	running bool
}

func (d *simDUT) Begin() error {
	d.running = true
	glog.Info("dut: self test started")
	return nil
}

func (d *simDUT) Abort() error {
	d.running = false
	glog.Info("dut: self test aborted")
	return nil
}

func (d *simDUT) Status() (byte, error) {
	d.running = false
	return d.status, nil
}

// simStimulus records when the pulse train would run.
type simStimulus struct {
	period  time.Duration
	started time.Time
}

func (s *simStimulus) Start() error {
	s.started = time.Now()
	glog.Infof("stimulus: started, period %v", s.period)
	return nil
}

func (s *simStimulus) Stop() error {
	if s.started.IsZero() {
		return nil
	}
	ran := time.Since(s.started)
	glog.Infof("stimulus: stopped after %v (%d periods)", ran, ran/s.period)
	s.started = time.Time{}
	return nil
}
