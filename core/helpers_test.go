package core

import (
	"errors"
	"sync"
)

type fakeGPIO struct {
	mu         sync.Mutex
	modes      map[Pin]PinMode
	levels     map[Pin]bool
	writes     map[Pin]int
	failConfig Pin
}

func newFakeGPIO() *fakeGPIO {
	return &fakeGPIO{
		modes:      make(map[Pin]PinMode),
		levels:     make(map[Pin]bool),
		writes:     make(map[Pin]int),
		failConfig: NoPin,
	}
}

var errBadPin = errors.New("bad pin")

func (g *fakeGPIO) ConfigureDirection(pin Pin, mode PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pin == g.failConfig {
		return errBadPin
	}
	g.modes[pin] = mode
	return nil
}

func (g *fakeGPIO) SetPin(pin Pin, level bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.levels[pin] = level
	g.writes[pin]++
	return nil
}

func (g *fakeGPIO) level(pin Pin) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.levels[pin]
}

func (g *fakeGPIO) mode(pin Pin) (PinMode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.modes[pin]
	return m, ok
}

func (g *fakeGPIO) writeCount(pin Pin) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writes[pin]
}

type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (l *lineLog) sink(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
}

func (l *lineLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *lineLog) contains(line string) bool {
	for _, got := range l.all() {
		if got == line {
			return true
		}
	}
	return false
}

// recorder counts entry action runs per state.
type recorder struct {
	enters [numStates]int
	froms  [numStates][]State
}

func (r *recorder) actions() ActionTable {
	var t ActionTable
	for s := State(0); s < numStates; s++ {
		s := s
		t[s] = ActionFunc(func(from State) {
			r.enters[s]++
			r.froms[s] = append(r.froms[s], from)
		})
	}
	return t
}

type fakeDUT struct {
	calls  []string
	status byte
	err    error
}

func (d *fakeDUT) Begin() error {
	d.calls = append(d.calls, "begin")
	return d.err
}

func (d *fakeDUT) Abort() error {
	d.calls = append(d.calls, "abort")
	return d.err
}

func (d *fakeDUT) Status() (byte, error) {
	d.calls = append(d.calls, "status")
	return d.status, d.err
}

type fakeStimulus struct {
	running bool
	starts  int
	stops   int
}

func (s *fakeStimulus) Start() error {
	s.running = true
	s.starts++
	return nil
}

func (s *fakeStimulus) Stop() error {
	s.running = false
	s.stops++
	return nil
}
