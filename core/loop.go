package core

import "context"

// Loop is the main loop: it drains the event queue into the machine, then
// waits for the next interrupt.
type Loop struct {
	q    *EventQueue
	m    *Machine
	diag *Diagnostics

	reportedOverflows uint32
}

// NewLoop connects q to m.
func NewLoop(q *EventQueue, m *Machine, diag *Diagnostics) *Loop {
	return &Loop{q: q, m: m, diag: diag}
}

// Step dispatches every pending event in FIFO order and returns how many it
// handled.
func (l *Loop) Step() int {
	n := 0
	for {
		ev, ok := l.q.Poll()
		if !ok {
			break
		}
		l.m.Dispatch(ev)
		n++
	}
	l.reportOverflow()
	return n
}

func (l *Loop) reportOverflow() {
	overflows := l.q.Stats().Overflows
	if overflows == l.reportedOverflows {
		return
	}
	dropped := overflows - l.reportedOverflows
	if l.diag != nil && !l.diag.Post("queue overflow: dropped "+utoa(dropped)) {
		// retry on the next pass
		return
	}
	l.reportedOverflows = overflows
}

// Run loops until ctx is done and returns ctx's error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Step()
		if err := l.q.Wait(ctx); err != nil {
			return err
		}
	}
}
