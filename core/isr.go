package core

import (
	"context"
	"sync/atomic"
	"time"

	"testseq/protocol"
)

// TickSource is the periodic timer interrupt. Each overflow toggles the
// status output directly and, when enabled, posts a Tick event.
type TickSource struct {
	q         *EventQueue
	status    output
	level     atomic.Bool
	ticks     atomic.Uint32
	postTicks bool
}

// NewTickSource creates a tick source driving status on gpio.
// Pass NoPin to run without a status indicator.
func NewTickSource(q *EventQueue, gpio GPIODriver, status Pin, postTicks bool) *TickSource {
	return &TickSource{q: q, status: output{gpio: gpio, pin: status}, postTicks: postTicks}
}

// HandleOverflow is the timer interrupt handler.
func (t *TickSource) HandleOverflow() {
	level := !t.level.Load()
	t.level.Store(level)
	t.status.set(level)
	t.ticks.Add(1)
	if t.postTicks {
		t.q.Post(EventTick)
	}
}

// Count returns the number of timer overflows handled.
func (t *TickSource) Count() uint32 { return t.ticks.Load() }

// Run calls HandleOverflow every period until ctx is done. Targets without a
// hardware timer interrupt run it in its own goroutine.
func (t *TickSource) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.HandleOverflow()
		}
	}
}

// CommandSource is the serial receive interrupt. It decodes one byte per
// call and never writes to the serial port.
type CommandSource struct {
	q         *EventQueue
	received   atomic.Uint32
	discarded  atomic.Uint32
	recvErrors atomic.Uint32
}

// NewCommandSource creates a command source posting to q.
func NewCommandSource(q *EventQueue) *CommandSource {
	return &CommandSource{q: q}
}

// HandleByte is the receive interrupt handler.
func (c *CommandSource) HandleByte(b byte) {
	c.received.Add(1)
	cmd, ok := protocol.Decode(b)
	if !ok {
		c.discarded.Add(1)
		return
	}
	c.q.Post(commandEvent(cmd))
}

// Write feeds a block of received bytes through HandleByte, so a
// CommandSource can sit at the end of an io.Copy. It never fails.
func (c *CommandSource) Write(p []byte) (int, error) {
	for _, b := range p {
		c.HandleByte(b)
	}
	return len(p), nil
}

// Receiver is a byte source that blocks until data arrives or ctx is done,
// such as an interrupt driven UART.
type Receiver interface {
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

// RecvErrorBackoff is the pause Pump takes after a receive error.
const RecvErrorBackoff = 10 * time.Millisecond

// Pump feeds bytes from r into the command source until ctx is done.
// Receive errors are counted and paced by backoff so a faulty port cannot
// starve the main loop.
func (c *CommandSource) Pump(ctx context.Context, r Receiver, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = RecvErrorBackoff
	}
	buf := make([]byte, 16)
	for {
		n, err := r.RecvSomeContext(ctx, buf)
		if n > 0 {
			c.Write(buf[:n])
		}
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.recvErrors.Add(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// RecvErrors returns the number of receive errors Pump has seen.
func (c *CommandSource) RecvErrors() uint32 { return c.recvErrors.Load() }

// Counts returns the bytes received and the bytes discarded as unmapped.
func (c *CommandSource) Counts() (received, discarded uint32) {
	return c.received.Load(), c.discarded.Load()
}

func commandEvent(cmd protocol.Command) Event {
	switch cmd {
	case protocol.CmdStart:
		return EventStartTest
	case protocol.CmdAbort:
		return EventAbortTest
	case protocol.CmdComplete:
		return EventTestComplete
	}
	return EventNone
}
