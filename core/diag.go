package core

import (
	"context"
	"sync"
	"sync/atomic"

	"tinygo.org/x/drivers"
)

// LineSink writes one diagnostic line to the outside world. It may block.
type LineSink func(line string)

// DefaultDiagDepth is the number of lines Diagnostics buffers before dropping.
const DefaultDiagDepth = 16

// Diagnostics is the firmware's only observability channel.
// Post is safe on the dispatch path: it never blocks and drops the line when
// the buffer is full. Println is synchronous and reserved for the fatal path.
// Sink calls are serialised; after Halt the worker writes nothing more.
type Diagnostics struct {
	mu     sync.Mutex // held for every sink call
	sink   LineSink
	halted bool

	ch      chan string
	dropped atomic.Uint32
	verbose atomic.Bool
}

// NewDiagnostics creates a buffered diagnostic channel in front of sink.
func NewDiagnostics(sink LineSink, depth int) *Diagnostics {
	if depth <= 0 {
		depth = DefaultDiagDepth
	}
	if sink == nil {
		sink = func(string) {}
	}
	return &Diagnostics{sink: sink, ch: make(chan string, depth)}
}

// SetVerbose enables lines that are normally suppressed (ignored events).
func (d *Diagnostics) SetVerbose(enabled bool) { d.verbose.Store(enabled) }

// Verbose reports whether verbose output is enabled.
func (d *Diagnostics) Verbose() bool { return d.verbose.Load() }

// Post queues a line for the worker. Returns false if the line was dropped.
func (d *Diagnostics) Post(line string) bool {
	select {
	case d.ch <- line:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Println writes a line synchronously, bypassing the buffer.
func (d *Diagnostics) Println(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sink(line)
}

// Run drains queued lines into the sink until ctx is done or Halt is called.
func (d *Diagnostics) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case line := <-d.ch:
			if !d.workerWrite(line) {
				return
			}
		}
	}
}

func (d *Diagnostics) workerWrite(line string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		d.dropped.Add(1)
		return false
	}
	d.sink(line)
	return true
}

// Halt stops the worker. It returns once any line the worker is writing has
// reached the sink; queued lines stay queued for Drain.
func (d *Diagnostics) Halt() {
	d.mu.Lock()
	d.halted = true
	d.mu.Unlock()
}

// Drain writes every queued line synchronously and returns how many it wrote.
func (d *Diagnostics) Drain() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for {
		select {
		case line := <-d.ch:
			d.sink(line)
			n++
		default:
			return n
		}
	}
}

// Dropped returns the number of lines lost to a full buffer.
func (d *Diagnostics) Dropped() uint32 { return d.dropped.Load() }

var crlf = []byte("\r\n")

// UARTSink writes CRLF terminated lines to a serial port.
// Write errors are ignored; diagnostics are best effort.
func UARTSink(u drivers.UART) LineSink {
	return func(line string) {
		_, _ = u.Write([]byte(line))
		_, _ = u.Write(crlf)
	}
}
