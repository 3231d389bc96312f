package core

import (
	"context"
	"sync/atomic"

	"testseq/config"
)

// DefaultQueueCapacity is used when the configuration leaves it unset.
const DefaultQueueCapacity = 16

// EventQueue hands events from the interrupt sources to the main loop.
//
// It is a single-consumer ring: only the main loop calls Poll and Wait.
// Producers are the goroutines that service interrupts (the UART receive
// loop and the tick ticker). Post is serialised against other producers by
// masking interrupts, never blocks on the consumer and never allocates.
// Post signals the wake channel, so it must not be called from a hardware
// interrupt handler itself.
// Indices are monotonic; a slot is written before the release store of the
// write index, so the consumer can never observe a partially written event.
//
// Overflow policy: the newest event is dropped and counted. Tick events are
// coalesced so that at most one is ever queued; ticks therefore cannot crowd
// commands out of the ring.
type EventQueue struct {
	buf  []Event
	mask uint32
	rd   atomic.Uint32 // consumer index
	wr   atomic.Uint32 // producer index

	tickPending atomic.Bool
	wake        chan struct{} // coalesced "not empty" edge

	posted         atomic.Uint32
	polled         atomic.Uint32
	overflows      atomic.Uint32
	ticksCoalesced atomic.Uint32
	ticksDropped   atomic.Uint32
}

// NewEventQueue creates a queue holding capacity events.
// capacity must be a power of two >= 2.
func NewEventQueue(capacity int) (*EventQueue, error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, config.ErrQueueCapacity
	}
	return &EventQueue{
		buf:  make([]Event, capacity),
		mask: uint32(capacity - 1),
		wake: make(chan struct{}, 1),
	}, nil
}

func (q *EventQueue) size() uint32 { return uint32(len(q.buf)) }

// Post enqueues ev from a producer goroutine. Returns false if the event
// was dropped (overflow) or coalesced into an already pending tick.
// EventNone is never queued.
func (q *EventQueue) Post(ev Event) bool {
	if ev == EventNone {
		return false
	}
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if ev == EventTick && !q.tickPending.CompareAndSwap(false, true) {
		q.ticksCoalesced.Add(1)
		return false
	}

	rd := q.rd.Load()
	wr := q.wr.Load()
	if wr-rd >= q.size() {
		if ev == EventTick {
			q.tickPending.Store(false)
			q.ticksDropped.Add(1)
		} else {
			q.overflows.Add(1)
		}
		return false
	}

	q.buf[wr&q.mask] = ev
	q.wr.Store(wr + 1) // release
	q.posted.Add(1)

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Poll removes the oldest event. Main loop only.
func (q *EventQueue) Poll() (Event, bool) {
	rd := q.rd.Load()
	wr := q.wr.Load() // acquire
	if rd == wr {
		return EventNone, false
	}
	ev := q.buf[rd&q.mask]
	q.rd.Store(rd + 1) // release slot to producers
	q.polled.Add(1)
	if ev == EventTick {
		q.tickPending.Store(false)
	}
	return ev, true
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return int(q.wr.Load() - q.rd.Load())
}

// Cap returns the queue capacity.
func (q *EventQueue) Cap() int { return len(q.buf) }

// Wait is the low-power wait of the main loop. It returns at once if events
// are pending, otherwise blocks until a Post or until ctx is done.
// Wakeups may be spurious; callers re-check with Poll.
func (q *EventQueue) Wait(ctx context.Context) error {
	if q.Len() > 0 {
		return nil
	}
	select {
	case <-q.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueStats is a snapshot of the queue counters.
type QueueStats struct {
	Capacity       int
	Pending        int
	Posted         uint32
	Polled         uint32
	Overflows      uint32 // non-tick events lost to a full ring
	TicksCoalesced uint32
	TicksDropped   uint32
}

// Stats returns a consistent snapshot of the counters.
func (q *EventQueue) Stats() QueueStats {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return QueueStats{
		Capacity:       len(q.buf),
		Pending:        q.Len(),
		Posted:         q.posted.Load(),
		Polled:         q.polled.Load(),
		Overflows:      q.overflows.Load(),
		TicksCoalesced: q.ticksCoalesced.Load(),
		TicksDropped:   q.ticksDropped.Load(),
	}
}
