package core

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testseq/config"
)

func newQueue(t *testing.T, capacity int) *EventQueue {
	t.Helper()
	q, err := NewEventQueue(capacity)
	require.NoError(t, err)
	return q
}

func TestNewEventQueueCapacity(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 3, 6, 12} {
		_, err := NewEventQueue(n)
		assert.ErrorIs(t, err, config.ErrQueueCapacity, "capacity %d", n)
	}
	q := newQueue(t, 8)
	assert.Equal(t, 8, q.Cap())
}

func TestQueueFIFO(t *testing.T) {
	q := newQueue(t, 8)
	commands := []Event{EventStartTest, EventAbortTest, EventTestComplete}

	var posted []Event
	for i := 0; i < q.Cap(); i++ {
		ev := commands[i%len(commands)]
		require.True(t, q.Post(ev))
		posted = append(posted, ev)
	}
	assert.Equal(t, 8, q.Len())

	var polled []Event
	for {
		ev, ok := q.Poll()
		if !ok {
			break
		}
		polled = append(polled, ev)
	}
	assert.Equal(t, posted, polled)

	ev, ok := q.Poll()
	assert.False(t, ok)
	assert.Equal(t, EventNone, ev)
}

func TestQueueRejectsNoEvent(t *testing.T) {
	q := newQueue(t, 4)
	assert.False(t, q.Post(EventNone))
	assert.Equal(t, 0, q.Len())
	assert.Zero(t, q.Stats().Posted)
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	q := newQueue(t, 4)
	for i := 0; i < 4; i++ {
		require.True(t, q.Post(EventStartTest))
	}
	assert.False(t, q.Post(EventAbortTest))
	assert.False(t, q.Post(EventAbortTest))

	st := q.Stats()
	assert.Equal(t, uint32(2), st.Overflows)
	assert.Equal(t, uint32(4), st.Posted)
	assert.Equal(t, 4, st.Pending)

	for i := 0; i < 4; i++ {
		ev, ok := q.Poll()
		require.True(t, ok)
		assert.Equal(t, EventStartTest, ev)
	}
	_, ok := q.Poll()
	assert.False(t, ok)
}

func TestQueueCoalescesTicks(t *testing.T) {
	q := newQueue(t, 4)
	require.True(t, q.Post(EventTick))
	assert.False(t, q.Post(EventTick))
	require.True(t, q.Post(EventStartTest))
	assert.False(t, q.Post(EventTick))

	st := q.Stats()
	assert.Equal(t, uint32(2), st.TicksCoalesced)
	assert.Zero(t, st.Overflows)

	ev, _ := q.Poll()
	assert.Equal(t, EventTick, ev)
	// the pending tick was consumed, a new one is accepted
	require.True(t, q.Post(EventTick))

	ev, _ = q.Poll()
	assert.Equal(t, EventStartTest, ev)
	ev, _ = q.Poll()
	assert.Equal(t, EventTick, ev)
}

func TestQueueTickDroppedWhenFull(t *testing.T) {
	q := newQueue(t, 2)
	require.True(t, q.Post(EventStartTest))
	require.True(t, q.Post(EventAbortTest))
	assert.False(t, q.Post(EventTick))

	st := q.Stats()
	assert.Equal(t, uint32(1), st.TicksDropped)
	assert.Zero(t, st.Overflows, "a lost tick is not a lost command")

	q.Poll()
	require.True(t, q.Post(EventTick))
}

func TestQueueWait(t *testing.T) {
	q := newQueue(t, 4)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Wait(ctx), context.DeadlineExceeded)

	q.Post(EventStartTest)
	require.NoError(t, q.Wait(context.Background()))
	q.Poll()
	// discard the stale wake token
	select {
	case <-q.wake:
	default:
	}

	done := make(chan error, 1)
	go func() { done <- q.Wait(context.Background()) }()
	time.Sleep(10 * time.Millisecond)
	q.Post(EventAbortTest)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake on Post")
	}
	ev, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, EventAbortTest, ev)
}

// A single producer racing the consumer must deliver every event intact and
// in order.
func TestQueueConcurrentSPSC(t *testing.T) {
	const n = 20000
	q := newQueue(t, 8)
	seq := func(i int) Event { return Event(1 + i%3) }

	go func() {
		for i := 0; i < n; {
			if q.Post(seq(i)) {
				i++
			} else {
				runtime.Gosched()
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for i := 0; i < n; {
		ev, ok := q.Poll()
		if !ok {
			require.NoError(t, q.Wait(ctx))
			continue
		}
		require.True(t, ev.Valid(), "torn event %d", ev)
		require.Equal(t, seq(i), ev, "event %d", i)
		i++
	}
}

// Tick and command producers share the queue; nothing is lost without
// being counted.
func TestQueueConcurrentProducersAccounting(t *testing.T) {
	const perProducer = 5000
	q := newQueue(t, 16)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < perProducer; i++ {
			q.Post(EventTick)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < perProducer; i++ {
			q.Post(EventStartTest)
		}
	}()

	stop := make(chan struct{})
	polled := make(chan int)
	go func() {
		count := 0
		for {
			if _, ok := q.Poll(); ok {
				count++
				continue
			}
			select {
			case <-stop:
				for {
					if _, ok := q.Poll(); !ok {
						polled <- count
						return
					}
					count++
				}
			default:
				runtime.Gosched()
			}
		}
	}()

	wg.Wait()
	close(stop)
	count := <-polled

	st := q.Stats()
	assert.Equal(t, uint32(count), st.Posted)
	assert.Equal(t, uint32(count), st.Polled)
	assert.Equal(t, uint32(2*perProducer), st.Posted+st.Overflows+st.TicksCoalesced+st.TicksDropped)
}
