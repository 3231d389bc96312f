package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine(t *testing.T) (*Machine, *recorder, *Diagnostics, *lineLog) {
	t.Helper()
	var r recorder
	var log lineLog
	diag := NewDiagnostics(log.sink, 64)
	m, err := NewMachine(nil, r.actions(), diag, nil)
	require.NoError(t, err)
	return m, &r, diag, &log
}

// machineIn drives m into s through the default table.
func machineIn(t *testing.T, m *Machine, s State) {
	t.Helper()
	path := map[State][]Event{
		StateIdle:     nil,
		StateTesting:  {EventStartTest},
		StateAborting: {EventStartTest, EventAbortTest},
		StateFinished: {EventStartTest, EventTestComplete},
	}
	for _, ev := range path[s] {
		m.Dispatch(ev)
	}
	require.Equal(t, s, m.Current())
}

func TestNewMachineStartsIdle(t *testing.T) {
	m, r, diag, log := newTestMachine(t)
	assert.Equal(t, StateIdle, m.Current())
	assert.Zero(t, r.enters[StateIdle])

	m.Start()
	diag.Drain()
	assert.Equal(t, 1, r.enters[StateIdle])
	assert.Equal(t, []string{"STATE IDLE"}, log.all())
}

func TestNewMachineMissingAction(t *testing.T) {
	var r recorder
	actions := r.actions()
	actions[StateFinished] = nil
	_, err := NewMachine(nil, actions, nil, nil)
	require.ErrorIs(t, err, ErrMissingAction)
}

func TestDispatchEveryPair(t *testing.T) {
	table := DefaultTransitionTable()
	for _, s := range States() {
		for _, ev := range Events() {
			m, r, _, _ := newTestMachine(t)
			machineIn(t, m, s)
			before := r.enters

			out := m.Dispatch(ev)
			next, ok := table.Lookup(s, ev)
			if !ok {
				assert.Equal(t, Ignored, out.Kind, "%s + %s", s, ev)
				assert.Equal(t, s, m.Current())
				assert.Equal(t, before, r.enters, "no action may run on %s + %s", s, ev)
				continue
			}
			assert.Equal(t, Transitioned, out.Kind)
			assert.Equal(t, Outcome{Kind: Transitioned, Event: ev, From: s, To: next}, out)
			assert.Equal(t, next, m.Current())
			assert.Equal(t, before[next]+1, r.enters[next], "%s entered once", next)
		}
	}
}

func TestScenarioStart(t *testing.T) {
	m, r, diag, log := newTestMachine(t)

	out := m.Dispatch(EventStartTest)
	assert.Equal(t, Transitioned, out.Kind)
	assert.Equal(t, StateTesting, m.Current())
	assert.Equal(t, 1, r.enters[StateTesting])
	assert.Equal(t, []State{StateIdle}, r.froms[StateTesting])

	diag.Drain()
	assert.Equal(t, []string{"STATE TESTING"}, log.all())
}

func TestScenarioAbort(t *testing.T) {
	m, r, _, _ := newTestMachine(t)
	machineIn(t, m, StateTesting)

	m.Dispatch(EventAbortTest)
	assert.Equal(t, StateAborting, m.Current())
	assert.Equal(t, 1, r.enters[StateAborting])

	out := m.Dispatch(EventTestComplete)
	assert.Equal(t, Ignored, out.Kind)
	assert.Equal(t, StateAborting, m.Current())
	assert.Zero(t, r.enters[StateFinished])

	m.Dispatch(EventTick)
	assert.Equal(t, StateFinished, m.Current())
	assert.Equal(t, []State{StateAborting}, r.froms[StateFinished])
}

func TestScenarioCompleteIsTerminal(t *testing.T) {
	m, r, _, _ := newTestMachine(t)
	machineIn(t, m, StateTesting)

	m.Dispatch(EventTestComplete)
	require.Equal(t, StateFinished, m.Current())

	for _, ev := range Events() {
		out := m.Dispatch(ev)
		assert.Equal(t, Ignored, out.Kind)
	}
	assert.Equal(t, StateFinished, m.Current())
	assert.Equal(t, 1, r.enters[StateFinished])

	transitions, ignored := m.Counts()
	assert.Equal(t, uint32(2), transitions)
	assert.Equal(t, uint32(len(Events())), ignored)
}

func TestScenarioTickInIdle(t *testing.T) {
	m, r, diag, log := newTestMachine(t)
	m.Start()
	diag.Drain()

	out := m.Dispatch(EventTick)
	assert.Equal(t, Ignored, out.Kind)
	assert.Equal(t, StateIdle, m.Current())
	assert.Equal(t, 1, r.enters[StateIdle])

	diag.Drain()
	assert.Equal(t, []string{"STATE IDLE"}, log.all())
}

func TestVerboseReportsIgnored(t *testing.T) {
	m, _, diag, log := newTestMachine(t)
	diag.SetVerbose(true)

	m.Dispatch(EventAbortTest)
	diag.Drain()
	assert.Equal(t, []string{"ignored abort_test in IDLE"}, log.all())
}

func TestDispatchOutOfRangeIsFatal(t *testing.T) {
	var r recorder
	var log lineLog
	diag := NewDiagnostics(log.sink, 4)
	var halted *FatalError
	m, err := NewMachine(nil, r.actions(), diag, func(err *FatalError) { halted = err })
	require.NoError(t, err)

	diag.Post("before")
	assert.Panics(t, func() { m.Dispatch(Event(99)) })

	require.NotNil(t, halted)
	assert.Equal(t, "event out of range: 99", halted.Reason)
	assert.Equal(t, []string{"before", "fatal: event out of range: 99"}, log.all())
	assert.Equal(t, StateIdle, m.Current())
}

func TestAnnounceDropsWhenBusy(t *testing.T) {
	var r recorder
	var log lineLog
	diag := NewDiagnostics(log.sink, 1)
	m, err := NewMachine(nil, r.actions(), diag, nil)
	require.NoError(t, err)

	m.Dispatch(EventStartTest)
	m.Dispatch(EventTestComplete)
	assert.Equal(t, StateFinished, m.Current())
	assert.Equal(t, uint32(1), diag.Dropped())

	diag.Drain()
	assert.True(t, strings.HasPrefix(log.all()[0], "STATE "))
}
