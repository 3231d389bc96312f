package core

import "sync/atomic"

// OutcomeKind tells whether a dispatched event moved the machine.
type OutcomeKind uint8

const (
	Ignored OutcomeKind = iota
	Transitioned
)

func (k OutcomeKind) String() string {
	if k == Transitioned {
		return "transitioned"
	}
	return "ignored"
}

// Outcome is the result of one Dispatch call.
type Outcome struct {
	Kind  OutcomeKind
	Event Event
	From  State
	To    State
}

// Machine is the sequencer state machine.
// It is owned by the main loop: Dispatch is the only writer of the current
// state and must never be called from interrupt context. Current may be read
// from anywhere.
type Machine struct {
	table   *TransitionTable
	actions ActionTable
	current atomic.Uint32
	diag    *Diagnostics
	halt    HaltFunc

	transitions atomic.Uint32
	ignored     atomic.Uint32
}

// NewMachine builds a machine in StateIdle. A nil table selects the default
// sequencer matrix. Every state must have an action.
func NewMachine(table *TransitionTable, actions ActionTable, diag *Diagnostics, halt HaltFunc) (*Machine, error) {
	if table == nil {
		table = DefaultTransitionTable()
	}
	if err := actions.Validate(); err != nil {
		return nil, err
	}
	if halt == nil {
		halt = PanicHalt
	}
	m := &Machine{
		table:   table,
		actions: actions,
		diag:    diag,
		halt:    halt,
	}
	m.current.Store(uint32(StateIdle))
	return m, nil
}

// Current returns the current state.
func (m *Machine) Current() State { return State(m.current.Load()) }

// Table returns the machine's transition table.
func (m *Machine) Table() *TransitionTable { return m.table }

// Start runs the entry action of the initial state. It is called once at
// boot, before the first Dispatch.
func (m *Machine) Start() {
	s := m.Current()
	m.actions.For(s).Enter(s)
	m.announce(s)
}

// Dispatch feeds one event to the machine.
//
// Without a matching row the event is ignored and nothing else happens.
// With a match the target state's entry action runs exactly once, the new
// state is committed, and the transition is announced on the diagnostic
// channel (dropped if the channel is busy).
func (m *Machine) Dispatch(ev Event) Outcome {
	if !ev.Valid() {
		fatal(m.diag, m.halt, "event out of range: "+utoa(uint32(ev)))
	}
	from := m.Current()
	if !from.Valid() {
		fatal(m.diag, m.halt, "state out of range: "+utoa(uint32(from)))
	}

	next, ok := m.table.Lookup(from, ev)
	if !ok {
		m.ignored.Add(1)
		if m.diag != nil && m.diag.Verbose() {
			m.diag.Post("ignored " + ev.String() + " in " + from.String())
		}
		return Outcome{Kind: Ignored, Event: ev, From: from, To: from}
	}

	m.actions.For(next).Enter(from)
	m.current.Store(uint32(next))
	m.transitions.Add(1)
	m.announce(next)
	return Outcome{Kind: Transitioned, Event: ev, From: from, To: next}
}

func (m *Machine) announce(s State) {
	if m.diag != nil {
		m.diag.Post("STATE " + s.String())
	}
}

// Counts returns the number of transitions taken and events ignored.
func (m *Machine) Counts() (transitions, ignored uint32) {
	return m.transitions.Load(), m.ignored.Load()
}
