package core

// State is one operating phase of the sequencer.
type State uint8

const (
	StateIdle State = iota
	StateTesting
	StateAborting
	StateFinished

	numStates
)

// Event is a stimulus consumed by the state machine.
// EventNone is the zero value and never has a transition.
type Event uint8

const (
	EventNone Event = iota
	EventStartTest
	EventAbortTest
	EventTestComplete
	EventTick

	numEvents
)

var stateNames = [numStates]string{
	StateIdle:     "IDLE",
	StateTesting:  "TESTING",
	StateAborting: "ABORTING",
	StateFinished: "FINISHED",
}

var eventNames = [numEvents]string{
	EventNone:         "none",
	EventStartTest:    "start_test",
	EventAbortTest:    "abort_test",
	EventTestComplete: "test_complete",
	EventTick:         "tick",
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool { return s < numStates }

func (s State) String() string {
	if !s.Valid() {
		return "STATE(" + utoa(uint32(s)) + ")"
	}
	return stateNames[s]
}

// Valid reports whether e is one of the defined events.
func (e Event) Valid() bool { return e < numEvents }

func (e Event) String() string {
	if !e.Valid() {
		return "event(" + utoa(uint32(e)) + ")"
	}
	return eventNames[e]
}

// States returns every defined state in declaration order.
func States() []State {
	out := make([]State, 0, numStates)
	for s := State(0); s < numStates; s++ {
		out = append(out, s)
	}
	return out
}

// Events returns every defined event in declaration order.
func Events() []Event {
	out := make([]Event, 0, numEvents)
	for e := Event(0); e < numEvents; e++ {
		out = append(out, e)
	}
	return out
}
