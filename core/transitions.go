package core

// Transition is one row of the state transition matrix.
type Transition struct {
	From  State
	Event Event
	To    State
}

func (t Transition) String() string {
	return t.From.String() + " --" + t.Event.String() + "--> " + t.To.String()
}

// defaultTransitions is the sequencer's transition matrix.
// A (state, event) pair without a row is ignored by the dispatcher.
var defaultTransitions = [...]Transition{
	{StateIdle, EventStartTest, StateTesting},
	{StateTesting, EventAbortTest, StateAborting},
	{StateTesting, EventTestComplete, StateFinished},
	// Abort settles on the next tick.
	{StateAborting, EventTick, StateFinished},
}

// TransitionTable is a validated, dense lookup form of a transition matrix.
// Each cell holds the next state plus one; zero means no transition.
type TransitionTable struct {
	cells [numStates][numEvents]uint8
	rows  []Transition
}

// NewTransitionTable validates rows and compiles them for O(1) lookup.
// Rows must reference defined states and events, and no (From, Event)
// pair may appear twice.
func NewTransitionTable(rows ...Transition) (*TransitionTable, error) {
	t := &TransitionTable{rows: make([]Transition, 0, len(rows))}
	for _, row := range rows {
		if !row.From.Valid() || !row.To.Valid() {
			return nil, &tableError{err: ErrUnknownState, row: row}
		}
		if !row.Event.Valid() || row.Event == EventNone {
			return nil, &tableError{err: ErrUnknownEvent, row: row}
		}
		if t.cells[row.From][row.Event] != 0 {
			return nil, &tableError{err: ErrDuplicateTransition, row: row}
		}
		t.cells[row.From][row.Event] = uint8(row.To) + 1
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// DefaultTransitionTable returns the compiled sequencer matrix.
func DefaultTransitionTable() *TransitionTable {
	return defaultTable
}

// DefaultTransitions returns a copy of the sequencer's rows.
func DefaultTransitions() []Transition {
	out := make([]Transition, len(defaultTransitions))
	copy(out, defaultTransitions[:])
	return out
}

var defaultTable = mustTransitionTable(defaultTransitions[:]...)

func mustTransitionTable(rows ...Transition) *TransitionTable {
	t, err := NewTransitionTable(rows...)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// Lookup returns the target state for (from, ev).
// Out-of-range inputs are the caller's responsibility and report no match.
func (t *TransitionTable) Lookup(from State, ev Event) (State, bool) {
	if !from.Valid() || !ev.Valid() {
		return from, false
	}
	cell := t.cells[from][ev]
	if cell == 0 {
		return from, false
	}
	return State(cell - 1), true
}

// Rows returns the rows in declaration order.
func (t *TransitionTable) Rows() []Transition {
	out := make([]Transition, len(t.rows))
	copy(out, t.rows)
	return out
}

// Terminal reports whether s has no outgoing transitions.
func (t *TransitionTable) Terminal(s State) bool {
	if !s.Valid() {
		return false
	}
	for _, cell := range t.cells[s] {
		if cell != 0 {
			return false
		}
	}
	return true
}
