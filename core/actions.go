package core

// Action is the entry behaviour of a state. Enter runs once each time the
// state becomes current; from is the state that was left.
// Enter must return promptly: it runs on the main loop.
type Action interface {
	Enter(from State)
}

// ActionFunc adapts a plain function to Action.
type ActionFunc func(from State)

// Enter implements Action.
func (f ActionFunc) Enter(from State) { f(from) }

// NoAction is an explicit no-op entry action.
var NoAction Action = ActionFunc(func(State) {})

// ActionTable holds exactly one entry action per state.
type ActionTable [numStates]Action

// For returns the entry action of s.
func (t *ActionTable) For(s State) Action {
	return t[s]
}

// Validate fails if any state lacks an action.
func (t *ActionTable) Validate() error {
	for s := State(0); s < numStates; s++ {
		if t[s] == nil {
			return &stateError{err: ErrMissingAction, state: s}
		}
	}
	return nil
}
