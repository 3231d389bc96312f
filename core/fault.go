package core

// HaltFunc stops or resets the system after a fatal error.
// It is not expected to return; if it does, the caller panics.
type HaltFunc func(err *FatalError)

// PanicHalt is the default HaltFunc.
func PanicHalt(err *FatalError) {
	panic(err)
}

// fatal announces reason on the diagnostic channel and halts.
// The worker is stopped and queued lines are flushed first, so the fault is
// the last thing written.
func fatal(diag *Diagnostics, halt HaltFunc, reason string) {
	err := &FatalError{Reason: reason}
	if diag != nil {
		diag.Halt()
		diag.Drain()
		diag.Println(err.Error())
	}
	if halt != nil {
		halt(err)
	}
	panic(err)
}
