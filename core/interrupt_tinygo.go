//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts enters the producer critical section by masking
// interrupts, so the tick and command sources never interleave a Post.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts leaves the producer critical section.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
