//go:build !tinygo

package core

import "sync"

// irqState is a placeholder for the saved interrupt mask on regular Go.
type irqState uintptr

// On the host, "interrupt handlers" are goroutines. A mutex gives them the
// same mutual exclusion a masked interrupt gives on the MCU.
var irqMu sync.Mutex

// disableInterrupts enters the producer critical section.
func disableInterrupts() irqState {
	irqMu.Lock()
	return 0
}

// restoreInterrupts leaves the producer critical section.
func restoreInterrupts(state irqState) {
	irqMu.Unlock()
}
