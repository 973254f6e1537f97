//go:build tinygo

package core

import "runtime/interrupt"

// State is the saved interrupt mask.
type State = interrupt.State

// guard masks every interrupt for the duration of a critical section, which
// raises the caller above the serial interrupt priority.
type guard struct{}

// disableInterrupts disables interrupts and returns the previous state
func (guard) disableInterrupts() State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func (guard) restoreInterrupts(state State) {
	interrupt.Restore(state)
}
