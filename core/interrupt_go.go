//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// guard excludes the simulated interrupt goroutines on regular Go, where
// "interrupts" are ordinary goroutines calling Handler.Service.
type guard struct {
	mu sync.Mutex
}

// disableInterrupts enters the critical section.
func (g *guard) disableInterrupts() State {
	g.mu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section.
func (g *guard) restoreInterrupts(state State) {
	g.mu.Unlock()
}
