package core

// Shared owns a resource used by both the application loop and interrupt
// context. All access goes through Lock, a priority-ceiling critical section:
// on the microcontroller it masks interrupts, on regular Go it is a mutex.
//
// Lock calls must not be nested on the same Shared value.
type Shared[T any] struct {
	guard guard
	res   *T
}

// NewShared wraps res. The caller must not keep other references to it.
func NewShared[T any](res *T) *Shared[T] {
	return &Shared[T]{res: res}
}

// Lock runs fn with exclusive access to the resource.
func (s *Shared[T]) Lock(fn func(*T)) {
	state := s.guard.disableInterrupts()
	defer s.guard.restoreInterrupts(state)
	fn(s.res)
}
