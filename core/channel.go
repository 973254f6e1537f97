package core

import "sync/atomic"

// ring is a fixed-capacity single-producer/single-consumer queue.
// head is only written by the producer and tail only by the consumer, so
// neither side needs a lock. Both are free-running counters; the capacity is
// a power of two so counter wrap-around keeps slot indices consistent.
type ring[T any] struct {
	slots []T
	mask  uint32
	head  uint32 // atomic, producer-owned
	tail  uint32 // atomic, consumer-owned
}

// Producer is the enqueue half of a response channel. It is meant to be
// owned by interrupt context.
type Producer[T any] struct {
	r *ring[T]
}

// Consumer is the dequeue half of a response channel. It is meant to be
// owned by the application loop.
type Consumer[T any] struct {
	r *ring[T]
}

// NewResponseChannel creates a channel with the given number of slots and
// returns its two halves. capacity must be a power of two.
func NewResponseChannel[T any](capacity int) (*Producer[T], *Consumer[T]) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("response channel capacity must be a power of two")
	}
	r := &ring[T]{
		slots: make([]T, capacity),
		mask:  uint32(capacity - 1),
	}
	return &Producer[T]{r: r}, &Consumer[T]{r: r}
}

func (r *ring[T]) used() uint32 {
	return atomic.LoadUint32(&r.head) - atomic.LoadUint32(&r.tail)
}

// Enqueue stores v in the next free slot. On a full channel it returns
// ErrChannelFull and leaves every stored value untouched.
func (p *Producer[T]) Enqueue(v T) error {
	head := atomic.LoadUint32(&p.r.head)
	if head-atomic.LoadUint32(&p.r.tail) == uint32(len(p.r.slots)) {
		return ErrChannelFull
	}
	p.r.slots[head&p.r.mask] = v          // 1) write data
	atomic.StoreUint32(&p.r.head, head+1) // 2) publish
	return nil
}

// Ready reports whether at least one slot is free.
func (p *Producer[T]) Ready() bool {
	return p.r.used() < uint32(len(p.r.slots))
}

// Len returns the number of queued values.
func (p *Producer[T]) Len() int {
	return int(p.r.used())
}

// Cap returns the number of slots.
func (p *Producer[T]) Cap() int {
	return len(p.r.slots)
}

// Dequeue returns the oldest value, or false when the channel is empty.
// It never blocks.
func (c *Consumer[T]) Dequeue() (T, bool) {
	var zero T
	tail := atomic.LoadUint32(&c.r.tail)
	if atomic.LoadUint32(&c.r.head) == tail {
		return zero, false
	}
	idx := tail & c.r.mask
	v := c.r.slots[idx]
	c.r.slots[idx] = zero                 // 1) release slot contents
	atomic.StoreUint32(&c.r.tail, tail+1) // 2) publish consumption
	return v, true
}

// Len returns the number of queued values.
func (c *Consumer[T]) Len() int {
	return int(c.r.used())
}

// Cap returns the number of slots.
func (c *Consumer[T]) Cap() int {
	return len(c.r.slots)
}
