package core

// Bridge is the application side of raw mode: received bytes cross the
// interrupt boundary one at a time and are echoed back to the modem.
// Pair it with a Handler created by NewRawHandler.
type Bridge struct {
	transport *Shared[Transport]
	rx        *Consumer[byte]
	tx        *Producer[byte]

	onByte func(byte)
	echoed uint32
}

// NewBridge connects the raw receive queue to the transmit queue.
func NewBridge(transport *Shared[Transport], rx *Consumer[byte], tx *Producer[byte]) *Bridge {
	return &Bridge{transport: transport, rx: rx, tx: tx}
}

// OnByte registers a callback for every byte moved.
func (b *Bridge) OnByte(fn func(byte)) {
	b.onByte = fn
}

// Echoed returns the number of bytes queued for transmission so far.
func (b *Bridge) Echoed() uint32 {
	return b.echoed
}

// Step moves as many received bytes as the transmit queue can take and, if
// any moved, unmasks the transmit-empty interrupt. Bytes that do not fit
// stay in the receive queue for the next step.
func (b *Bridge) Step() int {
	moved := 0
	for b.tx.Ready() {
		c, ok := b.rx.Dequeue()
		if !ok {
			break
		}
		if b.onByte != nil {
			b.onByte(c)
		}
		_ = b.tx.Enqueue(c) // cannot fail: Ready was checked by the only producer
		moved++
	}
	if moved > 0 {
		b.echoed += uint32(moved)
		b.transport.Lock(func(t *Transport) {
			t.EnableTransmitInterrupt()
		})
	}
	return moved
}
