package core

import "sync/atomic"

// Handler is the serial interrupt entry point. Each Service call inspects
// the peripheral cause flags and drives the transport: received bytes are
// accumulated (or, in raw mode, passed through a byte channel), outbound
// bytes are written on transmit-empty, and an idle line closes the reply and
// hands it to the application loop through the response channel.
type Handler struct {
	transport *Shared[Transport]
	policy    OverflowPolicy

	// reply mode
	replies *Producer[Reply]
	resync  bool // drop everything up to the next idle line

	// raw mode
	rawRx *Producer[byte]

	outbound *Consumer[byte]

	invocations uint32 // atomic
	dropped     uint32 // atomic
	rxErrors    uint32 // atomic
}

// NewHandler returns a handler that assembles replies and enqueues them.
func NewHandler(transport *Shared[Transport], replies *Producer[Reply]) *Handler {
	return &Handler{
		transport: transport,
		replies:   replies,
	}
}

// NewRawHandler returns a handler that forwards every received byte to rx
// instead of accumulating replies, and transmits bytes queued on tx.
func NewRawHandler(transport *Shared[Transport], rx *Producer[byte], tx *Consumer[byte]) *Handler {
	return &Handler{
		transport: transport,
		rawRx:     rx,
		outbound:  tx,
	}
}

// SetPolicy selects the overflow policy. The default is PolicyShutdown.
func (h *Handler) SetPolicy(p OverflowPolicy) {
	h.policy = p
}

// SetOutbound attaches a queue of bytes written one per transmit-empty
// interrupt.
func (h *Handler) SetOutbound(tx *Consumer[byte]) {
	h.outbound = tx
}

// Invocations returns how many times Service ran.
func (h *Handler) Invocations() uint32 {
	return atomic.LoadUint32(&h.invocations)
}

// Dropped returns how many replies or bytes were discarded under
// PolicyDiscard.
func (h *Handler) Dropped() uint32 {
	return atomic.LoadUint32(&h.dropped)
}

// RxErrors returns how many receive register reads failed.
func (h *Handler) RxErrors() uint32 {
	return atomic.LoadUint32(&h.rxErrors)
}

// Service handles one interrupt. It runs to completion without suspending
// and holds the transport lock for its whole duration.
func (h *Handler) Service() {
	atomic.AddUint32(&h.invocations, 1)
	h.transport.Lock(h.service)
}

func (h *Handler) service(t *Transport) {
	if t.halted {
		return
	}
	port := t.port

	// (1) no re-entrancy from the byte-received source
	port.Unlisten(EventRxNotEmpty)

	// (2)+(3) received byte
	if port.RxNotEmpty() {
		if h.rawRx != nil {
			h.forwardByte(t)
		} else if err := t.IntakeByte(); err == ErrBufferOverflow {
			h.fault(t, err)
		} else if err != nil {
			h.readError(err)
		}
	}

	// (4) transmit register empty
	if h.outbound != nil && !t.halted && port.TxEmpty() {
		if b, ok := h.outbound.Dequeue(); ok {
			if err := port.WriteByte(b); err == nil {
				RecordTrace(EvtTxByte, uint32(b))
			}
		} else {
			port.Unlisten(EventTxEmpty)
		}
	}

	// idle line closes the reply
	if !t.halted && t.IsReplyReady() {
		h.closeReply(t)
	}

	// (5)
	if !t.halted {
		port.Listen(EventRxNotEmpty)
	}
}

func (h *Handler) forwardByte(t *Transport) {
	b, err := t.port.ReadByte()
	if err != nil {
		h.readError(err)
		return
	}
	t.stats.BytesReceived++
	if err := h.rawRx.Enqueue(b); err != nil {
		h.fault(t, err)
	}
}

func (h *Handler) closeReply(t *Transport) {
	if h.rawRx != nil {
		// raw mode has no framing; just acknowledge the idle line
		t.port.ClearIdle()
		return
	}

	r := t.DrainReply()
	if h.resync {
		// the reply lost bytes to an overflow; drop it whole
		h.resync = false
		atomic.AddUint32(&h.dropped, 1)
		return
	}
	if err := h.replies.Enqueue(r); err != nil {
		h.fault(t, err)
		return
	}
	RecordTrace(EvtEnqueue, uint32(h.replies.Len()))
}

// readError reports a failed receive register read. The byte is lost but
// reception continues; only capacity overflows go through the policy.
func (h *Handler) readError(err error) {
	atomic.AddUint32(&h.rxErrors, 1)
	DebugAsync("serial: read: " + err.Error())
}

// fault applies the overflow policy to ErrBufferOverflow or ErrChannelFull.
func (h *Handler) fault(t *Transport, err error) {
	if h.policy == PolicyDiscard {
		if err == ErrBufferOverflow {
			t.DiscardPartial()
			h.resync = true
			return
		}
		atomic.AddUint32(&h.dropped, 1)
		DebugAsync("serial: dropped: " + err.Error())
		return
	}
	t.Halt()
	TryShutdown(err.Error())
}
