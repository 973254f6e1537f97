package core

// TransportState is the per-transport reply state machine.
type TransportState uint8

const (
	// StateIdle means no command is outstanding.
	StateIdle TransportState = iota
	// StateAwaitingReply means a command was sent and the idle line that
	// closes its reply has not been seen yet.
	StateAwaitingReply
)

func (s TransportState) String() string {
	if s == StateAwaitingReply {
		return "awaiting-reply"
	}
	return "idle"
}

// TransportStats are running counters kept by the transport.
type TransportStats struct {
	CommandsSent   uint32
	BytesReceived  uint32
	RepliesDrained uint32
	Overflows      uint32
	Timeouts       uint32
}

// Transport drives the modem serial link: it writes commands to the transmit
// half and accumulates the reply from the receive half until the line idles.
//
// A Transport is shared between the application loop and the receive
// interrupt handler and must only be touched inside Shared.Lock.
type Transport struct {
	port  SerialPort
	rx    AccumulationBuffer
	state TransportState

	sentAt       uint32 // ticks at the last SendCommand
	replyTimeout uint32 // ticks; 0 disables the timeout
	halted       bool

	stats TransportStats
}

// NewTransport creates a transport over a configured serial peripheral.
func NewTransport(port SerialPort) *Transport {
	return &Transport{port: port}
}

// suspend disables one interrupt source and returns the function that
// enables it again. Use as `defer t.suspend(ev)()` so every exit path
// restores the source. A halted transport stays silent.
func (t *Transport) suspend(ev Event) func() {
	t.port.Unlisten(ev)
	return func() {
		if !t.halted {
			t.port.Listen(ev)
		}
	}
}

// SendCommand writes the command name, the payload if present and the line
// terminator, then enables the byte-received interrupt so the reply is
// captured. Write failures are returned as *TransportWriteError and are not
// retried.
func (t *Transport) SendCommand(cmd Command) error {
	if t.halted {
		return ErrShutdown
	}
	if _, err := cmd.WriteTo(portWriter{port: t.port}); err != nil {
		return err
	}
	t.port.Listen(EventRxNotEmpty)

	t.state = StateAwaitingReply
	t.sentAt = GetTime()
	t.stats.CommandsSent++
	RecordTrace(EvtSend, uint32(cmd.Len()))
	return nil
}

// IntakeByte moves at most one received byte into the accumulation buffer.
// It is called from interrupt context and never blocks. A spuriously latched
// interrupt with no byte pending is a no-op. When the buffer is full the byte
// is consumed from the peripheral, ErrBufferOverflow is returned and the
// buffer keeps its contents.
func (t *Transport) IntakeByte() error {
	defer t.suspend(EventRxNotEmpty)()

	if !t.port.RxNotEmpty() {
		return nil
	}
	b, err := t.port.ReadByte()
	if err != nil {
		return err
	}
	if err := t.rx.Append(b); err != nil {
		t.stats.Overflows++
		RecordTrace(EvtOverflow, uint32(t.rx.Len()))
		return err
	}
	t.stats.BytesReceived++
	RecordTrace(EvtByte, uint32(b))
	return nil
}

// DrainReply converts the whole accumulation buffer into a Reply, clears the
// buffer and the idle-pending flag, and returns the transport to StateIdle.
// It is the only place where the buffer is reset after a complete reply.
func (t *Transport) DrainReply() Reply {
	defer t.suspend(EventIdle)()

	r := t.rx.Reply()
	t.rx.Reset()
	t.port.ClearIdle()

	t.state = StateIdle
	t.stats.RepliesDrained++
	RecordTrace(EvtIdle, uint32(r.Len()))
	return r
}

// IsReplyReady reports whether the peripheral signaled the idle condition
// since the last drain.
func (t *Transport) IsReplyReady() bool {
	return t.port.IsIdle()
}

// Buffered returns the number of bytes accumulated for the current reply.
func (t *Transport) Buffered() int {
	return t.rx.Len()
}

// State returns the reply state.
func (t *Transport) State() TransportState {
	return t.state
}

// Stats returns a copy of the counters.
func (t *Transport) Stats() TransportStats {
	return t.stats
}

// SetReplyTimeout sets how many ticks a reply may take before CheckTimeout
// abandons it. Zero, the default, waits forever.
func (t *Transport) SetReplyTimeout(ticks uint32) {
	t.replyTimeout = ticks
}

// CheckTimeout abandons the outstanding reply when the timeout is enabled
// and has elapsed at now. The partial reply is discarded and ErrReplyTimeout
// returned. It is a no-op while no reply is outstanding.
func (t *Transport) CheckTimeout(now uint32) error {
	if t.replyTimeout == 0 || t.state != StateAwaitingReply {
		return nil
	}
	if now-t.sentAt < t.replyTimeout {
		return nil
	}
	RecordTrace(EvtTimeout, uint32(t.rx.Len()))
	t.rx.Reset()
	t.state = StateIdle
	t.stats.Timeouts++
	return ErrReplyTimeout
}

// DiscardPartial drops the bytes accumulated so far without producing a
// reply. The state machine keeps waiting for the idle line.
func (t *Transport) DiscardPartial() {
	t.rx.Reset()
}

// EnableTransmitInterrupt unmasks the transmit-empty interrupt so the
// handler starts moving outbound bytes.
func (t *Transport) EnableTransmitInterrupt() {
	if !t.halted {
		t.port.Listen(EventTxEmpty)
	}
}

// Halt masks every interrupt source and refuses further commands.
func (t *Transport) Halt() {
	t.halted = true
	t.port.Unlisten(EventRxNotEmpty)
	t.port.Unlisten(EventIdle)
	t.port.Unlisten(EventTxEmpty)
}

// Halted reports whether Halt was called.
func (t *Transport) Halted() bool {
	return t.halted
}

// Resume undoes Halt and re-enables reception.
func (t *Transport) Resume() {
	t.halted = false
	t.rx.Reset()
	t.state = StateIdle
	t.port.ClearIdle()
	t.port.Listen(EventRxNotEmpty)
	t.port.Listen(EventIdle)
}
