package core

// Event identifies one interrupt source of the serial peripheral.
type Event uint8

const (
	EventRxNotEmpty Event = iota // a received byte is waiting
	EventIdle                    // the line went quiet after activity
	EventTxEmpty                 // the transmit register can take a byte
)

func (e Event) String() string {
	switch e {
	case EventRxNotEmpty:
		return "rxne"
	case EventIdle:
		return "idle"
	case EventTxEmpty:
		return "txe"
	default:
		return "unknown"
	}
}

// SerialPort is the abstract serial peripheral the transport drives.
// Target-specific code implements it on top of the hardware registers.
type SerialPort interface {
	// WriteByte blocks until c has been accepted by the transmit half.
	WriteByte(c byte) error

	// ReadByte reads the receive data register.
	ReadByte() (byte, error)

	// RxNotEmpty reports the received-data-pending flag. Interrupts can be
	// latched spuriously, so callers check it before reading.
	RxNotEmpty() bool

	// TxEmpty reports the transmit-register-empty flag.
	TxEmpty() bool

	// IsIdle reports the idle-line pending flag.
	IsIdle() bool

	// ClearIdle clears the idle-line pending flag.
	ClearIdle()

	// Listen enables the interrupt for the given source.
	Listen(ev Event)

	// Unlisten disables the interrupt for the given source.
	Unlisten(ev Event)
}

// portWriter adapts the byte-wise transmit half to io.Writer.
type portWriter struct {
	port SerialPort
}

func (w portWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := w.port.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
