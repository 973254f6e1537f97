package core

import "errors"

var (
	// ErrTransportWrite is matched by every error returned from a failed
	// command write to the transmit half.
	ErrTransportWrite = errors.New("transport write failed")

	// ErrBufferOverflow is returned when a byte arrives while the
	// accumulation buffer already holds ReplyCapacity bytes.
	ErrBufferOverflow = errors.New("accumulation buffer overflow")

	// ErrChannelFull is returned when every response channel slot is occupied.
	ErrChannelFull = errors.New("response channel full")

	// ErrReplyTimeout is returned by CheckTimeout when a reply did not
	// complete within the configured timeout.
	ErrReplyTimeout = errors.New("reply timeout")

	// ErrShutdown is returned by operations refused after a fatal fault.
	ErrShutdown = errors.New("firmware shutdown")
)

// TransportWriteError wraps the error reported by the transmit half.
type TransportWriteError struct {
	Err error
}

func (e *TransportWriteError) Error() string {
	return "transport write: " + e.Err.Error()
}

func (e *TransportWriteError) Unwrap() error { return e.Err }

// Is reports true for ErrTransportWrite so callers can match the kind
// without caring about the underlying cause.
func (e *TransportWriteError) Is(target error) bool {
	return target == ErrTransportWrite
}
