package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TraceEvent captures a transport event for post-mortem analysis.
type TraceEvent struct {
	EventType uint8  // Event type code
	Clock     uint32 // System ticks at event
	Value     uint32 // Context-dependent value
}

// Event type codes
const (
	EvtSend     = 1 // command written, value = command length
	EvtByte     = 2 // byte accumulated, value = byte
	EvtIdle     = 3 // idle line, value = reply length
	EvtEnqueue  = 4 // reply enqueued, value = channel length
	EvtOverflow = 5 // buffer or channel overflow
	EvtTimeout  = 6 // reply timeout, value = bytes discarded
	EvtVSync    = 7 // frame sync edge, value = frame count
	EvtTxByte   = 8 // outbound byte written, value = byte
)

const (
	TraceRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = true

	// Trace ring buffer (non-blocking, for post-mortem). Written from
	// interrupt context only, read after a shutdown.
	traceRing     [TraceRingSize]TraceEvent
	traceRingHead uint8
	traceEnabled  bool = true

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, logrus, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// InitAsyncDebug starts the async debug output goroutine
// Call this from main() after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer.
// It may block; interrupt context uses DebugAsync.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Drops the message if the channel is full or async output is not running.
func DebugAsync(msg string) {
	if debugChan != nil && debugEnabled {
		select {
		case debugChan <- msg:
		default:
		}
	}
}

// RecordTrace captures an event in the ring buffer. Allocation free.
func RecordTrace(eventType uint8, value uint32) {
	if !traceEnabled {
		return
	}
	idx := traceRingHead
	traceRing[idx] = TraceEvent{
		EventType: eventType,
		Clock:     GetTime(),
		Value:     value,
	}
	traceRingHead = (idx + 1) % TraceRingSize
}

func traceName(evt uint8) string {
	switch evt {
	case EvtSend:
		return "SEND"
	case EvtByte:
		return "BYTE"
	case EvtIdle:
		return "IDLE"
	case EvtEnqueue:
		return "ENQUEUE"
	case EvtOverflow:
		return "OVERFLOW!"
	case EvtTimeout:
		return "TIMEOUT"
	case EvtVSync:
		return "VSYNC"
	case EvtTxByte:
		return "TX_BYTE"
	default:
		return "UNKNOWN"
	}
}

// DumpTraceRing outputs the trace ring buffer oldest first.
// Call it outside interrupt context, e.g. after a shutdown.
func DumpTraceRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TRACE] === Trace Ring Dump ===")
	start := traceRingHead
	for i := uint8(0); i < TraceRingSize; i++ {
		idx := (start + i) % TraceRingSize
		evt := &traceRing[idx]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		debugPrintln("[TRACE] " + traceName(evt.EventType) +
			" clock=" + utoa(evt.Clock) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[TRACE] === End Dump ===")
}

// ClearTraceRing clears the trace buffer
func ClearTraceRing() {
	for i := range traceRing {
		traceRing[i] = TraceEvent{}
	}
	traceRingHead = 0
}
