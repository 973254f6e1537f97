package serial

import (
	"io"
	"time"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the modem link
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int

	// IdleTime is the quiet interval after which the line counts as idle.
	IdleTime time.Duration
}

// DefaultConfig returns the configuration for an ESP-01 modem at 115200 8N1
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 10,
		IdleTime:    IdleTimeFor(115200),
	}
}

// IdleTimeFor returns the quiet interval used for idle detection at a baud
// rate: two character times (10 bits each at 8N1), at least 2ms so host
// scheduling jitter inside one reply does not split it.
func IdleTimeFor(baud int) time.Duration {
	if baud <= 0 {
		return 2 * time.Millisecond
	}
	t := 2 * 10 * time.Second / time.Duration(baud)
	if t < 2*time.Millisecond {
		t = 2 * time.Millisecond
	}
	return t
}
