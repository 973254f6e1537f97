//go:build rp2040

package main

// ModeConfig determines which mode to run
type ModeConfig struct {
	// Bridge runs the raw byte echo loop instead of the command/reply
	// loop. Useful to check the modem wiring with a terminal on USB.
	Bridge bool
}

// GetMode returns the current mode configuration
// This can be modified at compile time or runtime
func GetMode() ModeConfig {
	return ModeConfig{
		Bridge: false,
	}
}
