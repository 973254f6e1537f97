package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// Edge selects which pin transitions raise an interrupt.
type Edge uint8

const (
	EdgeRising Edge = 1 << iota
	EdgeFalling
)

// PinInterruptDriver is the abstract pin interface used for the image
// sensor's frame synchronization outputs. Platform-specific implementations
// handle the actual hardware.
type PinInterruptDriver interface {
	// ConfigureInputPullDown configures a pin as a digital input with pull-down resistor
	ConfigureInputPullDown(pin GPIOPin) error

	// SetInterrupt calls callback from interrupt context on every matching edge.
	SetInterrupt(pin GPIOPin, edge Edge, callback func(GPIOPin)) error
}
