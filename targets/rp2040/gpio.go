//go:build rp2040

package main

import (
	"camlink/core"
	"errors"
	"machine"
)

// RPGPIODriver implements core.PinInterruptDriver for the RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	// Check if already configured
	if _, exists := d.configuredPins[pin]; exists {
		// Already configured, this is OK
		return nil
	}

	machinePin, err := d.pinNumberToMachinePin(pin)
	if err != nil {
		return err
	}

	// Configure as input with pull-down resistor
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})

	// Track configured pin
	d.configuredPins[pin] = machinePin

	return nil
}

// SetInterrupt installs callback for the given edges. The callback runs in
// interrupt context.
func (d *RPGPIODriver) SetInterrupt(pin core.GPIOPin, edge core.Edge, callback func(core.GPIOPin)) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return errors.New("gpio: pin not configured")
	}

	var change machine.PinChange
	if edge&core.EdgeRising != 0 {
		change |= machine.PinRising
	}
	if edge&core.EdgeFalling != 0 {
		change |= machine.PinFalling
	}

	return machinePin.SetInterrupt(change, func(machine.Pin) {
		callback(pin)
	})
}

// pinNumberToMachinePin maps a GPIO number to a machine.Pin
// RP2040 has GPIO0-GPIO29
func (d *RPGPIODriver) pinNumberToMachinePin(pin core.GPIOPin) (machine.Pin, error) {
	if pin > 29 {
		return machine.NoPin, errors.New("gpio: invalid pin")
	}
	return machine.Pin(pin), nil
}
