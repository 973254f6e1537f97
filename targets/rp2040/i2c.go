//go:build rp2040

package main

import (
	"machine"
	"sync"

	"tinygo.org/x/drivers"
)

// Sensor control bus: I2C0 on SDA=GP4, SCL=GP5 at 100kHz (SCCB speed)
const sensorBusFrequency = 100 * machine.KHz

// RPI2CBus serializes transactions on one machine.I2C. It satisfies
// drivers.I2C so TinyGo drivers and the sensor package can use it.
type RPI2CBus struct {
	mu  sync.Mutex
	i2c *machine.I2C
}

var _ drivers.I2C = (*RPI2CBus)(nil)

// NewRPI2CBus configures i2c and wraps it.
func NewRPI2CBus(i2c *machine.I2C, sda, scl machine.Pin, frequencyHz uint32) (*RPI2CBus, error) {
	err := i2c.Configure(machine.I2CConfig{
		Frequency: frequencyHz,
		SDA:       sda,
		SCL:       scl,
	})
	if err != nil {
		return nil, err
	}
	return &RPI2CBus{i2c: i2c}, nil
}

// Tx performs one transaction: write w, then read into r with a repeated
// start in between. Either may be empty.
func (b *RPI2CBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.i2c.Tx(addr, w, r)
}
