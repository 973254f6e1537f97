// Package sensor talks to the OV2640 image sensor over its SCCB register
// bus. SCCB is I2C-compatible for single register transactions, so any
// drivers.I2C (notably machine.I2C) works as the bus.
package sensor

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Address is the 7-bit bus address (0x60 in 8-bit write notation).
const Address = 0x60 >> 1

// Registers
const (
	RegBankSelect = 0xFF
	RegCtrl0      = 0xC2 // bank 0
	RegPIDH       = 0x0A // bank 1
	RegPIDL       = 0x0B // bank 1
	RegCOM2       = 0x09 // bank 1
	RegCOM8       = 0x13 // bank 1
)

// Register values
const (
	PIDHValue = 0x26
	PIDLValue = 0x42

	Bank0 = 0x00
	Bank1 = 0x01

	Ctrl0YUV422 = 0x08
	Ctrl0YUVEn  = 0x04

	COM2CapabilityX2 = 0x02

	COM8Exposure = 0x01
	COM8AGC      = 0x04
)

// ErrUnknownChip is returned by Verify when the product ID does not match.
var ErrUnknownChip = errors.New("sensor: unknown chip")

// BusError wraps a failed bus transaction.
type BusError struct {
	Op       string // "read" or "write"
	Register uint8
	Err      error
}

func (e *BusError) Error() string {
	return "sensor: bus " + e.Op + " of register 0x" + hex8(e.Register) + ": " + e.Err.Error()
}

func (e *BusError) Unwrap() error { return e.Err }

// RegisterWrite is one step of an initialization sequence.
type RegisterWrite struct {
	Register uint8
	Value    uint8
}

// initSequence selects YUV422 output and enables exposure and gain control.
var initSequence = []RegisterWrite{
	{RegBankSelect, Bank0},
	{0x2C, 0xFF},
	{0x2E, 0xDF},
	{RegCtrl0, Ctrl0YUVEn | Ctrl0YUV422},
	{RegBankSelect, Bank1},
	{RegCOM2, COM2CapabilityX2},
	{RegCOM8, COM8Exposure | COM8AGC},
}

// Device is an OV2640 on a register bus.
type Device struct {
	bus     drivers.I2C
	Address uint16
}

// New returns a device at the default address. The bus must already be
// configured.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Verify reads the two product ID registers and fails with ErrUnknownChip
// unless they hold the expected values.
func (d *Device) Verify() error {
	pidh, err := d.ReadRegister(RegPIDH)
	if err != nil {
		return err
	}
	pidl, err := d.ReadRegister(RegPIDL)
	if err != nil {
		return err
	}
	if pidh != PIDHValue || pidl != PIDLValue {
		return ErrUnknownChip
	}
	return nil
}

// Init writes the fixed register sequence. The first failing write aborts
// the rest.
func (d *Device) Init() error {
	return d.WriteSequence(initSequence)
}

// WriteSequence writes each register in order, stopping at the first error.
func (d *Device) WriteSequence(seq []RegisterWrite) error {
	for _, w := range seq {
		if err := d.WriteRegister(w.Register, w.Value); err != nil {
			return err
		}
	}
	return nil
}

// WriteRegister writes the register address followed by the value.
func (d *Device) WriteRegister(reg, val uint8) error {
	if err := d.bus.Tx(d.Address, []byte{reg, val}, nil); err != nil {
		return &BusError{Op: "write", Register: reg, Err: err}
	}
	return nil
}

// ReadRegister writes the register address and reads back one byte.
func (d *Device) ReadRegister(reg uint8) (uint8, error) {
	var buf [1]byte
	if err := d.bus.Tx(d.Address, []byte{reg}, buf[:]); err != nil {
		return 0, &BusError{Op: "read", Register: reg, Err: err}
	}
	return buf[0], nil
}

func hex8(b uint8) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xF]})
}
