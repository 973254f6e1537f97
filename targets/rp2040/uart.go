//go:build rp2040

package main

import (
	"camlink/core"
	"camlink/targets/pio"
	"device/rp"
	"machine"
)

// ModemUART is the register-level UART1 peripheral driving the modem. It
// implements core.SerialPort: RXNE and TXE map to the PL011 receive and
// transmit interrupts with the FIFOs disabled (one holding register each
// way), IDLE maps to the PIO idle-line detector watching the RX pin.
type ModemUART struct {
	Bus  *rp.UART0_Type
	Idle *pio.IdleDetector
}

var _ core.SerialPort = (*ModemUART)(nil)

// Configure resets the UART and sets baud rate, 8N1 framing and pins.
// Interrupts stay masked until Listen.
func (u *ModemUART) Configure(baud uint32, tx, rx machine.Pin) error {
	rp.RESETS.RESET.SetBits(rp.RESETS_RESET_UART1)
	rp.RESETS.RESET.ClearBits(rp.RESETS_RESET_UART1)
	for !rp.RESETS.RESET_DONE.HasBits(rp.RESETS_RESET_UART1) {
	}

	u.setBaudRate(baud)

	// 8 data bits, 1 stop bit, no parity; FEN clear keeps the FIFOs off
	u.Bus.UARTLCR_H.Set(3 << rp.UART0_UARTLCR_H_WLEN_Pos)
	u.Bus.UARTIMSC.Set(0)
	u.Bus.UARTCR.SetBits(rp.UART0_UARTCR_UARTEN | rp.UART0_UARTCR_RXE | rp.UART0_UARTCR_TXE)

	tx.Configure(machine.PinConfig{Mode: machine.PinUART})
	rx.Configure(machine.PinConfig{Mode: machine.PinUART})

	return u.Idle.Init(rx, baud)
}

func (u *ModemUART) setBaudRate(br uint32) {
	div := 8 * machine.CPUFrequency() / br
	ibrd := div >> 7
	var fbrd uint32
	switch {
	case ibrd == 0:
		ibrd, fbrd = 1, 0
	case ibrd >= 65535:
		ibrd, fbrd = 65535, 0
	default:
		fbrd = ((div & 0x7f) + 1) / 2
	}
	u.Bus.UARTIBRD.Set(ibrd)
	u.Bus.UARTFBRD.Set(fbrd)
	u.Bus.UARTLCR_H.SetBits(0) // dummy write per PL011 quirk
}

// WriteByte waits for the holding register and writes c.
func (u *ModemUART) WriteByte(c byte) error {
	for u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFF) {
	}
	u.Bus.UARTDR.Set(uint32(c))
	return nil
}

// ReadByte reads the holding register, which also clears the receive
// interrupt. Framing and overrun errors are cleared and the byte kept.
func (u *ModemUART) ReadByte() (byte, error) {
	dr := u.Bus.UARTDR.Get()
	if dr&0xf00 != 0 {
		u.Bus.UARTRSR.Set(0)
	}
	return byte(dr & 0xff), nil
}

func (u *ModemUART) RxNotEmpty() bool {
	return !u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_RXFE)
}

func (u *ModemUART) TxEmpty() bool {
	return !u.Bus.UARTFR.HasBits(rp.UART0_UARTFR_TXFF)
}

func (u *ModemUART) IsIdle() bool {
	return u.Idle.Pending()
}

func (u *ModemUART) ClearIdle() {
	u.Idle.Clear()
}

// Listen unmasks an interrupt source.
func (u *ModemUART) Listen(ev core.Event) {
	switch ev {
	case core.EventRxNotEmpty:
		u.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_RXIM)
	case core.EventTxEmpty:
		u.Bus.UARTIMSC.SetBits(rp.UART0_UARTIMSC_TXIM)
	case core.EventIdle:
		u.Idle.SetInterrupt(true)
	}
}

// Unlisten masks an interrupt source.
func (u *ModemUART) Unlisten(ev core.Event) {
	switch ev {
	case core.EventRxNotEmpty:
		u.Bus.UARTIMSC.ClearBits(rp.UART0_UARTIMSC_RXIM)
	case core.EventTxEmpty:
		u.Bus.UARTIMSC.ClearBits(rp.UART0_UARTIMSC_TXIM)
		u.Bus.UARTICR.Set(rp.UART0_UARTICR_TXIC)
	case core.EventIdle:
		u.Idle.SetInterrupt(false)
	}
}
