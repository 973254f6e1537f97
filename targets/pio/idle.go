//go:build rp2040

// Package pio runs the serial idle-line detector on an RP2040 PIO state
// machine. The PL011 UART has no idle-line interrupt, so a state machine
// watches the RX pin and pushes a word into its RX FIFO once the line has
// stayed high for a full quiet interval after any activity.
package pio

import (
	"device/rp"
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

var errNoStateMachine = errors.New("pio: no free state machine")

// Program flow:
//  1. Spin while the line idles high
//  2. On a low level (start bit) load the quiet counter
//  3. Count down while the line stays high; any low level restarts the count
//  4. Counter expired: push one word (idle event) and go back to 1
//
// buildIdleProgram creates the detector program using AssemblerV0
func buildIdleProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Jmp(0, rp2pio.JmpPinInput).Encode(), // 0: jmp pin 0 (line idle)
		// activity:
		asm.Set(rp2pio.SetDestX, idleCount-1).Encode(), // 1: set x, 31
		// quiet_loop:
		asm.Jmp(4, rp2pio.JmpPinInput).Encode(),  // 2: jmp pin 4
		asm.Jmp(1, rp2pio.JmpAlways).Encode(),    // 3: jmp 1 (bit seen, restart)
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(), // 4: jmp x--, 2
		asm.Push(false, false).Encode(),          // 5: push noblock
		// .wrap
	}
}

const (
	idleOrigin = 0 // Load at offset 0 for correct jump addresses

	idleCount        = 32 // quiet loop iterations
	cyclesPerCount   = 2  // instructions 2 and 4
	idleCharacters   = 2  // quiet interval in character times
	bitsPerCharacter = 10 // 8N1
)

// IdleDetector watches a UART RX pin for the idle condition.
type IdleDetector struct {
	pio    *rp2pio.PIO
	hw     *rp.PIO0_Type
	sm     rp2pio.StateMachine
	pin    machine.Pin
	pioNum uint8
	smNum  uint8
	offset uint8
}

// NewIdleDetector claims a free state machine.
func NewIdleDetector() (*IdleDetector, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, errNoStateMachine
	}

	d := &IdleDetector{pioNum: pioNum, smNum: smNum}
	if pioNum == 0 {
		d.pio = rp2pio.PIO0
		d.hw = rp.PIO0
	} else {
		d.pio = rp2pio.PIO1
		d.hw = rp.PIO1
	}
	d.sm = d.pio.StateMachine(smNum)
	return d, nil
}

// IRQ returns the interrupt number raised by this detector.
func (d *IdleDetector) IRQ() int {
	if d.pioNum == 0 {
		return rp.IRQ_PIO0_IRQ_0
	}
	return rp.IRQ_PIO1_IRQ_0
}

// Init loads the program and starts watching rx at the given baud rate.
func (d *IdleDetector) Init(rx machine.Pin, baud uint32) error {
	d.pin = rx

	// CRITICAL: Claim the state machine first!
	if !d.sm.TryClaim() {
		releasePIO(d.pioNum, d.smNum)
		return errNoStateMachine
	}

	program := buildIdleProgram()
	offset, err := d.pio.AddProgram(program, idleOrigin)
	if err != nil {
		return err
	}
	d.offset = offset

	cfg := rp2pio.DefaultStateMachineConfig()

	// The pin keeps its UART function; PIO only samples it
	cfg.SetJmpPin(rx)

	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(ClockDivider(machine.CPUFrequency(), baud), 0)

	d.sm.Init(offset, cfg)
	d.sm.ClearFIFOs()
	d.sm.SetEnabled(true)
	return nil
}

// ClockDivider returns the integer divider making idleCount loop passes
// last idleCharacters character times at baud.
func ClockDivider(cpuHz, baud uint32) uint16 {
	if baud == 0 {
		return 1
	}
	div := uint64(cpuHz) * idleCharacters * bitsPerCharacter /
		(uint64(baud) * idleCount * cyclesPerCount)
	switch {
	case div < 1:
		return 1
	case div > 0xffff:
		return 0xffff
	}
	return uint16(div)
}

// Pending reports whether an idle event is waiting.
func (d *IdleDetector) Pending() bool {
	return !d.sm.IsRxFIFOEmpty()
}

// Clear drops every queued idle event, which also drops the interrupt
// request.
func (d *IdleDetector) Clear() {
	for !d.sm.IsRxFIFOEmpty() {
		d.sm.RxGet()
	}
}

// SetInterrupt routes the RX-not-empty condition of the state machine to
// the block's IRQ0 line.
func (d *IdleDetector) SetInterrupt(enabled bool) {
	bit := uint32(rp.PIO0_IRQ0_INTE_SM0_RXNEMPTY) << d.smNum
	if enabled {
		d.hw.IRQ0_INTE.SetBits(bit)
	} else {
		d.hw.IRQ0_INTE.ClearBits(bit)
	}
}
