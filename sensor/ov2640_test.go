package sensor

import (
	"errors"
	"testing"
)

// fakeBus is a test implementation of drivers.I2C backed by a register map.
type fakeBus struct {
	regs   map[uint8]uint8
	writes []RegisterWrite
	addrs  []uint16
	failOn int // fail transaction number failOn (1-based); 0 never
	txs    int
}

func newFakeBus(pidh, pidl uint8) *fakeBus {
	return &fakeBus{regs: map[uint8]uint8{RegPIDH: pidh, RegPIDL: pidl}}
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.txs++
	b.addrs = append(b.addrs, addr)
	if b.failOn == b.txs {
		return errors.New("nack")
	}
	switch {
	case len(w) == 2 && len(r) == 0:
		b.regs[w[0]] = w[1]
		b.writes = append(b.writes, RegisterWrite{w[0], w[1]})
	case len(w) == 1 && len(r) == 1:
		r[0] = b.regs[w[0]]
	default:
		return errors.New("unexpected transaction shape")
	}
	return nil
}

func (b *fakeBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

func (b *fakeBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		pidh, pidl uint8
		want       error
	}{
		{0x26, 0x42, nil},
		{0x26, 0x41, ErrUnknownChip},
		{0x77, 0x42, ErrUnknownChip},
		{0x00, 0x00, ErrUnknownChip},
	}
	for _, tt := range tests {
		bus := newFakeBus(tt.pidh, tt.pidl)
		if err := New(bus).Verify(); err != tt.want {
			t.Errorf("Verify(0x%02x, 0x%02x): expected %v, got %v", tt.pidh, tt.pidl, tt.want, err)
		}
		for _, a := range bus.addrs {
			if a != 0x30 {
				t.Errorf("Expected address 0x30, got 0x%02x", a)
			}
		}
	}
}

func TestVerifyBusError(t *testing.T) {
	bus := newFakeBus(0x26, 0x42)
	bus.failOn = 2

	err := New(bus).Verify()
	var berr *BusError
	if !errors.As(err, &berr) {
		t.Fatalf("Expected *BusError, got %v", err)
	}
	if berr.Op != "read" || berr.Register != RegPIDL {
		t.Errorf("Unexpected bus error %+v", berr)
	}
	if berr.Error() != "sensor: bus read of register 0x0b: nack" {
		t.Errorf("Unexpected message %q", berr.Error())
	}
}

func TestInitSequence(t *testing.T) {
	bus := newFakeBus(0x26, 0x42)
	if err := New(bus).Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	want := []RegisterWrite{
		{0xFF, 0x00},
		{0x2C, 0xFF},
		{0x2E, 0xDF},
		{0xC2, 0x0C},
		{0xFF, 0x01},
		{0x09, 0x02},
		{0x13, 0x05},
	}
	if len(bus.writes) != len(want) {
		t.Fatalf("Expected %d writes, got %d", len(want), len(bus.writes))
	}
	for i := range want {
		if bus.writes[i] != want[i] {
			t.Errorf("Write %d: expected %+v, got %+v", i, want[i], bus.writes[i])
		}
	}
}

func TestInitAbortsOnBusError(t *testing.T) {
	bus := newFakeBus(0x26, 0x42)
	bus.failOn = 4

	err := New(bus).Init()
	var berr *BusError
	if !errors.As(err, &berr) || berr.Register != RegCtrl0 {
		t.Fatalf("Expected bus error on CTRL0, got %v", err)
	}
	if len(bus.writes) != 3 {
		t.Errorf("Expected the sequence to stop after 3 writes, got %d", len(bus.writes))
	}
	if bus.txs != 4 {
		t.Errorf("Expected no transactions after the failure, got %d", bus.txs)
	}
}
