package core

import (
	"errors"
	"testing"
)

type fakePinDriver struct {
	configured []GPIOPin
	callbacks  map[GPIOPin]func(GPIOPin)
	err        error
}

func (d *fakePinDriver) ConfigureInputPullDown(pin GPIOPin) error {
	if d.err != nil {
		return d.err
	}
	d.configured = append(d.configured, pin)
	return nil
}

func (d *fakePinDriver) SetInterrupt(pin GPIOPin, edge Edge, callback func(GPIOPin)) error {
	if edge != EdgeRising {
		return errors.New("unexpected edge")
	}
	d.callbacks[pin] = callback
	return nil
}

func (d *fakePinDriver) fire(pin GPIOPin, times int) {
	for i := 0; i < times; i++ {
		d.callbacks[pin](pin)
	}
}

func TestFrameSyncCountsEdges(t *testing.T) {
	d := &fakePinDriver{callbacks: make(map[GPIOPin]func(GPIOPin))}
	fs := &FrameSync{VSync: 16, HRef: 17}

	if err := fs.Attach(d); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if len(d.configured) != 2 {
		t.Fatalf("Expected 2 pins configured, got %d", len(d.configured))
	}

	d.fire(16, 2)
	d.fire(17, 480)

	got := fs.Snapshot()
	if got.Frames != 2 || got.Lines != 480 {
		t.Errorf("Expected 2 frames / 480 lines, got %+v", got)
	}
}

func TestFrameSyncAttachError(t *testing.T) {
	d := &fakePinDriver{err: errors.New("pin busy")}
	fs := &FrameSync{VSync: 1, HRef: 2}
	if err := fs.Attach(d); err == nil {
		t.Error("Expected Attach to fail")
	}
}
