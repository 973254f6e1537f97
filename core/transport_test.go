package core

import (
	"errors"
	"testing"
)

func TestTransportSendCommand(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	if err := tr.SendCommand(CmdCWModeSet(ModeStation)); err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if string(port.tx) != "AT+CWMODE=1\r\n" {
		t.Errorf("Expected AT+CWMODE=1\\r\\n on the wire, got %q", port.tx)
	}
	if !port.enabled[EventRxNotEmpty] {
		t.Error("Byte-received interrupt should be enabled after send")
	}
	if tr.State() != StateAwaitingReply {
		t.Errorf("Expected state %v, got %v", StateAwaitingReply, tr.State())
	}
	if tr.Stats().CommandsSent != 1 {
		t.Errorf("Expected 1 command sent, got %d", tr.Stats().CommandsSent)
	}
}

func TestTransportSendCommandWriteError(t *testing.T) {
	port := newFakePort()
	port.failAt = 3
	tr := NewTransport(port)

	err := tr.SendCommand(CmdCWModeQuery())
	if !errors.Is(err, ErrTransportWrite) {
		t.Fatalf("Expected ErrTransportWrite, got %v", err)
	}
	if tr.State() != StateIdle {
		t.Errorf("Failed send should leave state idle, got %v", tr.State())
	}

	// next attempt is independent
	port.failAt = 0
	if err := tr.SendCommand(CmdCWModeQuery()); err != nil {
		t.Errorf("Retry failed: %v", err)
	}
}

func TestTransportIntakeByteBounds(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	for i := 0; i < ReplyCapacity; i++ {
		port.inject(byte(i))
		if err := tr.IntakeByte(); err != nil {
			t.Fatalf("IntakeByte %d failed: %v", i, err)
		}
	}
	if tr.Buffered() != ReplyCapacity {
		t.Fatalf("Expected %d buffered, got %d", ReplyCapacity, tr.Buffered())
	}

	port.inject(0x41)
	if err := tr.IntakeByte(); err != ErrBufferOverflow {
		t.Fatalf("Expected ErrBufferOverflow on byte 257, got %v", err)
	}
	if tr.Buffered() != ReplyCapacity {
		t.Errorf("Expected buffer to stay at %d, got %d", ReplyCapacity, tr.Buffered())
	}
	if tr.Stats().Overflows != 1 {
		t.Errorf("Expected 1 overflow, got %d", tr.Stats().Overflows)
	}
	if !port.enabled[EventRxNotEmpty] {
		t.Error("Byte-received interrupt must be re-enabled on the error path")
	}
}

func TestTransportIntakeByteSpurious(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	if err := tr.IntakeByte(); err != nil {
		t.Fatalf("Spurious intake should not fail: %v", err)
	}
	if tr.Buffered() != 0 {
		t.Errorf("Expected empty buffer, got %d", tr.Buffered())
	}
	if !port.enabled[EventRxNotEmpty] {
		t.Error("Byte-received interrupt should be re-enabled")
	}
}

func TestTransportDrainReply(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	for _, n := range []int{0, 1, 17, ReplyCapacity} {
		for i := 0; i < n; i++ {
			port.inject('x')
			if err := tr.IntakeByte(); err != nil {
				t.Fatal(err)
			}
		}
		before := tr.Buffered()
		port.idle = true

		r := tr.DrainReply()
		if r.Len() != before {
			t.Errorf("Expected reply length %d, got %d", before, r.Len())
		}
		if tr.Buffered() != 0 {
			t.Errorf("Expected empty buffer after drain, got %d", tr.Buffered())
		}
		if port.idle {
			t.Error("Idle flag should be cleared by drain")
		}
		if !port.enabled[EventIdle] {
			t.Error("Idle interrupt should be re-enabled by drain")
		}
	}

	// draining twice in a row yields an empty reply
	if r := tr.DrainReply(); r.Len() != 0 {
		t.Errorf("Expected empty reply, got %d bytes", r.Len())
	}
}

func TestTransportSendWithoutReply(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	if err := tr.SendCommand(CmdCWModeQuery()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 1000; i++ {
		if tr.IsReplyReady() {
			t.Fatal("Reply should never become ready without an idle event")
		}
		if err := tr.CheckTimeout(uint32(i) * 1000); err != nil {
			t.Fatalf("Timeout disabled by default, got %v", err)
		}
	}
	if tr.State() != StateAwaitingReply {
		t.Errorf("Expected to keep waiting, got %v", tr.State())
	}

	if err := tr.SendCommand(CmdCWModeQuery()); err != nil {
		t.Errorf("Second send should succeed: %v", err)
	}
	if string(port.tx) != "AT+CWMODE?\r\nAT+CWMODE?\r\n" {
		t.Errorf("Unexpected wire bytes %q", port.tx)
	}
}

func TestTransportReplyTimeout(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)
	tr.SetReplyTimeout(500)

	SetTime(1000)
	if err := tr.SendCommand(CmdAT()); err != nil {
		t.Fatal(err)
	}
	port.inject('O')
	_ = tr.IntakeByte()

	if err := tr.CheckTimeout(1499); err != nil {
		t.Errorf("Expected no timeout before deadline, got %v", err)
	}
	if err := tr.CheckTimeout(1500); err != ErrReplyTimeout {
		t.Fatalf("Expected ErrReplyTimeout, got %v", err)
	}
	if tr.State() != StateIdle || tr.Buffered() != 0 {
		t.Errorf("Timeout should reset state and buffer, got %v/%d", tr.State(), tr.Buffered())
	}
	if err := tr.CheckTimeout(5000); err != nil {
		t.Errorf("Timeout should fire once, got %v", err)
	}
}

func TestTransportEndToEnd(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)

	if err := tr.SendCommand(NewCommand("AT+CWMODE?")); err != nil {
		t.Fatal(err)
	}
	for _, b := range []byte{0x4F, 0x4B, 0x0D, 0x0A} {
		port.inject(b)
		if err := tr.IntakeByte(); err != nil {
			t.Fatal(err)
		}
	}
	port.idle = true
	if !tr.IsReplyReady() {
		t.Fatal("Expected reply ready after idle")
	}

	r := tr.DrainReply()
	if r.String() != "OK\r\n" || r.Len() != 4 {
		t.Errorf("Expected \"OK\\r\\n\", got %q (len %d)", r.String(), r.Len())
	}
	if tr.Buffered() != 0 {
		t.Errorf("Expected buffer length 0, got %d", tr.Buffered())
	}
	if tr.State() != StateIdle {
		t.Errorf("Expected state idle, got %v", tr.State())
	}
}

func TestTransportHalt(t *testing.T) {
	port := newFakePort()
	tr := NewTransport(port)
	tr.Halt()

	if err := tr.SendCommand(CmdAT()); err != ErrShutdown {
		t.Errorf("Expected ErrShutdown, got %v", err)
	}
	port.inject('x')
	_ = tr.IntakeByte()
	if port.enabled[EventRxNotEmpty] {
		t.Error("Halted transport must not re-enable interrupts")
	}

	tr.Resume()
	if !port.enabled[EventRxNotEmpty] || !port.enabled[EventIdle] {
		t.Error("Resume should enable reception")
	}
}
