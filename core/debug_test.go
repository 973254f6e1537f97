package core

import (
	"strings"
	"testing"
	"time"
)

func TestTraceRingDump(t *testing.T) {
	ClearTraceRing()
	defer ClearTraceRing()

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	SetTime(42)
	RecordTrace(EvtSend, 12)
	RecordTrace(EvtByte, 'O')
	DumpTraceRing()

	if len(lines) != 4 {
		t.Fatalf("Expected header, 2 events and footer, got %q", lines)
	}
	if lines[1] != "[TRACE] SEND clock=42 v=12" {
		t.Errorf("Unexpected line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "[TRACE] BYTE") {
		t.Errorf("Unexpected line %q", lines[2])
	}
}

func TestTraceRingWraps(t *testing.T) {
	ClearTraceRing()
	defer ClearTraceRing()

	for i := 0; i < TraceRingSize+5; i++ {
		RecordTrace(EvtByte, uint32(i))
	}
	// the oldest surviving event sits at the head
	if traceRing[traceRingHead].Value != 5 {
		t.Errorf("Expected oldest value 5, got %d", traceRing[traceRingHead].Value)
	}
}

func TestQuote(t *testing.T) {
	got := quote(NewReply([]byte{'O', 'K', '\r', '\n', 0xFF}).String())
	if got != `"OK\r\n\xff"` {
		t.Errorf("Unexpected quote result %s", got)
	}
}

func TestItoa(t *testing.T) {
	for n, want := range map[int]string{0: "0", 7: "7", 256: "256", -15: "-15"} {
		if got := itoa(n); got != want {
			t.Errorf("itoa(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestTimerConversions(t *testing.T) {
	if TimerFromDuration(time.Second) != 1000 {
		t.Errorf("Expected 1000 ticks per second, got %d", TimerFromDuration(time.Second))
	}
	if TimerFromDuration(300*time.Microsecond) != 1 {
		t.Error("Sub-tick durations should round up to one tick")
	}
	if TimerToDuration(250) != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", TimerToDuration(250))
	}

	SetTime(1234)
	if GetTime() != 1234 {
		t.Errorf("Expected 1234, got %d", GetTime())
	}
}

func TestGetTimeRunsWithoutSetTime(t *testing.T) {
	TimerInit()
	defer SetTime(0)

	start := GetTime()
	time.Sleep(20 * time.Millisecond)
	if d := GetTime() - start; d < 15 {
		t.Errorf("Expected the clock to advance about 20 ticks, got %d", d)
	}
}
