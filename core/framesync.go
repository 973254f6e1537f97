package core

import "sync/atomic"

// FrameSyncCounts is a snapshot of the frame synchronization counters.
type FrameSyncCounts struct {
	Frames uint32 // VSYNC rising edges
	Lines  uint32 // HREF rising edges
}

// FrameSync acknowledges the image sensor's VSYNC and HREF edges. It only
// counts and traces them; no pixel data flows through it.
type FrameSync struct {
	VSync GPIOPin
	HRef  GPIOPin

	frames uint32 // atomic
	lines  uint32 // atomic
}

// Attach configures both pins as inputs and installs the edge handlers.
func (f *FrameSync) Attach(d PinInterruptDriver) error {
	for _, pin := range []GPIOPin{f.VSync, f.HRef} {
		if err := d.ConfigureInputPullDown(pin); err != nil {
			return err
		}
		if err := d.SetInterrupt(pin, EdgeRising, f.OnEdge); err != nil {
			return err
		}
	}
	return nil
}

// OnEdge is the pin interrupt callback.
func (f *FrameSync) OnEdge(pin GPIOPin) {
	switch pin {
	case f.VSync:
		n := atomic.AddUint32(&f.frames, 1)
		RecordTrace(EvtVSync, n)
	case f.HRef:
		atomic.AddUint32(&f.lines, 1)
	}
}

// Snapshot returns the current counts.
func (f *FrameSync) Snapshot() FrameSyncCounts {
	return FrameSyncCounts{
		Frames: atomic.LoadUint32(&f.frames),
		Lines:  atomic.LoadUint32(&f.lines),
	}
}
