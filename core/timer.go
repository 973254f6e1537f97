package core

import (
	"sync/atomic"
	"time"
)

// TickFreq is the system tick rate: one tick per millisecond.
const TickFreq = 1000

var (
	bootTime    = time.Now()
	manualTicks uint32 // atomic
	manualClock uint32 // atomic bool
)

// TimerInit restarts the free-running system clock at zero and drops any
// time pinned by SetTime.
func TimerInit() {
	bootTime = time.Now()
	atomic.StoreUint32(&manualClock, 0)
}

// GetTime returns the current system time in ticks: milliseconds since
// process start (or the last TimerInit), or the value pinned by SetTime.
func GetTime() uint32 {
	if atomic.LoadUint32(&manualClock) != 0 {
		return atomic.LoadUint32(&manualTicks)
	}
	return uint32(time.Since(bootTime) / time.Millisecond)
}

// SetTime pins the system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&manualTicks, ticks)
	atomic.StoreUint32(&manualClock, 1)
}

// TimerFromDuration converts a duration to ticks, rounding up so that a
// non-zero duration never becomes zero ticks.
func TimerFromDuration(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	return uint32((d + time.Millisecond - 1) / time.Millisecond)
}

// TimerToDuration converts ticks to a duration.
func TimerToDuration(ticks uint32) time.Duration {
	return time.Duration(ticks) * time.Second / TickFreq
}
