package core

import "sync/atomic"

// FirmwareState tracks the sticky fatal-fault state.
type FirmwareState struct {
	isShutdown uint32 // atomic bool
	reason     atomic.Pointer[string]
}

var globalState = &FirmwareState{}

// TryShutdown moves the firmware into the shutdown state with a reason.
// Only the first reason is kept. Safe to call from interrupt context.
func TryShutdown(reason string) {
	if atomic.CompareAndSwapUint32(&globalState.isShutdown, 0, 1) {
		globalState.reason.Store(&reason)
		RecordTrace(EvtOverflow, 0)
		DebugAsync("shutdown: " + reason)
	}
}

// IsShutdown returns true if the firmware is in shutdown state
func IsShutdown() bool {
	return atomic.LoadUint32(&globalState.isShutdown) != 0
}

// ShutdownReason returns the reason passed to the first TryShutdown call.
func ShutdownReason() string {
	if !IsShutdown() {
		return ""
	}
	if r := globalState.reason.Load(); r != nil {
		return *r
	}
	return ""
}

// ResetFirmwareState clears the shutdown flag.
func ResetFirmwareState() {
	globalState.reason.Store(nil)
	atomic.StoreUint32(&globalState.isShutdown, 0)
}
