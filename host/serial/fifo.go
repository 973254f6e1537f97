package serial

// rxFifo is the receive holding FIFO between the reader goroutine and the
// emulated data register. One slot is kept free to tell full from empty.
// Callers hold Peripheral.mu.
type rxFifo struct {
	buf      []byte
	read     int
	write    int
	overruns uint32
}

func newRxFifo(capacity int) *rxFifo {
	return &rxFifo{buf: make([]byte, capacity+1)}
}

// put appends b, counting an overrun and dropping b when full, as a UART
// does when its receive FIFO is not serviced in time.
func (f *rxFifo) put(b byte) bool {
	next := (f.write + 1) % len(f.buf)
	if next == f.read {
		f.overruns++
		return false
	}
	f.buf[f.write] = b
	f.write = next
	return true
}

func (f *rxFifo) get() (byte, bool) {
	if f.read == f.write {
		return 0, false
	}
	b := f.buf[f.read]
	f.read = (f.read + 1) % len(f.buf)
	return b, true
}

func (f *rxFifo) available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

func (f *rxFifo) reset() {
	f.read = 0
	f.write = 0
}
