package core

import "errors"

var errRxEmpty = errors.New("receive register empty")

// fakePort is a test implementation of SerialPort. Received bytes are
// latched one at a time like a hardware data register.
type fakePort struct {
	rx       []byte
	tx       []byte
	idle     bool
	enabled  map[Event]bool
	listens  map[Event]int
	writeErr error
	readErr  error // returned by ReadByte, which still consumes the byte
	failAt   int   // fail the write of tx byte number failAt (1-based); 0 never
}

func newFakePort() *fakePort {
	return &fakePort{
		enabled: make(map[Event]bool),
		listens: make(map[Event]int),
	}
}

func (p *fakePort) WriteByte(c byte) error {
	if p.failAt > 0 && len(p.tx)+1 == p.failAt {
		if p.writeErr == nil {
			return errors.New("tx fault")
		}
		return p.writeErr
	}
	p.tx = append(p.tx, c)
	return nil
}

func (p *fakePort) ReadByte() (byte, error) {
	if len(p.rx) == 0 {
		return 0, errRxEmpty
	}
	b := p.rx[0]
	p.rx = p.rx[1:]
	if p.readErr != nil {
		return 0, p.readErr
	}
	return b, nil
}

func (p *fakePort) RxNotEmpty() bool { return len(p.rx) > 0 }
func (p *fakePort) TxEmpty() bool    { return true }
func (p *fakePort) IsIdle() bool     { return p.idle }
func (p *fakePort) ClearIdle()       { p.idle = false }

func (p *fakePort) Listen(ev Event) {
	p.enabled[ev] = true
	p.listens[ev]++
}

func (p *fakePort) Unlisten(ev Event) {
	p.enabled[ev] = false
}

// inject latches bytes into the receive side.
func (p *fakePort) inject(data ...byte) {
	p.rx = append(p.rx, data...)
}
