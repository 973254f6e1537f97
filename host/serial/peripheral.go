package serial

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"camlink/core"
)

var _ core.SerialPort = (*Peripheral)(nil)

// ErrRxEmpty is returned by ReadByte when no received byte is pending.
var ErrRxEmpty = errors.New("serial: receive register empty")

// rxFifoSize mirrors a small hardware receive FIFO plus driver slack.
const rxFifoSize = 1024

// maxServicePasses bounds how often one interrupt kick re-enters the
// handler while a source stays pending.
const maxServicePasses = 4096

// Peripheral emulates the modem UART's status flags, interrupt enables and
// idle-line detection on top of a host serial Port, so the firmware core can
// drive a modem attached through a USB serial adapter.
//
// Interrupt delivery happens on a single dispatcher goroutine, standing in
// for the UART interrupt line.
type Peripheral struct {
	port  Port
	quiet time.Duration

	mu       sync.Mutex
	rx       *rxFifo
	enabled  [3]bool // indexed by core.Event
	idle     bool
	activity bool
	timer    *time.Timer
	irq      func()

	kick chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	log *log.Entry
}

// NewPeripheral wraps port. quiet is the idle-line interval; zero selects
// IdleTimeFor(115200).
func NewPeripheral(port Port, quiet time.Duration) *Peripheral {
	if quiet <= 0 {
		quiet = IdleTimeFor(115200)
	}
	return &Peripheral{
		port:  port,
		quiet: quiet,
		rx:    newRxFifo(rxFifoSize),
		kick:  make(chan struct{}, 1),
		stop:  make(chan struct{}),
		log:   log.WithField("component", "peripheral"),
	}
}

// AttachInterrupt sets the interrupt service routine. Call before Start.
func (p *Peripheral) AttachInterrupt(isr func()) {
	p.mu.Lock()
	p.irq = isr
	p.mu.Unlock()
}

// Start launches the reader and the interrupt dispatcher.
func (p *Peripheral) Start() {
	p.wg.Add(2)
	go p.readLoop()
	go p.dispatchLoop()
}

// Close stops both goroutines and closes the port.
func (p *Peripheral) Close() error {
	var err error
	p.once.Do(func() {
		close(p.stop)
		err = p.port.Close()
		p.wg.Wait()

		p.mu.Lock()
		if p.timer != nil {
			p.timer.Stop()
		}
		p.mu.Unlock()
	})
	return err
}

// Overruns returns how many received bytes were lost to a full FIFO.
func (p *Peripheral) Overruns() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.overruns
}

func (p *Peripheral) stopped() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

func (p *Peripheral) readLoop() {
	defer p.wg.Done()

	buf := make([]byte, 64)
	for {
		if p.stopped() {
			return
		}

		n, err := p.port.Read(buf)
		if n > 0 {
			p.receive(buf[:n])
		}
		if err != nil && err != io.EOF {
			if p.stopped() {
				return
			}
			p.log.WithError(err).Debug("read failed")
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// receive latches bytes into the FIFO and restarts the quiet interval.
func (p *Peripheral) receive(data []byte) {
	p.mu.Lock()
	for _, b := range data {
		p.rx.put(b)
	}
	p.activity = true
	if p.timer == nil {
		p.timer = time.AfterFunc(p.quiet, p.lineIdle)
	} else {
		p.timer.Reset(p.quiet)
	}
	p.mu.Unlock()

	p.trigger()
}

// lineIdle runs when no byte arrived for the quiet interval.
func (p *Peripheral) lineIdle() {
	p.mu.Lock()
	if p.activity {
		p.idle = true
		p.activity = false
	}
	p.mu.Unlock()

	p.trigger()
}

// trigger wakes the dispatcher without blocking.
func (p *Peripheral) trigger() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Peripheral) dispatchLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case <-p.kick:
			p.service()
		}
	}
}

// service calls the interrupt routine while any enabled source is pending,
// like a level-triggered interrupt line.
func (p *Peripheral) service() {
	p.mu.Lock()
	irq := p.irq
	p.mu.Unlock()
	if irq == nil {
		return
	}
	for i := 0; i < maxServicePasses && p.pending(); i++ {
		irq()
	}
}

func (p *Peripheral) pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	queued := p.rx.available()
	switch {
	case p.enabled[core.EventRxNotEmpty] && queued > 0:
		return true
	case p.enabled[core.EventIdle] && p.idle && queued == 0:
		return true
	case p.enabled[core.EventTxEmpty]:
		return true
	}
	return false
}

// WriteByte writes c to the port. Host writes are synchronous, so the
// transmit register is always empty afterwards.
func (p *Peripheral) WriteByte(c byte) error {
	n, err := p.port.Write([]byte{c})
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("incomplete write: %d/1 bytes", n)
	}
	return nil
}

// ReadByte pops the oldest received byte.
func (p *Peripheral) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.rx.get()
	if !ok {
		return 0, ErrRxEmpty
	}
	return b, nil
}

func (p *Peripheral) RxNotEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.available() > 0
}

func (p *Peripheral) TxEmpty() bool {
	return true
}

// IsIdle reports the idle flag once every byte received before the quiet
// interval has been read, so a reply is never closed ahead of its tail.
func (p *Peripheral) IsIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle && p.rx.available() == 0
}

func (p *Peripheral) ClearIdle() {
	p.mu.Lock()
	p.idle = false
	p.mu.Unlock()
}

// Listen enables an interrupt source. A source that is already pending
// fires right away, as on hardware.
func (p *Peripheral) Listen(ev core.Event) {
	p.mu.Lock()
	p.enabled[ev] = true
	p.mu.Unlock()
	p.trigger()
}

func (p *Peripheral) Unlisten(ev core.Event) {
	p.mu.Lock()
	p.enabled[ev] = false
	p.mu.Unlock()
}

// Reset drops buffered input and pending flags.
func (p *Peripheral) Reset() {
	p.mu.Lock()
	p.rx.reset()
	p.idle = false
	p.activity = false
	p.mu.Unlock()
}
