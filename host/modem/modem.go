// Package modem connects the firmware core to a modem attached through a
// host serial port.
package modem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"camlink/core"
	"camlink/host/serial"
)

// ErrNotConnected is returned by operations on a closed Modem.
var ErrNotConnected = errors.New("modem: not connected")

// Stats is a snapshot of the link counters.
type Stats struct {
	Transport   core.TransportStats
	State       core.TransportState
	Buffered    int
	Invocations uint32
	Dropped     uint32
	RxErrors    uint32
	Received    uint32
	SendErrors  uint32
	Overruns    uint32
	Shutdown    bool
	Reason      string
}

// Modem is a connection to an AT-command modem: the emulated UART
// peripheral, the shared transport, the interrupt handler and the
// application loop wired together.
type Modem struct {
	periph    *serial.Peripheral
	transport *core.Shared[core.Transport]
	handler   *core.Handler
	app       *core.App

	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	connected bool

	log *log.Entry
}

// Connect opens the serial device named in sc and starts the link.
func Connect(sc *serial.Config, cfg core.Config) (*Modem, error) {
	port, err := serial.Open(sc)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}
	return ConnectPort(port, sc.IdleTime, cfg), nil
}

// ConnectPort starts the link over an already open port.
func ConnectPort(port serial.Port, idle time.Duration, cfg core.Config) *Modem {
	periph := serial.NewPeripheral(port, idle)
	transport := core.NewShared(core.NewTransport(periph))

	depth := cfg.ChannelDepth
	if depth == 0 {
		depth = core.ReplyChannelDepth
	}
	replies, consumer := core.NewResponseChannel[core.Reply](depth)

	handler := core.NewHandler(transport, replies)
	handler.SetPolicy(cfg.Policy)
	periph.AttachInterrupt(handler.Service)

	m := &Modem{
		periph:    periph,
		transport: transport,
		handler:   handler,
		app:       core.NewApp(transport, consumer, cfg),
		connected: true,
		log:       log.WithField("component", "modem"),
	}

	transport.Lock(func(t *core.Transport) {
		t.Resume()
	})
	periph.Start()
	return m
}

// OnReply registers a callback for every reply drained by the loop. Call
// before Run.
func (m *Modem) OnReply(fn func(core.Reply)) {
	m.app.OnReply(fn)
}

// Run starts the application loop in the background.
func (m *Modem) Run(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		m.app.Run(ctx)
	}()
}

// Send writes one command. The reply is delivered through OnReply.
func (m *Modem) Send(cmd core.Command) error {
	if !m.Connected() {
		return ErrNotConnected
	}
	m.log.WithField("command", cmd.String()).Debug("send")
	return m.app.Send(cmd)
}

// Restart clears a shutdown caused by an overflow and listens again.
func (m *Modem) Restart() {
	core.ResetFirmwareState()
	m.transport.Lock(func(t *core.Transport) {
		// under the lock so no Service call sees the FIFO mid-reset
		m.periph.Reset()
		t.Resume()
	})
}

// Stats returns the current counters.
func (m *Modem) Stats() Stats {
	s := Stats{
		Invocations: m.handler.Invocations(),
		Dropped:     m.handler.Dropped(),
		RxErrors:    m.handler.RxErrors(),
		Received:    m.app.Received(),
		SendErrors:  m.app.SendErrors(),
		Overruns:    m.periph.Overruns(),
		Shutdown:    core.IsShutdown(),
		Reason:      core.ShutdownReason(),
	}
	m.transport.Lock(func(t *core.Transport) {
		s.Transport = t.Stats()
		s.State = t.State()
		s.Buffered = t.Buffered()
	})
	return s
}

// Connected reports whether Close has not been called yet.
func (m *Modem) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Close stops the loop and closes the port.
func (m *Modem) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.connected = false
	m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	return m.periph.Close()
}
