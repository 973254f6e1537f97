package core

import (
	"context"
	"sync/atomic"
	"time"
)

// App is the single non-interrupt task. Every loop period it sends the
// query command under the transport lock, and on every poll it drains the
// response channel without blocking. All serial I/O progress happens in
// interrupt context.
type App struct {
	transport *Shared[Transport]
	replies   *Consumer[Reply]
	cfg       Config

	onReply func(Reply)

	lastSend   uint32
	sentOnce   bool
	sendErrors uint32 // atomic
	received   uint32 // atomic
}

// NewApp wires the loop to the shared transport and the consumer half of
// the response channel.
func NewApp(transport *Shared[Transport], replies *Consumer[Reply], cfg Config) *App {
	cfg.applyDefaults()
	a := &App{
		transport: transport,
		replies:   replies,
		cfg:       cfg,
	}
	if cfg.ReplyTimeout > 0 {
		ticks := TimerFromDuration(cfg.ReplyTimeout)
		transport.Lock(func(t *Transport) {
			t.SetReplyTimeout(ticks)
		})
	}
	return a
}

// OnReply registers a callback invoked for every drained reply.
func (a *App) OnReply(fn func(Reply)) {
	a.onReply = fn
}

// SendErrors returns how many sends failed.
func (a *App) SendErrors() uint32 {
	return atomic.LoadUint32(&a.sendErrors)
}

// Received returns how many replies were drained.
func (a *App) Received() uint32 {
	return atomic.LoadUint32(&a.received)
}

// Send issues one command under the transport lock. A failure is logged and
// returned; it is not retried.
func (a *App) Send(cmd Command) error {
	var err, timeoutErr error
	now := GetTime()
	a.transport.Lock(func(t *Transport) {
		timeoutErr = t.CheckTimeout(now)
		err = t.SendCommand(cmd)
	})
	if timeoutErr != nil {
		DebugPrintln("app: previous reply abandoned: " + timeoutErr.Error())
	}
	if err != nil {
		atomic.AddUint32(&a.sendErrors, 1)
		DebugPrintln("app: send " + cmd.String() + " failed: " + err.Error())
	}
	return err
}

// Step runs one iteration at time now: the periodic send when due, then a
// full non-blocking drain. It returns the number of replies drained.
func (a *App) Step(now uint32) int {
	if !a.cfg.Query.IsZero() && a.sendDue(now) {
		a.lastSend = now
		a.sentOnce = true
		if IsShutdown() {
			DebugPrintln("app: shutdown (" + ShutdownReason() + "), not sending")
		} else {
			_ = a.Send(a.cfg.Query)
		}
	} else if a.cfg.ReplyTimeout > 0 {
		var timeoutErr error
		a.transport.Lock(func(t *Transport) {
			timeoutErr = t.CheckTimeout(now)
		})
		if timeoutErr != nil {
			DebugPrintln("app: " + timeoutErr.Error())
		}
	}
	return a.Drain()
}

func (a *App) sendDue(now uint32) bool {
	if !a.sentOnce {
		return true
	}
	return now-a.lastSend >= TimerFromDuration(a.cfg.LoopPeriod)
}

// Drain reports every reply currently queued and returns how many there were.
func (a *App) Drain() int {
	n := 0
	for {
		r, ok := a.replies.Dequeue()
		if !ok {
			return n
		}
		n++
		atomic.AddUint32(&a.received, 1)
		a.report(r)
	}
}

func (a *App) report(r Reply) {
	if r.Len() == 0 {
		DebugPrintln("app: empty reply")
	} else {
		DebugPrintln("app: reply len=" + itoa(r.Len()) +
			" status=" + r.Status().String() +
			" " + quote(r.String()))
	}
	if a.onReply != nil {
		a.onReply(r)
	}
}

// Run steps the loop every poll period until ctx is done.
func (a *App) Run(ctx context.Context) {
	for {
		a.Step(GetTime())
		select {
		case <-ctx.Done():
			return
		case <-time.After(a.cfg.PollPeriod):
		}
	}
}
