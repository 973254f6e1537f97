package modem

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camlink/core"
)

// fakeModem answers every command line written to it with a canned reply.
type fakeModem struct {
	in   *io.PipeReader
	feed *io.PipeWriter

	mu      sync.Mutex
	line    bytes.Buffer
	lines   []string
	answers map[string]string
}

func newFakeModem(answers map[string]string) *fakeModem {
	r, w := io.Pipe()
	return &fakeModem{in: r, feed: w, answers: answers}
}

func (f *fakeModem) Read(b []byte) (int, error) { return f.in.Read(b) }

func (f *fakeModem) Write(b []byte) (int, error) {
	f.mu.Lock()
	f.line.Write(b)
	var done []string
	for {
		s := f.line.String()
		i := bytes.Index(f.line.Bytes(), []byte("\r\n"))
		if i < 0 {
			break
		}
		done = append(done, s[:i])
		f.line.Next(i + 2)
	}
	f.lines = append(f.lines, done...)
	f.mu.Unlock()

	for _, cmd := range done {
		if answer, ok := f.answers[cmd]; ok {
			go f.feed.Write([]byte(answer))
		}
	}
	return len(b), nil
}

func (f *fakeModem) Close() error {
	f.feed.Close()
	return f.in.Close()
}

func (f *fakeModem) Flush() error { return nil }

func (f *fakeModem) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lines...)
}

func collect(m *Modem) func() []string {
	var mu sync.Mutex
	var got []string
	m.OnReply(func(r core.Reply) {
		mu.Lock()
		got = append(got, r.String())
		mu.Unlock()
	})
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), got...)
	}
}

func TestModemPeriodicQuery(t *testing.T) {
	core.ResetFirmwareState()
	fake := newFakeModem(map[string]string{
		"AT+CWMODE?": "+CWMODE:1\r\n\r\nOK\r\n",
	})

	cfg := core.DefaultConfig()
	cfg.LoopPeriod = 50 * time.Millisecond
	cfg.PollPeriod = 5 * time.Millisecond

	m := ConnectPort(fake, 10*time.Millisecond, cfg)
	replies := collect(m)
	m.Run(context.Background())
	defer m.Close()

	require.Eventually(t, func() bool {
		return len(replies()) >= 2
	}, 3*time.Second, 10*time.Millisecond)

	for _, r := range replies() {
		assert.Equal(t, "+CWMODE:1\r\n\r\nOK\r\n", r)
	}
	assert.Contains(t, fake.received(), "AT+CWMODE?")

	s := m.Stats()
	assert.False(t, s.Shutdown)
	assert.GreaterOrEqual(t, s.Transport.RepliesDrained, uint32(2))
}

func TestModemSend(t *testing.T) {
	core.ResetFirmwareState()
	fake := newFakeModem(map[string]string{
		"AT+CWMODE=2": "OK\r\n",
	})

	cfg := core.Config{PollPeriod: 5 * time.Millisecond}
	m := ConnectPort(fake, 10*time.Millisecond, cfg)
	replies := collect(m)
	m.Run(context.Background())
	defer m.Close()

	require.NoError(t, m.Send(core.CmdCWModeSet(core.ModeSoftAP)))
	require.Eventually(t, func() bool {
		return len(replies()) == 1
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"OK\r\n"}, replies())
	assert.Equal(t, []string{"AT+CWMODE=2"}, fake.received())
	assert.Equal(t, core.StateIdle, m.Stats().State)
}

func TestModemSendAfterClose(t *testing.T) {
	core.ResetFirmwareState()
	m := ConnectPort(newFakeModem(nil), 10*time.Millisecond, core.Config{})
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Send(core.CmdAT()), ErrNotConnected)
	assert.NoError(t, m.Close())
}

func TestModemOverflowShutdownAndRestart(t *testing.T) {
	core.ResetFirmwareState()
	fake := newFakeModem(map[string]string{
		"AT+GMR": string(bytes.Repeat([]byte{'x'}, core.ReplyCapacity+1)),
		"AT":     "OK\r\n",
	})

	m := ConnectPort(fake, 20*time.Millisecond, core.Config{PollPeriod: 5 * time.Millisecond})
	replies := collect(m)
	m.Run(context.Background())
	defer m.Close()

	require.NoError(t, m.Send(core.CmdVersion()))
	require.Eventually(t, func() bool {
		return m.Stats().Shutdown
	}, 3*time.Second, 10*time.Millisecond)

	assert.ErrorIs(t, m.Send(core.CmdAT()), core.ErrShutdown)
	assert.Empty(t, replies())

	m.Restart()
	assert.False(t, m.Stats().Shutdown)

	require.NoError(t, m.Send(core.CmdAT()))
	require.Eventually(t, func() bool {
		return len(replies()) == 1
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "OK\r\n", replies()[0])
}

func TestModemReplyTimeout(t *testing.T) {
	core.ResetFirmwareState()
	fake := newFakeModem(nil)

	cfg := core.Config{
		PollPeriod:   5 * time.Millisecond,
		ReplyTimeout: 30 * time.Millisecond,
	}
	m := ConnectPort(fake, 10*time.Millisecond, cfg)
	m.Run(context.Background())
	defer m.Close()

	require.NoError(t, m.Send(core.CmdAT()))
	require.Eventually(t, func() bool {
		return m.Stats().Transport.Timeouts == 1
	}, 3*time.Second, 10*time.Millisecond)

	s := m.Stats()
	assert.Equal(t, core.StateIdle, s.State)
	assert.False(t, s.Shutdown)
}
