package core

import "time"

// Fixed runtime parameters of the firmware.
const (
	DefaultBaudRate   = 115200
	ReplyCapacity     = 256 // accumulation buffer and Reply capacity in bytes
	ReplyChannelDepth = 8   // response channel slots
	DefaultLoopPeriod = 1000 * time.Millisecond
	DefaultPollPeriod = 10 * time.Millisecond
	LineTerminator    = "\r\n"
)

// OverflowPolicy selects how the interrupt handler reacts to a full
// accumulation buffer or a full response channel.
type OverflowPolicy uint8

const (
	// PolicyShutdown treats overflow as fatal: the transport stops listening
	// and the firmware enters the shutdown state.
	PolicyShutdown OverflowPolicy = iota
	// PolicyDiscard drops the whole reply being assembled (or the reply that
	// did not fit in the channel), counts it and keeps running.
	PolicyDiscard
)

func (p OverflowPolicy) String() string {
	switch p {
	case PolicyShutdown:
		return "shutdown"
	case PolicyDiscard:
		return "discard"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy maps a policy name to its value.
func ParseOverflowPolicy(name string) (OverflowPolicy, bool) {
	switch name {
	case "shutdown", "fatal", "":
		return PolicyShutdown, true
	case "discard", "drop":
		return PolicyDiscard, true
	}
	return PolicyShutdown, false
}

// Config holds the tunables of the application loop and interrupt handler.
type Config struct {
	BaudRate     uint32
	ChannelDepth int
	LoopPeriod   time.Duration
	PollPeriod   time.Duration

	// ReplyTimeout of zero keeps the transport waiting for the idle line
	// forever.
	ReplyTimeout time.Duration

	Policy OverflowPolicy

	// Query is sent once per LoopPeriod. A zero Command disables sending and
	// leaves the loop draining replies only.
	Query Command
}

// DefaultConfig returns the firmware configuration.
func DefaultConfig() Config {
	c := Config{Query: CmdCWModeQuery()}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing values
func (c *Config) applyDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ChannelDepth == 0 {
		c.ChannelDepth = ReplyChannelDepth
	}
	if c.LoopPeriod == 0 {
		c.LoopPeriod = DefaultLoopPeriod
	}
	if c.PollPeriod == 0 {
		c.PollPeriod = DefaultPollPeriod
	}
}
