// Package config loads the host console configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"camlink/core"
	"camlink/host/serial"
)

// HostConfig is the JSON configuration of the host console.
type HostConfig struct {
	Device string `json:"device"`
	Baud   int    `json:"baud"`

	// IdleMS is the quiet interval closing a reply. Zero derives it from Baud.
	IdleMS int `json:"idle_ms"`

	// ReplyTimeoutMS abandons a reply after this long. Zero waits forever.
	ReplyTimeoutMS int `json:"reply_timeout_ms"`

	// PeriodMS is the periodic query interval. Zero disables the periodic
	// query; commands are then only sent from the console.
	PeriodMS int `json:"period_ms"`
	PollMS   int `json:"poll_ms"`

	// Query is the periodic command, e.g. "AT+CWMODE?" or "AT+CWMODE=1".
	Query string `json:"query"`

	// Policy is "shutdown" or "discard".
	Policy string `json:"policy"`
}

// LoadConfig parses a JSON configuration and applies defaults.
func LoadConfig(jsonData []byte) (*HostConfig, error) {
	var config HostConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if _, ok := core.ParseOverflowPolicy(config.Policy); !ok {
		return nil, fmt.Errorf("config: unknown overflow policy %q", config.Policy)
	}
	return &config, nil
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string) (*HostConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return LoadConfig(data)
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *HostConfig) {
	if config.Device == "" {
		config.Device = "/dev/ttyUSB0"
	}
	if config.Baud == 0 {
		config.Baud = core.DefaultBaudRate
	}
	if config.PollMS == 0 {
		config.PollMS = int(core.DefaultPollPeriod / time.Millisecond)
	}
	if config.Query == "" {
		config.Query = core.CmdCWModeQuery().String()
	}
	if config.Policy == "" {
		config.Policy = core.PolicyShutdown.String()
	}
}

// DefaultConfig returns the configuration used without a config file: the
// mode query once per second on /dev/ttyUSB0 at 115200 baud.
func DefaultConfig() *HostConfig {
	config := &HostConfig{
		PeriodMS: int(core.DefaultLoopPeriod / time.Millisecond),
	}
	applyDefaults(config)
	return config
}

// Serial returns the serial port settings.
func (c *HostConfig) Serial() *serial.Config {
	sc := serial.DefaultConfig(c.Device)
	sc.Baud = c.Baud
	sc.IdleTime = serial.IdleTimeFor(c.Baud)
	if c.IdleMS > 0 {
		sc.IdleTime = time.Duration(c.IdleMS) * time.Millisecond
	}
	return sc
}

// Core returns the application loop settings.
func (c *HostConfig) Core() core.Config {
	policy, _ := core.ParseOverflowPolicy(c.Policy)
	cfg := core.Config{
		BaudRate:     uint32(c.Baud),
		PollPeriod:   time.Duration(c.PollMS) * time.Millisecond,
		ReplyTimeout: time.Duration(c.ReplyTimeoutMS) * time.Millisecond,
		Policy:       policy,
	}
	if c.PeriodMS > 0 {
		cfg.LoopPeriod = time.Duration(c.PeriodMS) * time.Millisecond
		cfg.Query = ParseCommand(c.Query)
	}
	return cfg
}

// ParseCommand turns command text into a Command. Text after the first '='
// becomes the payload; "AT+CWMODE=1" is name "AT+CWMODE=" with payload "1".
func ParseCommand(text string) core.Command {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '='); i >= 0 && i+1 < len(text) {
		return core.NewCommandWithPayload(text[:i+1], text[i+1:])
	}
	return core.NewCommand(text)
}
