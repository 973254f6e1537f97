package core

import "io"

// WifiMode is the modem operating mode argument of AT+CWMODE.
type WifiMode uint8

const (
	ModeStation       WifiMode = 1
	ModeSoftAP        WifiMode = 2
	ModeStationSoftAP WifiMode = 3
)

// Command is an AT command: a command-name token plus an optional literal
// payload appended directly after it.
type Command struct {
	Name       string
	Payload    string
	HasPayload bool
}

// NewCommand returns a command without payload.
func NewCommand(name string) Command {
	return Command{Name: name}
}

// NewCommandWithPayload returns a command whose payload is written right
// after the name, with no separator.
func NewCommandWithPayload(name, payload string) Command {
	return Command{Name: name, Payload: payload, HasPayload: true}
}

// CmdAT is the bare attention command.
func CmdAT() Command { return NewCommand("AT") }

// CmdReset restarts the modem.
func CmdReset() Command { return NewCommand("AT+RST") }

// CmdVersion queries the modem firmware version.
func CmdVersion() Command { return NewCommand("AT+GMR") }

// CmdCWModeQuery queries the current Wi-Fi mode.
func CmdCWModeQuery() Command { return NewCommand("AT+CWMODE?") }

// CmdCWModeSet selects the Wi-Fi mode.
func CmdCWModeSet(mode WifiMode) Command {
	return NewCommandWithPayload("AT+CWMODE=", string([]byte{'0' + byte(mode)}))
}

// IsZero reports whether c carries no command name.
func (c Command) IsZero() bool {
	return c.Name == ""
}

// Len returns the number of bytes WriteTo puts on the wire.
func (c Command) Len() int {
	n := len(c.Name) + len(LineTerminator)
	if c.HasPayload {
		n += len(c.Payload)
	}
	return n
}

// String returns the command text without the line terminator.
func (c Command) String() string {
	if c.HasPayload {
		return c.Name + c.Payload
	}
	return c.Name
}

// WriteTo writes the name, the payload if present, and the line terminator.
// A failed write is returned as a *TransportWriteError.
func (c Command) WriteTo(w io.Writer) (int64, error) {
	var total int64
	parts := [3]string{c.Name, "", LineTerminator}
	if c.HasPayload {
		parts[1] = c.Payload
	}
	for _, part := range parts {
		if part == "" {
			continue
		}
		n, err := io.WriteString(w, part)
		total += int64(n)
		if err != nil {
			return total, &TransportWriteError{Err: err}
		}
	}
	return total, nil
}
