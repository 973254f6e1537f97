package core

import "strings"

// ReplyStatus is the final result code found at the end of a reply.
type ReplyStatus uint8

const (
	StatusNone ReplyStatus = iota
	StatusOK
	StatusError
	StatusFail
	StatusBusy
)

func (s ReplyStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusFail:
		return "FAIL"
	case StatusBusy:
		return "busy"
	default:
		return "none"
	}
}

// Reply is a finalized modem reply: the raw bytes received between two
// idle-line events. It is a fixed-size value so it can cross from interrupt
// context to the application loop without allocating.
type Reply struct {
	buf [ReplyCapacity]byte
	n   int
}

// NewReply copies data into a Reply. Bytes beyond ReplyCapacity are not kept.
func NewReply(data []byte) Reply {
	var r Reply
	r.n = copy(r.buf[:], data)
	return r
}

// Len returns the number of characters, which equals the number of bytes.
func (r Reply) Len() int {
	return r.n
}

// Bytes returns a copy of the raw reply bytes.
func (r Reply) Bytes() []byte {
	out := make([]byte, r.n)
	copy(out, r.buf[:r.n])
	return out
}

// Runes maps every byte to one character whose ordinal is the byte value.
// No multi-byte decoding takes place.
func (r Reply) Runes() []rune {
	out := make([]rune, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = rune(r.buf[i])
	}
	return out
}

// String returns the reply decoded one byte per character.
func (r Reply) String() string {
	for i := 0; i < r.n; i++ {
		if r.buf[i] >= 0x80 {
			return string(r.Runes())
		}
	}
	return string(r.buf[:r.n])
}

// Lines splits the reply on CR/LF and drops empty lines.
func (r Reply) Lines() []string {
	return strings.FieldsFunc(r.String(), func(c rune) bool {
		return c == '\r' || c == '\n'
	})
}

// Status classifies the last line of the reply.
func (r Reply) Status() ReplyStatus {
	lines := r.Lines()
	if len(lines) == 0 {
		return StatusNone
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	switch {
	case last == "OK" || last == "SEND OK" || last == "ready":
		return StatusOK
	case last == "ERROR":
		return StatusError
	case last == "FAIL":
		return StatusFail
	case strings.HasPrefix(last, "busy"):
		return StatusBusy
	}
	return StatusNone
}
