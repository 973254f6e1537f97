package core

// AccumulationBuffer collects an in-progress reply one byte at a time.
// Its length never exceeds ReplyCapacity; appending to a full buffer fails
// instead of truncating or wrapping.
type AccumulationBuffer struct {
	buf [ReplyCapacity]byte
	pos int
}

// Append stores b at the end of the buffer.
func (a *AccumulationBuffer) Append(b byte) error {
	if a.pos >= len(a.buf) {
		return ErrBufferOverflow
	}
	a.buf[a.pos] = b
	a.pos++
	return nil
}

// Len returns the number of buffered bytes.
func (a *AccumulationBuffer) Len() int {
	return a.pos
}

// Cap returns the fixed capacity.
func (a *AccumulationBuffer) Cap() int {
	return len(a.buf)
}

// Bytes returns the buffered bytes. The slice aliases the buffer and is only
// valid until the next Append or Reset.
func (a *AccumulationBuffer) Bytes() []byte {
	return a.buf[:a.pos]
}

// Reply converts the buffered bytes into a Reply without clearing them.
func (a *AccumulationBuffer) Reply() Reply {
	var r Reply
	r.n = copy(r.buf[:], a.buf[:a.pos])
	return r
}

// Reset clears the buffer
func (a *AccumulationBuffer) Reset() {
	a.pos = 0
}
