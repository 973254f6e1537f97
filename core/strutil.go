package core

// itoa converts an integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// quote renders s for a log line with control characters escaped, so
// replies containing CR/LF stay on one line.
func quote(s string) string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for _, c := range []rune(s) {
		switch {
		case c == '\r':
			buf = append(buf, '\\', 'r')
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '"' || c == '\\':
			buf = append(buf, '\\', byte(c))
		case c < 0x20 || (c >= 0x7f && c <= 0xff):
			buf = append(buf, '\\', 'x', hex[c>>4], hex[c&0xf])
		default:
			buf = append(buf, string(c)...)
		}
	}
	return string(append(buf, '"'))
}
