package util

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscapeNonASCII rewrites s as pure ASCII. Code points below U+0100 become
// \xNN, the rest of the BMP \uNNNN, and anything above \UNNNNNNNN. Bytes that
// are not valid UTF-8 are escaped one at a time as \xNN so malformed input
// never fails. ASCII input is returned unchanged.
func EscapeNonASCII(s string) string {
	if isASCII(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/2)

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size <= 1:
			fmt.Fprintf(&b, `\x%02x`, s[i])
		case r < utf8.RuneSelf:
			b.WriteByte(byte(r))
		case r <= 0xff:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
		i += size
	}

	return b.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
