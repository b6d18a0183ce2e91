package charclass

import (
	"bytes"
	"fmt"
)

// classString renders c as a bracket expression. Runs of three or more
// consecutive bytes collapse into lo-hi.
func classString(c Class) string {
	var buf bytes.Buffer
	buf.WriteByte('[')

	var lo, hi uint
	var have bool
	flush := func() {
		if !have {
			return
		}
		writeClassByte(&buf, byte(lo))
		switch {
		case hi == lo:
		case hi == lo+1:
			writeClassByte(&buf, byte(hi))
		default:
			buf.WriteByte('-')
			writeClassByte(&buf, byte(hi))
		}
	}

	c.ForEach(func(b byte) {
		if have && uint(b) == hi+1 {
			hi = uint(b)
			return
		}
		flush()
		lo, hi, have = uint(b), uint(b), true
	})
	flush()

	buf.WriteByte(']')
	return buf.String()
}

func writeClassByte(buf *bytes.Buffer, b byte) {
	switch {
	case b == '\\' || b == ']' || b == '-' || b == '^':
		buf.WriteByte('\\')
		buf.WriteByte(b)
	case b >= 0x21 && b < 0x7f:
		buf.WriteByte(b)
	default:
		fmt.Fprintf(buf, "\\x%02x", b)
	}
}
