package bpvm

import (
	"bytes"
	"errors"
	"fmt"
)

// assert panics if cond is false.
func assert(cond bool, format string, args ...interface{}) {
	if !cond {
		var buf bytes.Buffer
		buf.WriteString("assertion failed: ")
		fmt.Fprintf(&buf, format, args...)
		panic(errors.New(buf.String()))
	}
}

// addOffset calculates `pc + s`, checking that the result lands inside a
// program of n instructions. Landing exactly on n is allowed.
//
// This function will panic if the target is out of range.
//
func addOffset(pc int, s int, n int) int {
	target := pc + s
	if target < 0 || target > n {
		panic(fmt.Errorf("code offset out of range: %d%+d not in [0..%d]", pc, s, n))
	}
	return target
}

func writeValue(buf *bytes.Buffer, v interface{}) {
	switch x := v.(type) {
	case nil:
		buf.WriteString("nil")
	case eosToken:
		buf.WriteString("EOS")
	case string:
		fmt.Fprintf(buf, "%q", x)
	case rune:
		fmt.Fprintf(buf, "%q", x)
	case fmt.Stringer:
		buf.WriteString(x.String())
	default:
		fmt.Fprintf(buf, "%v", x)
	}
}

func describe(v interface{}) string {
	var buf bytes.Buffer
	writeValue(&buf, v)
	return buf.String()
}
