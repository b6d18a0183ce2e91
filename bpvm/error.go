package bpvm

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode   = errors.New("invalid instruction: unknown opcode")
	ErrUndefinedRule   = errors.New("undefined rule")
	ErrCodeRange       = errors.New("execution ran past the end of the program")
	ErrExecutionHalted = errors.New("execution already halted")
	ErrStreamClosed    = errors.New("token after end of stream")
	ErrInputPending    = errors.New("TEST needs a token that has not been accepted yet")
)

// RuntimeError is an error encountered during the execution of a program.
// Apart from ErrUndefinedRule, which is a mistake in the grammar, this
// typically means that hand-written code is being run.
type RuntimeError struct {
	Err    error
	Rule   string
	PC     int
	Cursor int
	Op     *Op
}

func (e *RuntimeError) Error() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "github.com/chronos-tachyon/go-backparse/bpvm: runtime error @ %s PC %d cursor %d: ", e.Rule, e.PC, e.Cursor)
	if e.Op != nil {
		buf.WriteString(e.Op.String())
		buf.WriteString(": ")
	}
	buf.WriteString(e.Err.Error())
	return buf.String()
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
