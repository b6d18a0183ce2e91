package bpvm

import (
	"bytes"
	"fmt"
)

// TestFunc inspects one token. It returns the value to push and true if the
// token is acceptable, or false to make the TEST instruction fail.
type TestFunc func(tok interface{}) (interface{}, bool)

// Builder turns the values collected by PACK into one result. Returning false
// rejects the match, which the machine handles like a failed TEST.
type Builder func(children []interface{}) (interface{}, bool)

// Op is a single machine instruction.
type Op struct {
	// Code is this instruction's opcode.
	Code OpCode

	// Offset is the relative target of FAILPOINT and JUMP, counted in
	// instructions from the one that follows.
	Offset int

	// Rule is the rule name called by JSR.
	Rule string

	// Value is the constant pushed by PUSHD.
	Value interface{}

	// Test is the predicate run by TEST.
	Test TestFunc

	// Build is the optional builder run by PACK.
	Build Builder

	// Text is a human-readable description of Test or Build, used only in
	// listings.
	Text string
}

// String provides a programmer-friendly debugging string for the Op.
func (op Op) String() string {
	var buf bytes.Buffer
	meta := op.Code.Meta()
	buf.WriteString(meta.Name)
	buf.WriteByte('<')
	switch meta.Operand {
	case OperandOffset:
		fmt.Fprintf(&buf, "%+d", op.Offset)
	case OperandRule:
		buf.WriteString(op.Rule)
	case OperandValue:
		writeValue(&buf, op.Value)
	case OperandTest, OperandBuilder:
		buf.WriteString(op.Text)
	}
	buf.WriteByte('>')
	return buf.String()
}
