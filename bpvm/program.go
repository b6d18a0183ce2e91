package bpvm

import (
	"bytes"
	"fmt"
	"io"
)

// Code is an anonymous sequence of instructions, as produced by the
// combinator functions. Fragments are spliced together by value; a Code
// slice is never modified once built.
type Code []Op

// Program is a named instruction sequence that the machine can JSR into.
type Program struct {
	// Name is the rule name. It is only used in listings and errors.
	Name string

	// Code is the program body. Execution starts at address 0.
	Code Code

	labels Labels
}

// NewProgram wraps code into a Program.
func NewProgram(name string, code Code) *Program {
	return &Program{
		Name:   name,
		Code:   code,
		labels: makeLabels(code),
	}
}

// Labels returns the generated labels of the program, in address order.
func (p *Program) Labels() Labels {
	if p.labels == nil {
		p.labels = makeLabels(p.Code)
	}
	return p.labels
}

// Disassemble writes a listing of the program's instructions to w.
func (p *Program) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	if p.Name != "" {
		buf.WriteString(p.Name)
		buf.WriteByte(':')
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}

	labels := p.Labels()
	next := 0
	writeLabels := func(pc int) error {
		for next < len(labels) && labels[next].Offset == pc {
			buf.WriteString(labels[next].Name)
			buf.WriteByte(':')
			buf.WriteByte('\n')
			next++
		}
		return flush()
	}

	for pc := range p.Code {
		if err := writeLabels(pc); err != nil {
			return total, err
		}
		buf.WriteByte('\t')
		p.writeOp(&buf, pc)
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}
	if err := writeLabels(len(p.Code)); err != nil {
		return total, err
	}
	return total, nil
}

func (p *Program) writeOp(buf *bytes.Buffer, pc int) {
	op := &p.Code[pc]
	meta := op.Code.Meta()
	buf.WriteString(meta.Name)

	switch meta.Operand {
	case OperandOffset:
		label := p.Labels().Find(addOffset(pc+1, op.Offset, len(p.Code)))
		fmt.Fprintf(buf, " %s <.%+d>", label.Name, op.Offset)

	case OperandRule:
		buf.WriteByte(' ')
		buf.WriteString(op.Rule)

	case OperandValue:
		buf.WriteByte(' ')
		writeValue(buf, op.Value)

	case OperandTest, OperandBuilder:
		if op.Text != "" {
			buf.WriteByte(' ')
			buf.WriteString(op.Text)
		}
	}
}

func (p *Program) String() string {
	return fmt.Sprintf("Program{%q %d ops}", p.Name, len(p.Code))
}
