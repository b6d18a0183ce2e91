// Package grammar holds named rules and hands out parsers for them.
package grammar

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/chronos-tachyon/go-backparse/bpvm"
)

// ErrRejected is returned by Parse when the input does not match the
// grammar, or when every way of matching it was refused by a builder.
var ErrRejected = errors.New("input rejected")

// RejectError describes a failed Parse. It wraps ErrRejected.
type RejectError struct {
	Start string

	// Offset is the index of the furthest token that was read, or
	// len(input) if the parse ran into the end of the stream.
	Offset int

	// Token is the token at Offset, or bpvm.EOS.
	Token interface{}
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("%s: %v near token %d (%v)", e.Start, ErrRejected, e.Offset, e.Token)
}

func (e *RejectError) Unwrap() error {
	return ErrRejected
}

// Rule is one named rule of a Grammar.
type Rule struct {
	Name    string
	Forms   []bpvm.Code
	Build   bpvm.Builder
	Program *bpvm.Program
}

// Grammar is a registry of rules. The zero value is not usable; call New.
type Grammar struct {
	rules  map[string]*Rule
	tracer bpvm.Tracer
}

var _ bpvm.Resolver = (*Grammar)(nil)

// New returns an empty Grammar.
func New() *Grammar {
	return &Grammar{rules: make(map[string]*Rule)}
}

// Define compiles a rule made of ordered alternative forms and installs it
// under name, replacing any previous rule of that name. The values pushed by
// the chosen form are passed to build; a nil build keeps them as a
// []interface{}.
//
// Rules referenced by the forms need not exist yet: they are resolved when a
// parser calls them.
func (g *Grammar) Define(name string, build bpvm.Builder, forms ...bpvm.Code) *Rule {
	r := &Rule{
		Name:    name,
		Forms:   forms,
		Build:   build,
		Program: bpvm.NewProgram(name, bpvm.Routine(build, forms...)),
	}
	g.rules[name] = r
	return r
}

// Lookup returns the compiled program of the named rule.
func (g *Grammar) Lookup(name string) (*bpvm.Program, bool) {
	r, found := g.rules[name]
	if !found {
		return nil, false
	}
	return r.Program, true
}

// Rule returns the named rule.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, found := g.rules[name]
	return r, found
}

// Names returns the names of every defined rule, sorted.
func (g *Grammar) Names() []string {
	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetTracer installs t on every parser created by g from now on. A nil t
// turns tracing off.
func (g *Grammar) SetTracer(t bpvm.Tracer) {
	g.tracer = t
}

// Parser returns a new parser for the rule named start.
func (g *Grammar) Parser(start string) *bpvm.Parser {
	x := bpvm.NewParser(g, start)
	if g.tracer != nil {
		x.SetTracer(g.tracer)
	}
	return x
}

// Parse runs a fresh parser for start over tokens followed by bpvm.EOS, and
// returns the value built by start.
func (g *Grammar) Parse(start string, tokens ...interface{}) (interface{}, error) {
	x := g.Parser(start)
	input := make([]interface{}, 0, len(tokens)+1)
	input = append(input, tokens...)
	input = append(input, bpvm.EOS)
	if err := x.Accept(input...); err != nil {
		return nil, err
	}
	if result, ok := x.Result(); ok {
		return result, nil
	}

	offset := x.Furthest() - 1
	if offset < 0 {
		offset = 0
	}
	return nil, &RejectError{
		Start:  start,
		Offset: offset,
		Token:  input[offset],
	}
}

// Disassemble writes the listing of every rule, in name order, to w.
func (g *Grammar) Disassemble(w io.Writer) (int, error) {
	var total int
	for i, name := range g.Names() {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err := g.rules[name].Program.Disassemble(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
