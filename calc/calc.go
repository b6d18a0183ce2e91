// Package calc is an arithmetic expression evaluator built on a backparse
// grammar.
//
// The grammar, in order of increasing precedence:
//
//   expr    <- sum
//   sum     <- product (("+" / "-") product)*
//   product <- unary (("*" / "/" / "%") unary)*
//   unary   <- "-" unary / term
//   term    <- "(" expr ")" / number
//
// Binary operators associate to the left.
package calc

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chronos-tachyon/go-backparse/bpvm"
	"github.com/chronos-tachyon/go-backparse/builder"
	"github.com/chronos-tachyon/go-backparse/grammar"
)

// Start is the name of the top-level rule.
const Start = "expr"

// Calculator parses and evaluates expressions.
type Calculator struct {
	g *grammar.Grammar
}

// New returns a Calculator with its grammar compiled.
func New() *Calculator {
	g := grammar.New()
	g.Define("expr", builder.Pick(0), bpvm.Rule("sum"))
	g.Define("sum", foldLeft,
		bpvm.Seq(bpvm.Rule("product"), bpvm.ZeroOrMore(bpvm.Seq(punct("+", "-"), bpvm.Rule("product")))))
	g.Define("product", foldLeft,
		bpvm.Seq(bpvm.Rule("unary"), bpvm.ZeroOrMore(bpvm.Seq(punct("*", "/", "%"), bpvm.Rule("unary")))))
	g.Define("unary", buildUnary,
		bpvm.Seq(punct("-"), bpvm.Rule("unary")),
		bpvm.Rule("term"))
	g.Define("term", buildTerm,
		bpvm.Seq(punct("("), bpvm.Rule("expr"), punct(")")),
		bpvm.Rule("number"))
	g.Define("number", buildNumber, numberToken)
	return &Calculator{g: g}
}

// Grammar returns the grammar used by c.
func (c *Calculator) Grammar() *grammar.Grammar {
	return c.g
}

// SetTracer installs t on the parsers used by c.
func (c *Calculator) SetTracer(t bpvm.Tracer) {
	c.g.SetTracer(t)
}

// Parse lexes and parses src into an expression tree.
func (c *Calculator) Parse(src string) (Expr, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	input := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		input[i] = tok
	}

	v, err := c.g.Parse(Start, input...)
	if err != nil {
		var rej *grammar.RejectError
		if !errors.As(err, &rej) {
			return nil, errors.Wrap(err, "parse")
		}
		if tok, ok := rej.Token.(Token); ok {
			return nil, errors.Wrapf(err, "syntax error at offset %d near %q", tok.Pos, tok.Text)
		}
		return nil, errors.Wrap(err, "syntax error at end of input")
	}
	return v.(Expr), nil
}

// Eval parses src and computes its value.
func (c *Calculator) Eval(src string) (float64, error) {
	expr, err := c.Parse(src)
	if err != nil {
		return 0, err
	}
	return expr.Eval()
}

// punct matches a Punct token whose text is one of ops.
func punct(ops ...string) bpvm.Code {
	var buf bytes.Buffer
	for i, op := range ops {
		if i > 0 {
			buf.WriteByte('|')
		}
		buf.WriteString(strconv.Quote(op))
	}
	return bpvm.Named(buf.String(), bpvm.Test(func(v interface{}) (interface{}, bool) {
		tok, ok := v.(Token)
		if !ok || tok.Kind != Punct {
			return nil, false
		}
		for _, op := range ops {
			if tok.Text == op {
				return tok, true
			}
		}
		return nil, false
	}))
}

var numberToken = bpvm.Named("number", bpvm.Test(func(v interface{}) (interface{}, bool) {
	tok, ok := v.(Token)
	if !ok || tok.Kind != Number {
		return nil, false
	}
	return tok, true
}))

// buildNumber rejects runs like "1.2.3" that the lexer lets through.
func buildNumber(children []interface{}) (interface{}, bool) {
	tok := children[0].(Token)
	value, err := strconv.ParseFloat(tok.Text, 64)
	if err != nil {
		return nil, false
	}
	return &Num{Value: value, Pos: tok.Pos}, true
}

func buildTerm(children []interface{}) (interface{}, bool) {
	if len(children) == 3 {
		return children[1], true
	}
	return children[0], true
}

func buildUnary(children []interface{}) (interface{}, bool) {
	if len(children) == 2 {
		return &Neg{X: children[1].(Expr)}, true
	}
	return children[0], true
}

// foldLeft builds a left-leaning chain of Binary nodes out of
// [first, [op, operand, op, operand, ...]].
func foldLeft(children []interface{}) (interface{}, bool) {
	acc := children[0].(Expr)
	rest := children[1].([]interface{})
	for i := 0; i+1 < len(rest); i += 2 {
		op := rest[i].(Token)
		acc = &Binary{
			Op:  op.Text,
			Pos: op.Pos,
			X:   acc,
			Y:   rest[i+1].(Expr),
		}
	}
	return acc, true
}
