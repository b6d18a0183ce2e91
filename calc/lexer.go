package calc

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/chronos-tachyon/go-backparse/charclass"
)

// Kind is the lexical category of a Token.
type Kind uint8

const (
	Number Kind = iota
	Punct
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Punct:
		return "punct"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Token is one lexeme of an expression. Pos is its byte offset in the
// source text.
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q @%d", t.Kind, t.Text, t.Pos)
}

var (
	spaceClass  = charclass.Set(" \t\r\n")
	digitClass  = charclass.Ranges(charclass.Range{Lo: '0', Hi: '9'})
	numberClass = charclass.Or(digitClass, charclass.Exactly('.'))
	punctClass  = charclass.Set("+-*/%()")
)

// Lex splits src into tokens. Numbers are maximal runs of digits and dots;
// whether such a run is a valid number is decided by the parser.
func Lex(src string) ([]Token, error) {
	var out []Token
	i := 0
	for i < len(src) {
		b := src[i]
		switch {
		case spaceClass.Match(b):
			i += charclass.SpanString(spaceClass, src[i:])

		case numberClass.Match(b):
			n := charclass.SpanString(numberClass, src[i:])
			out = append(out, Token{Kind: Number, Text: src[i : i+n], Pos: i})
			i += n

		case punctClass.Match(b):
			out = append(out, Token{Kind: Punct, Text: src[i : i+1], Pos: i})
			i++

		default:
			return nil, errors.Errorf("unexpected character %q at offset %d", b, i)
		}
	}
	return out, nil
}
