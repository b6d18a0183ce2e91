package calc

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ErrDivideByZero is returned by Eval for x/0 and x%0.
var ErrDivideByZero = errors.New("division by zero")

// Expr is a node of the expression tree built by the parser.
type Expr interface {
	Eval() (float64, error)

	// String renders the node as an S-expression.
	String() string
}

// Num is a numeric literal.
type Num struct {
	Value float64
	Pos   int
}

func (n *Num) Eval() (float64, error) {
	return n.Value, nil
}

func (n *Num) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Neg is unary minus.
type Neg struct {
	X Expr
}

func (n *Neg) Eval() (float64, error) {
	x, err := n.X.Eval()
	if err != nil {
		return 0, err
	}
	return -x, nil
}

func (n *Neg) String() string {
	return "(- " + n.X.String() + ")"
}

// Binary is a binary operation. Op is one of + - * / %.
type Binary struct {
	Op  string
	Pos int
	X   Expr
	Y   Expr
}

func (b *Binary) Eval() (float64, error) {
	x, err := b.X.Eval()
	if err != nil {
		return 0, err
	}
	y, err := b.Y.Eval()
	if err != nil {
		return 0, err
	}

	switch b.Op {
	case "+":
		return x + y, nil
	case "-":
		return x - y, nil
	case "*":
		return x * y, nil
	case "/", "%":
		if y == 0 {
			return 0, errors.Wrapf(ErrDivideByZero, "%s at offset %d", b.Op, b.Pos)
		}
		if b.Op == "/" {
			return x / y, nil
		}
		return math.Mod(x, y), nil
	}
	return 0, errors.Errorf("unknown operator %q at offset %d", b.Op, b.Pos)
}

func (b *Binary) String() string {
	return "(" + b.Op + " " + b.X.String() + " " + b.Y.String() + ")"
}
