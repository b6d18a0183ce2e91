package bpvm

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

type ruleMap map[string]*Program

func (m ruleMap) Lookup(name string) (*Program, bool) {
	p, found := m[name]
	return p, found
}

func (m ruleMap) define(name string, build Builder, forms ...Code) {
	m[name] = NewProgram(name, Routine(build, forms...))
}

// flat renders a match as name(child,child,...).
func flat(name string) Builder {
	return func(children []interface{}) (interface{}, bool) {
		var buf bytes.Buffer
		buf.WriteString(name)
		buf.WriteByte('(')
		writeFlatList(&buf, children)
		buf.WriteByte(')')
		return buf.String(), true
	}
}

func writeFlatList(buf *bytes.Buffer, list []interface{}) {
	for i, item := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		switch x := item.(type) {
		case nil:
			buf.WriteString("nil")
		case []interface{}:
			buf.WriteByte('[')
			writeFlatList(buf, x)
			buf.WriteByte(']')
		default:
			fmt.Fprint(buf, x)
		}
	}
}

// rejectIf wraps flat(name) with a builder that refuses a match when the
// rendered child at index i equals s.
func rejectIf(name string, i int, s string) Builder {
	build := flat(name)
	return func(children []interface{}) (interface{}, bool) {
		if i < len(children) && children[i] == s {
			return nil, false
		}
		return build(children)
	}
}

func tokens(s string) []interface{} {
	out := make([]interface{}, 0, len(s)+1)
	for _, ch := range s {
		out = append(out, string(ch))
	}
	return out
}

func TestParser_Accept(t *testing.T) {
	type testrow struct {
		Name     string
		Rules    func(m ruleMap)
		Start    string
		Input    string
		Status   RunState
		Expected string
	}

	notB := Test(func(tok interface{}) (interface{}, bool) {
		if tok == "B" {
			return nil, false
		}
		return tok, true
	})

	abd := func(build1, build2 Builder) func(m ruleMap) {
		return func(m ruleMap) {
			m.define("r1", build1, Seq(Token("A"), Rule("r2"), Token("D")))
			m.define("r2", build2, Rule("r3"), Rule("r4"))
			m.define("r3", flat("r3"), Token("B"))
			m.define("r4", flat("r4"), Token("B"))
		}
	}

	data := []testrow{
		testrow{
			Name: "sequence",
			Rules: func(m ruleMap) {
				m.define("r1", flat("r1"), Seq(Token("A"), Rule("r2"), Token("D")))
				m.define("r2", flat("r2"), Token("B"), Token("C"))
			},
			Start:    "r1",
			Input:    "ACD",
			Status:   SuccessState,
			Expected: "r1(A,r2(C),D)",
		},
		testrow{
			Name: "ordered-choice",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Rule("x"), Rule("y"))
				m.define("x", flat("x"), Token("A"))
				m.define("y", flat("y"), Token("A"))
			},
			Start:    "s",
			Input:    "A",
			Status:   SuccessState,
			Expected: "s(x(A))",
		},
		testrow{
			Name: "epsilon",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq())
			},
			Start:    "s",
			Input:    "",
			Status:   SuccessState,
			Expected: "s()",
		},
		testrow{
			Name: "epsilon-extra-token",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq())
			},
			Start:  "s",
			Input:  "A",
			Status: FailureState,
		},
		testrow{
			Name: "no-alternatives",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"))
			},
			Start:  "s",
			Input:  "",
			Status: FailureState,
		},
		testrow{
			Name: "greedy",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), ZeroOrMore(Token("A")))
			},
			Start:    "s",
			Input:    "AAA",
			Status:   SuccessState,
			Expected: "s([A,A,A])",
		},
		testrow{
			Name: "give-back",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(ZeroOrMore(Token("A")), Token("A"), Token("A")))
			},
			Start:    "s",
			Input:    "AAAA",
			Status:   SuccessState,
			Expected: "s([A,A],A,A)",
		},
		testrow{
			Name: "one-or-more-empty",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(OneOrMore(Token("A")), Token("B")))
			},
			Start:  "s",
			Input:  "B",
			Status: FailureState,
		},
		testrow{
			Name: "one-or-more",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(OneOrMore(Token("A")), Token("B")))
			},
			Start:    "s",
			Input:    "AAB",
			Status:   SuccessState,
			Expected: "s([A,A],B)",
		},
		testrow{
			Name: "optional-middle",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(Token("A"), ZeroOrOne(Token("B")), Token("C")), Token("C"))
			},
			Start:    "s",
			Input:    "AC",
			Status:   SuccessState,
			Expected: "s(A,nil,C)",
		},
		testrow{
			Name: "optional-second-form",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(Token("A"), ZeroOrOne(Token("B")), Token("C")), Token("C"))
			},
			Start:    "s",
			Input:    "C",
			Status:   SuccessState,
			Expected: "s(C)",
		},
		testrow{
			Name: "optional-give-back",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(Token("A"), ZeroOrOne(Token("B")), Token("B")))
			},
			Start:    "s",
			Input:    "AB",
			Status:   SuccessState,
			Expected: "s(A,nil,B)",
		},
		testrow{
			Name: "optional-taken",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(Token("A"), ZeroOrOne(Token("B")), Token("B")))
			},
			Start:    "s",
			Input:    "ABB",
			Status:   SuccessState,
			Expected: "s(A,B,B)",
		},
		testrow{
			Name: "default",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), Seq(Default("-", Token("A")), Token("B")))
			},
			Start:    "s",
			Input:    "B",
			Status:   SuccessState,
			Expected: "s(-,B)",
		},
		testrow{
			Name: "nested-quantifiers",
			Rules: func(m ruleMap) {
				m.define("s", flat("s"), ZeroOrMore(Seq(Token("A"), ZeroOrMore(Token("B")))))
			},
			Start:    "s",
			Input:    "ABBA",
			Status:   SuccessState,
			Expected: "s([A,[B,B],A,[]])",
		},
		testrow{
			Name: "mutual-recursion",
			Rules: func(m ruleMap) {
				m.define("a", flat("a"), Seq(Token("A"), Rule("b")), Token("A"))
				m.define("b", flat("b"), Seq(Token("B"), Rule("a")))
			},
			Start:    "a",
			Input:    "ABABA",
			Status:   SuccessState,
			Expected: "a(A,b(B,a(A,b(B,a(A)))))",
		},
		testrow{
			Name: "mutual-recursion-dangling",
			Rules: func(m ruleMap) {
				m.define("a", flat("a"), Seq(Token("A"), Rule("b")), Token("A"))
				m.define("b", flat("b"), Seq(Token("B"), Rule("a")))
			},
			Start:  "a",
			Input:  "ABAB",
			Status: FailureState,
		},
		testrow{
			Name:     "ambiguous",
			Rules:    abd(flat("r1"), flat("r2")),
			Start:    "r1",
			Input:    "ABD",
			Status:   SuccessState,
			Expected: "r1(A,r2(r3(B)),D)",
		},
		testrow{
			Name:     "reject-inner",
			Rules:    abd(flat("r1"), rejectIf("r2", 0, "r3(B)")),
			Start:    "r1",
			Input:    "ABD",
			Status:   SuccessState,
			Expected: "r1(A,r2(r4(B)),D)",
		},
		testrow{
			Name:   "reject-outer",
			Rules:  abd(rejectIf("r1", 1, "r2(r3(B))"), flat("r2")),
			Start:  "r1",
			Input:  "ABD",
			Status: FailureState,
		},
		testrow{
			Name: "reject-token",
			Rules: func(m ruleMap) {
				m.define("r1", flat("r1"), Seq(Token("A"), Rule("r2"), Token("D")))
				m.define("r2", flat("r2"), notB)
			},
			Start:  "r1",
			Input:  "ABD",
			Status: FailureState,
		},
		testrow{
			Name: "accept-token",
			Rules: func(m ruleMap) {
				m.define("r1", flat("r1"), Seq(Token("A"), Rule("r2"), Token("D")))
				m.define("r2", flat("r2"), notB)
			},
			Start:    "r1",
			Input:    "ACD",
			Status:   SuccessState,
			Expected: "r1(A,r2(C),D)",
		},
		testrow{
			Name: "unbuilt",
			Rules: func(m ruleMap) {
				m.define("s", nil, Seq(Token("A"), Const(7)))
			},
			Start:    "s",
			Input:    "A",
			Status:   SuccessState,
			Expected: "[A 7]",
		},
	}

	for i, row := range data {
		m := make(ruleMap)
		row.Rules(m)
		x := NewParser(m, row.Start)
		input := append(tokens(row.Input), EOS)
		if err := x.Accept(input...); err != nil {
			t.Errorf("%s/%03d/%s: error: %v", t.Name(), i, row.Name, err)
			continue
		}
		if x.Status() != row.Status {
			t.Errorf("%s/%03d/%s: expected status %v, got %v", t.Name(), i, row.Name, row.Status, x.Status())
			continue
		}
		result, ok := x.Result()
		if ok != (row.Status == SuccessState) {
			t.Errorf("%s/%03d/%s: Result: unexpected ok=%v", t.Name(), i, row.Name, ok)
			continue
		}
		if !ok {
			continue
		}
		if actual := fmt.Sprint(result); actual != row.Expected {
			t.Errorf("%s/%03d/%s: expected %q, got %q", t.Name(), i, row.Name, row.Expected, actual)
		}
		if x.Consumed() != len(row.Input) {
			t.Errorf("%s/%03d/%s: expected %d tokens consumed, got %d", t.Name(), i, row.Name, len(row.Input), x.Consumed())
		}
	}
}

func TestParser_Incremental(t *testing.T) {
	m := make(ruleMap)
	m.define("r1", flat("r1"), Seq(Token("A"), Rule("r2"), Token("D")))
	m.define("r2", flat("r2"), Token("B"), Token("C"))

	x := NewParser(m, "r1")
	for _, chunk := range [][]interface{}{{"A"}, {}, {"C", "D"}} {
		if err := x.Accept(chunk...); err != nil {
			t.Fatalf("%s: Accept(%v): %v", t.Name(), chunk, err)
		}
		if x.Status() != RunningState {
			t.Fatalf("%s: Accept(%v): expected running, got %v", t.Name(), chunk, x.Status())
		}
		if err := x.Step(); err != ErrInputPending {
			t.Fatalf("%s: Step: expected ErrInputPending, got %v", t.Name(), err)
		}
	}
	if err := x.Accept(EOS); err != nil {
		t.Fatalf("%s: Accept(EOS): %v", t.Name(), err)
	}
	if result, ok := x.Result(); !ok || result != "r1(A,r2(C),D)" {
		t.Errorf("%s: expected r1(A,r2(C),D), got %v (%v)", t.Name(), result, x.Status())
	}
	if x.Depth() != 0 {
		t.Errorf("%s: expected depth 0, got %d", t.Name(), x.Depth())
	}
	if err := x.Accept("A"); err != ErrExecutionHalted {
		t.Errorf("%s: expected ErrExecutionHalted, got %v", t.Name(), err)
	}
	if err := x.Step(); err != ErrExecutionHalted {
		t.Errorf("%s: expected ErrExecutionHalted, got %v", t.Name(), err)
	}
}

func TestParser_EarlyFailure(t *testing.T) {
	m := make(ruleMap)
	m.define("s", flat("s"), Seq(Token("A"), Token("B")))

	x := NewParser(m, "s")
	if err := x.Accept("B"); err != nil {
		t.Fatalf("%s: %v", t.Name(), err)
	}
	if x.Status() != FailureState {
		t.Errorf("%s: expected failure before EOS, got %v", t.Name(), x.Status())
	}
	if x.Furthest() != 1 {
		t.Errorf("%s: expected 1 token read, got %d", t.Name(), x.Furthest())
	}
}

func TestParser_StreamClosed(t *testing.T) {
	m := make(ruleMap)
	m.define("s", flat("s"), ZeroOrMore(Token("A")))

	x := NewParser(m, "s")
	if err := x.Accept("A", EOS, "A"); err != ErrStreamClosed {
		t.Errorf("%s: expected ErrStreamClosed, got %v", t.Name(), err)
	}
	if x.Cursor() != 0 || x.Status() != RunningState {
		t.Errorf("%s: rejected chunk changed the parser", t.Name())
	}
}

func TestParser_Run(t *testing.T) {
	m := make(ruleMap)
	m.define("s", flat("s"), ZeroOrMore(Token("A")))

	x := NewParser(m, "s")
	if err := x.Accept("A", "A"); err != nil {
		t.Fatalf("%s: %v", t.Name(), err)
	}
	if err := x.Run(); err != nil {
		t.Fatalf("%s: %v", t.Name(), err)
	}
	if x.Status() != FailureState {
		t.Errorf("%s: expected failure without EOS, got %v", t.Name(), x.Status())
	}
}

func TestParser_UndefinedRule(t *testing.T) {
	m := make(ruleMap)
	m.define("s", flat("s"), Seq(Token("A"), Rule("missing")), Token("A"))

	x := NewParser(m, "s")
	err := x.Accept("A", EOS)
	if !errors.Is(err, ErrUndefinedRule) {
		t.Fatalf("%s: expected ErrUndefinedRule, got %v", t.Name(), err)
	}
	var rterr *RuntimeError
	if !errors.As(err, &rterr) || rterr.Rule != "s" || rterr.Op == nil || rterr.Op.Rule != "missing" {
		t.Errorf("%s: unexpected error details: %#v", t.Name(), err)
	}
	if x.Status() != ErrorState {
		t.Errorf("%s: expected error state, got %v", t.Name(), x.Status())
	}
}

func TestParser_UnknownOpcode(t *testing.T) {
	m := ruleMap{"s": NewProgram("s", Code{{Code: OpCode(99)}})}

	x := NewParser(m, "s")
	err := x.Accept(EOS)
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Errorf("%s: expected ErrUnknownOpcode, got %v", t.Name(), err)
	}
}

func TestParser_CodeRange(t *testing.T) {
	m := ruleMap{"s": NewProgram("s", Code{{Code: OpFRAME}})}

	x := NewParser(m, "s")
	err := x.Accept(EOS)
	if !errors.Is(err, ErrCodeRange) {
		t.Errorf("%s: expected ErrCodeRange, got %v", t.Name(), err)
	}
}

type countingTracer struct {
	ops   map[OpCode]int
	rules map[string]bool
}

func (ct *countingTracer) Trace(x *Parser, op Op) {
	ct.ops[op.Code]++
	ct.rules[x.Rule()] = true
}

func TestParser_Tracer(t *testing.T) {
	m := make(ruleMap)
	m.define("s", flat("s"), Seq(ZeroOrMore(Token("A")), Token("A")))

	ct := &countingTracer{ops: make(map[OpCode]int), rules: make(map[string]bool)}
	x := NewParser(m, "s")
	x.SetTracer(ct)
	if err := x.Accept("A", "A", EOS); err != nil {
		t.Fatalf("%s: %v", t.Name(), err)
	}
	if x.Status() != SuccessState {
		t.Fatalf("%s: expected success, got %v", t.Name(), x.Status())
	}
	if ct.ops[OpSTOP] != 1 || ct.ops[OpJSR] != 1 || ct.ops[OpRET] != 1 {
		t.Errorf("%s: unexpected trace counts: %v", t.Name(), ct.ops)
	}
	if !ct.rules["s"] || !ct.rules["<bootstrap s>"] {
		t.Errorf("%s: unexpected traced rules: %v", t.Name(), ct.rules)
	}
}

func TestRunState_String(t *testing.T) {
	expected := []string{"running", "success", "failure", "error", "unknown"}
	for i, s := range []RunState{RunningState, SuccessState, FailureState, ErrorState, RunState(9)} {
		if s.String() != expected[i] {
			t.Errorf("%s/%03d: expected %q, got %q", t.Name(), i, expected[i], s.String())
		}
	}
}
