package bpvm

import (
	"fmt"
)

// The functions in this file compile grammar fragments into Code. They are
// pure: every call returns a fresh slice and never alters its arguments.

// Test matches one token with f.
func Test(f TestFunc) Code {
	assert(f != nil, "nil TestFunc")
	return Code{{Code: OpTEST, Test: f}}
}

// Token matches one token equal to v, pushing the token itself.
//
// The comparison uses ==, so v and the tokens it meets must not both be of
// the same uncomparable type.
func Token(v interface{}) Code {
	return Code{{
		Code: OpTEST,
		Test: func(tok interface{}) (interface{}, bool) {
			if tok == v {
				return tok, true
			}
			return nil, false
		},
		Text: describe(v),
	}}
}

// Named labels a single-instruction TEST fragment for listings.
func Named(text string, code Code) Code {
	assert(len(code) == 1 && code[0].Code == OpTEST, "Named wants a single TEST")
	out := Code{code[0]}
	out[0].Text = text
	return out
}

// Const pushes v without consuming a token.
func Const(v interface{}) Code {
	return Code{{Code: OpPUSHD, Value: v}}
}

// Rule calls the rule with the given name. The name is resolved when the
// call executes, so rules may refer to themselves or to rules defined later.
func Rule(name string) Code {
	return Code{{Code: OpJSR, Rule: name}}
}

// Seq concatenates fragments. Each step pushes its own values.
func Seq(parts ...Code) Code {
	n := 0
	for _, part := range parts {
		n += len(part)
	}
	out := make(Code, 0, n)
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

// Alternatives tries each alternative in order and keeps the first one whose
// whole body succeeds. If none does, the failure escapes to whatever choice
// point was active before the construct.
//
//	    FAILPOINT .A1      ; a1
//	    <a1>
//	    JUMP .J1
//	.A1:
//	    FAILPOINT .A2      ; a2
//	    <a2>
//	.J1:
//	    JUMP .END
//	.A2:
//	    FAIL
//	.END:
//
// len(Alternatives(a1..an)) == Σ len(ai) + 2n + 1. With no alternatives at
// all, the construct is a lone FAIL.
func Alternatives(alternatives ...Code) Code {
	if len(alternatives) == 0 {
		return Code{{Code: OpFAIL}}
	}
	n := 1
	for _, alt := range alternatives {
		n += len(alt) + 2
	}
	out := make(Code, 0, n)
	for i, alt := range alternatives {
		if i > 0 {
			out = append(out, Op{Code: OpJUMP, Offset: len(alt) + 1})
		}
		out = append(out, Op{Code: OpFAILPOINT, Offset: len(alt) + 1})
		out = append(out, alt...)
	}
	out = append(out,
		Op{Code: OpJUMP, Offset: 1},
		Op{Code: OpFAIL},
	)
	assert(len(out) == n, "Alternatives: %d ops, expected %d", len(out), n)
	return out
}

// ZeroOrMore matches body as many times as possible and pushes the values of
// the completed iterations as one []interface{}.
//
// The FAILPOINT of every completed iteration stays pending, so a later
// failure can give back iterations one at a time.
func ZeroOrMore(body Code) Code {
	out := make(Code, 0, len(body)+4)
	out = append(out,
		Op{Code: OpFRAME},
		Op{Code: OpFAILPOINT, Offset: len(body) + 1},
	)
	out = append(out, body...)
	out = append(out,
		Op{Code: OpJUMP, Offset: -(len(body) + 2)},
		Op{Code: OpPACK},
	)
	return out
}

// OneOrMore is ZeroOrMore without a choice point around the first
// iteration: if it fails, the whole construct fails.
func OneOrMore(body Code) Code {
	out := make(Code, 0, len(body)+4)
	out = append(out, Op{Code: OpFRAME})
	out = append(out, body...)
	out = append(out,
		Op{Code: OpFAILPOINT, Offset: 1},
		Op{Code: OpJUMP, Offset: -(len(body) + 2)},
		Op{Code: OpPACK},
	)
	return out
}

// ZeroOrOne tries body once. If it fails, nil is pushed in its place.
func ZeroOrOne(body Code) Code {
	return Default(nil, body)
}

// Default tries body once. If it fails, v is pushed in its place.
func Default(v interface{}, body Code) Code {
	out := make(Code, 0, len(body)+3)
	out = append(out, Op{Code: OpFAILPOINT, Offset: len(body) + 1})
	out = append(out, body...)
	out = append(out,
		Op{Code: OpJUMP, Offset: 1},
		Op{Code: OpPUSHD, Value: v},
	)
	return out
}

// Routine is the complete body of one rule: a scope around the ordered
// alternatives, packed through build (which may be nil) and returned to the
// caller.
func Routine(build Builder, forms ...Code) Code {
	alts := Alternatives(forms...)
	out := make(Code, 0, len(alts)+3)
	out = append(out, Op{Code: OpFRAME})
	out = append(out, alts...)
	pack := Op{Code: OpPACK, Build: build}
	if build != nil {
		pack.Text = "build"
	}
	out = append(out, pack, Op{Code: OpRET})
	return out
}

// Bootstrap is the fixed entry program for a parse of start: it calls start,
// then requires EOS. Its first FAILPOINT guarantees that a choice point
// always exists, leading to REJECT once every alternative is exhausted.
func Bootstrap(start string) *Program {
	code := Code{
		{Code: OpFAILPOINT, Offset: 3},
		{Code: OpJSR, Rule: start},
		Token(EOS)[0],
		{Code: OpSTOP},
		{Code: OpREJECT},
	}
	return NewProgram(fmt.Sprintf("<bootstrap %s>", start), code)
}
