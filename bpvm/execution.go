package bpvm

type RunState uint8

const (
	RunningState RunState = iota
	SuccessState
	FailureState
	ErrorState
)

func (s RunState) String() string {
	switch s {
	case RunningState:
		return "running"
	case SuccessState:
		return "success"
	case FailureState:
		return "failure"
	case ErrorState:
		return "error"
	}
	return "unknown"
}

type eosToken struct{}

func (eosToken) String() string { return "EOS" }

// EOS is the end-of-stream token. It must be the last token accepted by a
// Parser, and no caller token ever compares equal to it.
var EOS interface{} = eosToken{}

// Resolver maps rule names to their compiled programs.
type Resolver interface {
	Lookup(name string) (*Program, bool)
}

// Tracer observes a Parser. Trace is called before each instruction runs.
type Tracer interface {
	Trace(x *Parser, op Op)
}

// Parser is the context of a parse-in-progress: one instance of the machine.
//
// - The data stack lives in cells; sp and fp index into it. Cells are
//   append-only between failures: a failure truncates cells back to the
//   length saved in the backtrack record it restores.
//
// - records is the backtrack stack. FAILPOINT pushes a record; FAIL, a
//   failed TEST and a rejecting builder pop them. Success never pops one.
//
// - tokens is the append-only token log; cursor indexes the next token
//   to read.
//
type Parser struct {
	resolver Resolver
	tracer   Tracer

	prog   *Program
	pc     int
	fp     int
	sp     int
	cursor int
	depth  int

	cells   []cell
	records []Record

	tokens   []interface{}
	closed   bool
	furthest int

	state RunState
}

// NewParser returns a machine that parses the rule named start, resolving
// rule names with r.
func NewParser(r Resolver, start string) *Parser {
	return &Parser{
		resolver: r,
		prog:     Bootstrap(start),
		fp:       nilCell,
		sp:       nilCell,
		cells:    make([]cell, 0, 64),
		records:  make([]Record, 0, 16),
	}
}

// SetTracer installs t, or removes the current tracer if t is nil.
func (x *Parser) SetTracer(t Tracer) {
	x.tracer = t
}

// Status returns the run state of the machine.
func (x *Parser) Status() RunState {
	return x.state
}

// Result returns the value built by the start rule. It is only available
// once the machine has reached SuccessState.
func (x *Parser) Result() (interface{}, bool) {
	if x.state != SuccessState {
		return nil, false
	}
	// The bootstrap program leaves [..., result, EOS] on the stack.
	top := x.cells[x.sp]
	return x.cells[top.link].value, true
}

// Rule returns the name of the program being executed.
func (x *Parser) Rule() string {
	return x.prog.Name
}

// PC returns the address of the next instruction to execute.
func (x *Parser) PC() int {
	return x.pc
}

// Cursor returns the index of the next token to read. After success, it is
// the number of tokens consumed, EOS included.
func (x *Parser) Cursor() int {
	return x.cursor
}

// Consumed returns the number of caller tokens matched by the parse, not
// counting EOS.
func (x *Parser) Consumed() int {
	if x.cursor > 0 && x.tokens[x.cursor-1] == EOS {
		return x.cursor - 1
	}
	return x.cursor
}

// Furthest returns the number of tokens that have been read at least once.
// When a parse fails, the token at Furthest()-1 is usually the culprit.
func (x *Parser) Furthest() int {
	return x.furthest
}

// Depth returns the number of pending rule calls.
func (x *Parser) Depth() int {
	return x.depth
}

// Backtracks returns the number of pending backtrack records.
func (x *Parser) Backtracks() int {
	return len(x.records)
}

// Token returns the token under the cursor, if it has been accepted.
func (x *Parser) Token() (interface{}, bool) {
	if x.cursor < len(x.tokens) {
		return x.tokens[x.cursor], true
	}
	return nil, false
}

// Accept appends tokens to the input and runs the machine until it halts or
// needs a token that has not been accepted yet. EOS ends the input: once it
// has been accepted, the machine always runs to completion.
func (x *Parser) Accept(tokens ...interface{}) error {
	if x.state != RunningState {
		return ErrExecutionHalted
	}
	for i, tok := range tokens {
		if x.closed || (tok == EOS && i != len(tokens)-1) {
			return ErrStreamClosed
		}
	}
	for _, tok := range tokens {
		x.tokens = append(x.tokens, tok)
		if tok == EOS {
			x.closed = true
		}
	}
	return x.drive()
}

// Run ends the input without EOS and runs the machine to completion. Since
// the bootstrap program requires EOS, the parse can only fail.
func (x *Parser) Run() error {
	x.closed = true
	return x.drive()
}

func (x *Parser) drive() error {
	for x.state == RunningState {
		if x.waiting() {
			return nil
		}
		if err := x.Step(); err != nil {
			return err
		}
	}
	return nil
}

// waiting is true if the next instruction needs a token that may still
// arrive.
func (x *Parser) waiting() bool {
	if x.closed || x.cursor < len(x.tokens) {
		return false
	}
	return x.pc < len(x.prog.Code) && x.prog.Code[x.pc].Code == OpTEST
}

func (x *Parser) runtimeError(err error, op *Op) error {
	return &RuntimeError{
		Err:    err,
		Rule:   x.prog.Name,
		PC:     x.pc,
		Cursor: x.cursor,
		Op:     op,
	}
}

// Step executes one instruction.
func (x *Parser) Step() error {
	if x.state != RunningState {
		return ErrExecutionHalted
	}

	code := x.prog.Code
	if x.pc >= len(code) {
		x.state = ErrorState
		return x.runtimeError(ErrCodeRange, nil)
	}
	if x.waiting() {
		return ErrInputPending
	}

	op := code[x.pc]
	if x.tracer != nil {
		x.tracer.Trace(x, op)
	}

	x.pc += 1
	switch op.Code {
	case OpFRAME:
		x.fp = x.push(cell{
			kind:  scopeCell,
			link:  x.sp,
			frame: x.fp,
		})

	case OpPUSHD:
		x.pushValue(op.Value)

	case OpJSR:
		callee, found := x.resolver.Lookup(op.Rule)
		if !found || callee == nil {
			x.pc -= 1
			x.state = ErrorState
			return x.runtimeError(ErrUndefinedRule, &op)
		}
		x.push(cell{
			kind: callCell,
			link: x.sp,
			prog: x.prog,
			ret:  x.pc,
		})
		x.prog = callee
		x.pc = 0
		x.depth += 1

	case OpRET:
		assert(x.sp != nilCell, "RET on empty stack")
		top := x.cells[x.sp]
		assert(top.kind == valueCell, "RET without a result")
		assert(top.link != nilCell, "RET without a call frame")
		frame := x.cells[top.link]
		assert(frame.kind == callCell, "RET on a scope frame")
		x.prog = frame.prog
		x.pc = frame.ret
		x.sp = frame.link
		x.depth -= 1
		x.pushValue(top.value)

	case OpPACK:
		assert(x.fp != nilCell, "PACK without FRAME")
		children := x.collect()
		var result interface{} = children
		if op.Build != nil {
			v, ok := op.Build(children)
			if !ok {
				x.reject()
				break
			}
			result = v
		}
		marker := x.cells[x.fp]
		x.sp = marker.link
		x.fp = marker.frame
		x.pushValue(result)

	case OpTEST:
		if x.cursor >= len(x.tokens) {
			// The input is closed: nothing left to match.
			x.fail()
			break
		}
		tok := x.tokens[x.cursor]
		x.cursor += 1
		if x.cursor > x.furthest {
			x.furthest = x.cursor
		}
		if v, ok := op.Test(tok); ok {
			x.pushValue(v)
		} else {
			x.fail()
		}

	case OpFAILPOINT:
		x.records = append(x.records, Record{
			Prog:   x.prog,
			PC:     addOffset(x.pc, op.Offset, len(code)),
			FP:     x.fp,
			SP:     x.sp,
			Cursor: x.cursor,
			Depth:  x.depth,
			cells:  len(x.cells),
		})

	case OpFAIL:
		x.fail()

	case OpJUMP:
		x.pc = addOffset(x.pc, op.Offset, len(code))

	case OpSTOP:
		x.state = SuccessState

	case OpREJECT:
		x.state = FailureState

	default:
		x.pc -= 1
		x.state = ErrorState
		return x.runtimeError(ErrUnknownOpcode, &op)
	}
	return nil
}

// push appends c to the arena and makes it the top of the stack.
func (x *Parser) push(c cell) int {
	x.cells = append(x.cells, c)
	x.sp = len(x.cells) - 1
	return x.sp
}

func (x *Parser) pushValue(v interface{}) {
	x.push(cell{
		kind:  valueCell,
		link:  x.sp,
		value: v,
	})
}

// collect returns the values pushed since the current FRAME, oldest first.
func (x *Parser) collect() []interface{} {
	n := 0
	for i := x.sp; i != x.fp; i = x.cells[i].link {
		assert(i != nilCell, "frame pointer not on the stack")
		assert(x.cells[i].kind == valueCell, "PACK across a call frame")
		n++
	}
	children := make([]interface{}, n)
	for i := x.sp; i != x.fp; i = x.cells[i].link {
		n--
		children[n] = x.cells[i].value
	}
	return children
}

// fail pops the newest backtrack record and restores the machine from it.
// With no record left, the parse has failed.
func (x *Parser) fail() {
	n := len(x.records)
	if n == 0 {
		x.state = FailureState
		return
	}
	rec := x.records[n-1]
	x.records[n-1] = Record{}
	x.records = x.records[:n-1]

	x.prog = rec.Prog
	x.pc = rec.PC
	x.fp = rec.FP
	x.sp = rec.SP
	x.cursor = rec.Cursor
	x.depth = rec.Depth
	for i := rec.cells; i < len(x.cells); i++ {
		x.cells[i] = cell{}
	}
	x.cells = x.cells[:rec.cells]
}

// reject is the failure protocol for a builder that refused its children.
// Choice points left inside the sub-rules the builder was given have been
// resolved from this rule's point of view, so they are dropped first; the
// failure resumes at a choice point of this invocation or of a caller.
func (x *Parser) reject() {
	n := len(x.records)
	for n > 0 && x.records[n-1].Depth > x.depth {
		n--
		x.records[n] = Record{}
	}
	x.records = x.records[:n]
	x.fail()
}
