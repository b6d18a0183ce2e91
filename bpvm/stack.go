package bpvm

// nilCell is the index of the empty stack.
const nilCell = -1

type cellKind uint8

const (
	valueCell cellKind = iota
	callCell
	scopeCell
)

// cell is one entry of the data stack. Cells live in an arena and link to
// the cell below them by index. Once pushed, a cell is never modified, so a
// backtrack record can share every cell below its saved stack pointer.
type cell struct {
	kind cellKind

	// link is the index of the cell below this one.
	link int

	// value is the payload of a valueCell.
	value interface{}

	// frame is the frame pointer that was current when a scopeCell was
	// pushed; PACK restores it.
	frame int

	// prog and ret are the caller's program and return address of a
	// callCell.
	prog *Program
	ret  int
}

// Record is a backtrack record: enough of the machine registers to resume
// execution as though the instructions run since its FAILPOINT never ran.
type Record struct {
	// Prog and PC are where execution resumes.
	Prog *Program
	PC   int

	// FP and SP are the frame and stack pointers to restore.
	FP int
	SP int

	// Cursor is the token cursor to restore.
	Cursor int

	// Depth is the call depth of the rule invocation that pushed the
	// record.
	Depth int

	// cells is the arena length to truncate back to.
	cells int
}
