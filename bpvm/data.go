package bpvm

import (
	"sort"
)

// OpCode identifies one of the machine's instructions.
type OpCode uint8

const (
	OpFRAME OpCode = iota
	OpPUSHD
	OpJSR
	OpRET
	OpPACK
	OpTEST
	OpFAILPOINT
	OpFAIL
	OpJUMP
	OpSTOP
	OpREJECT
)

// OperandType describes which Op field an instruction reads.
type OperandType uint8

const (
	OperandNone OperandType = iota
	OperandOffset
	OperandRule
	OperandValue
	OperandTest
	OperandBuilder
)

// OpMeta records metadata about an opcode.
type OpMeta struct {
	Code    OpCode
	Operand OperandType
	Name    string

	// Illegal is true for codes outside the instruction set.
	Illegal bool
}

// Meta returns the metadata for this opcode.
func (code OpCode) Meta() *OpMeta {
	if int(code) < len(opMeta) {
		return &opMeta[code]
	}
	return &OpMeta{
		Code:    code,
		Operand: OperandNone,
		Name:    "???",
		Illegal: true,
	}
}

func (code OpCode) String() string {
	return code.Meta().Name
}

type byCode []OpMeta

var _ sort.Interface = (byCode)(nil)

func (x byCode) Len() int           { return len(x) }
func (x byCode) Less(i, j int) bool { return x[i].Code < x[j].Code }
func (x byCode) Swap(i, j int)      { x[i], x[j] = x[j], x[i] }

var opMeta = []OpMeta{
	OpMeta{Code: OpFRAME, Operand: OperandNone, Name: "FRAME"},
	OpMeta{Code: OpPUSHD, Operand: OperandValue, Name: "PUSHD"},
	OpMeta{Code: OpJSR, Operand: OperandRule, Name: "JSR"},
	OpMeta{Code: OpRET, Operand: OperandNone, Name: "RET"},
	OpMeta{Code: OpPACK, Operand: OperandBuilder, Name: "PACK"},
	OpMeta{Code: OpTEST, Operand: OperandTest, Name: "TEST"},
	OpMeta{Code: OpFAILPOINT, Operand: OperandOffset, Name: "FAILPOINT"},
	OpMeta{Code: OpFAIL, Operand: OperandNone, Name: "FAIL"},
	OpMeta{Code: OpJUMP, Operand: OperandOffset, Name: "JUMP"},
	OpMeta{Code: OpSTOP, Operand: OperandNone, Name: "STOP"},
	OpMeta{Code: OpREJECT, Operand: OperandNone, Name: "REJECT"},
}

func init() {
	assert(sort.IsSorted(byCode(opMeta)), "IsSorted(byCode(opMeta))")
	for i, meta := range opMeta {
		assert(int(meta.Code) == i, "opMeta[%d] holds %s", i, meta.Name)
	}
}
