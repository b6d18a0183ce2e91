// Package bpvm implements a virtual machine for incremental, backtracking
// parsers over streams of arbitrary tokens.
//
//
// A grammar rule is compiled into a Program: a flat sequence of Op values.
// The functions Test, Token, Const, Rule, Seq, Alternatives, ZeroOrMore,
// OneOrMore, ZeroOrOne, Default and Routine build the instruction sequences
// for grammar fragments; a Resolver maps rule names to their programs at
// the moment a JSR executes.
//
// Branch offsets are signed instruction counts, relative to the address of
// the instruction that follows the branch.
//
//
// The instruction set is:
//
//   +-----------+---------+----------------------------------------------+
//   | Opcode    | Operand | Effect                                       |
//   +-----------+---------+----------------------------------------------+
//   | FRAME     | -       | push a scope marker; FP := marker            |
//   | PUSHD     | value   | push value                                   |
//   | JSR       | rule    | push a call frame; enter rule at address 0   |
//   | RET       | -       | pop result and call frame; resume caller;    |
//   |           |         | push result                                  |
//   | PACK      | builder | pop values down to FP; pop marker; push      |
//   |           |         | builder(values), or the values themselves    |
//   | TEST      | test    | read one token; push test(token) or FAIL     |
//   | FAILPOINT | offset  | push a backtrack record resuming at offset   |
//   | FAIL      | -       | pop a backtrack record and restore it        |
//   | JUMP      | offset  | PC := offset                                 |
//   | STOP      | -       | halt with SuccessState                       |
//   | REJECT    | -       | halt with FailureState                       |
//   +-----------+---------+----------------------------------------------+
//
// In the above information, the following statements hold:
//
// • A successful alternative never discards its backtrack record. A later
//   failure may resume inside a rule that has already returned.
//
// • A FAIL with no backtrack record left halts with FailureState. The
//   bootstrap program always leaves one record that leads to REJECT.
//
// • A builder that returns false fails like a TEST, except that the
//   backtrack records created by the sub-rules it was given are dropped
//   first.
//
//
// The bootstrap program for a start rule is:
//
//       FAILPOINT .L0 <.+3>
//       JSR start
//       TEST EOS
//       STOP
//   .L0:
//       REJECT
//
// A Parser accepts tokens in chunks. Each call to Accept runs the machine
// until it halts or until a TEST needs a token that has not arrived yet;
// accepting EOS ends the stream.
//
package bpvm
