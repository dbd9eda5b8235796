// Package bytecode describes CPython 2.7 instructions as they arrive from a
// disassembler: the opcode table with canonical stack effects, the decoded
// Instruction record, and a small text listing format used by tests and
// the command line.
//
// # Listing format
//
// One instruction per line, optionally prefixed by a source line number:
//
//	3  LOAD_NAME     x
//	   LOAD_CONST    'a'
//	   COMPARE_OP    not in
//	4  LOAD_CONST    (1, 2.5, None)
//
// Numbers are int64, float64 or complex128 ("2j", "1-3j"); parenthesized
// arguments are tuples. Bare words are strings, except None.
package bytecode
