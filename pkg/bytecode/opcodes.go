package bytecode

import (
	"fmt"
	"strings"
)

// Opcode is a CPython 2.7 opcode number.
// Opcodes at or above HaveArgument carry an oparg.
type Opcode uint8

// HaveArgument is the first opcode that takes an argument.
const HaveArgument Opcode = 90

const (
	// ========================================================================
	// Stack manipulation
	// ========================================================================

	StopCode Opcode = 0
	PopTop   Opcode = 1
	RotTwo   Opcode = 2
	RotThree Opcode = 3
	DupTop   Opcode = 4
	RotFour  Opcode = 5
	Nop      Opcode = 9

	// ========================================================================
	// Unary operators
	// ========================================================================

	UnaryPositive Opcode = 10
	UnaryNegative Opcode = 11
	UnaryNot      Opcode = 12
	UnaryConvert  Opcode = 13
	UnaryInvert   Opcode = 15

	// ========================================================================
	// Binary operators
	// ========================================================================

	BinaryPower       Opcode = 19
	BinaryMultiply    Opcode = 20
	BinaryDivide      Opcode = 21
	BinaryModulo      Opcode = 22
	BinaryAdd         Opcode = 23
	BinarySubtract    Opcode = 24
	BinarySubscr      Opcode = 25
	BinaryFloorDivide Opcode = 26
	BinaryTrueDivide  Opcode = 27
	BinaryLshift      Opcode = 62
	BinaryRshift      Opcode = 63
	BinaryAnd         Opcode = 64
	BinaryXor         Opcode = 65
	BinaryOr          Opcode = 66

	// ========================================================================
	// In-place operators
	// ========================================================================

	InplaceFloorDivide Opcode = 28
	InplaceTrueDivide  Opcode = 29
	InplaceAdd         Opcode = 55
	InplaceSubtract    Opcode = 56
	InplaceMultiply    Opcode = 57
	InplaceDivide      Opcode = 58
	InplaceModulo      Opcode = 59
	InplacePower       Opcode = 67
	InplaceLshift      Opcode = 75
	InplaceRshift      Opcode = 76
	InplaceAnd         Opcode = 77
	InplaceXor         Opcode = 78
	InplaceOr          Opcode = 79

	// ========================================================================
	// Slices (legacy four-form encoding)
	// ========================================================================

	Slice0       Opcode = 30 // TOS[:]
	Slice1       Opcode = 31 // TOS1[TOS:]
	Slice2       Opcode = 32 // TOS1[:TOS]
	Slice3       Opcode = 33 // TOS2[TOS1:TOS]
	StoreSlice0  Opcode = 40
	StoreSlice1  Opcode = 41
	StoreSlice2  Opcode = 42
	StoreSlice3  Opcode = 43
	DeleteSlice0 Opcode = 50
	DeleteSlice1 Opcode = 51
	DeleteSlice2 Opcode = 52
	DeleteSlice3 Opcode = 53

	// ========================================================================
	// Subscripts, maps, iteration
	// ========================================================================

	StoreMap     Opcode = 54
	StoreSubscr  Opcode = 60
	DeleteSubscr Opcode = 61
	GetIter      Opcode = 68

	// ========================================================================
	// Print statement
	// ========================================================================

	PrintExpr      Opcode = 70
	PrintItem      Opcode = 71
	PrintNewline   Opcode = 72
	PrintItemTo    Opcode = 73
	PrintNewlineTo Opcode = 74

	// ========================================================================
	// Block and frame control
	// ========================================================================

	BreakLoop   Opcode = 80
	WithCleanup Opcode = 81
	LoadLocals  Opcode = 82
	ReturnValue Opcode = 83
	ImportStar  Opcode = 84
	ExecStmt    Opcode = 85
	YieldValue  Opcode = 86
	PopBlock    Opcode = 87
	EndFinally  Opcode = 88
	BuildClass  Opcode = 89

	// ========================================================================
	// Opcodes with an argument
	// ========================================================================

	StoreName         Opcode = 90
	DeleteName        Opcode = 91
	UnpackSequence    Opcode = 92
	ForIter           Opcode = 93
	ListAppend        Opcode = 94
	StoreAttr         Opcode = 95
	DeleteAttr        Opcode = 96
	StoreGlobal       Opcode = 97
	DeleteGlobal      Opcode = 98
	DupTopX           Opcode = 99
	LoadConst         Opcode = 100
	LoadName          Opcode = 101
	BuildTuple        Opcode = 102
	BuildList         Opcode = 103
	BuildSet          Opcode = 104
	BuildMap          Opcode = 105
	LoadAttr          Opcode = 106
	CompareOp         Opcode = 107
	ImportName        Opcode = 108
	ImportFrom        Opcode = 109
	JumpForward       Opcode = 110
	JumpIfFalseOrPop  Opcode = 111
	JumpIfTrueOrPop   Opcode = 112
	JumpAbsolute      Opcode = 113
	PopJumpIfFalse    Opcode = 114
	PopJumpIfTrue     Opcode = 115
	LoadGlobal        Opcode = 116
	ContinueLoop      Opcode = 119
	SetupLoop         Opcode = 120
	SetupExcept       Opcode = 121
	SetupFinally      Opcode = 122
	LoadFast          Opcode = 124
	StoreFast         Opcode = 125
	DeleteFast        Opcode = 126
	RaiseVarargs      Opcode = 130
	CallFunction      Opcode = 131
	MakeFunction      Opcode = 132
	BuildSlice        Opcode = 133
	MakeClosure       Opcode = 134
	LoadClosure       Opcode = 135
	LoadDeref         Opcode = 136
	StoreDeref        Opcode = 137
	CallFunctionVar   Opcode = 140
	CallFunctionKw    Opcode = 141
	CallFunctionVarKw Opcode = 142
	SetupWith         Opcode = 143
	ExtendedArg       Opcode = 145
	SetAdd            Opcode = 146
	MapAdd            Opcode = 147
)

// Variable is the StackPop/StackPush value for effects that depend on the oparg.
const Variable = -1

// OpcodeInfo contains metadata about an opcode.
type OpcodeInfo struct {
	Name      string
	StackPop  int // values consumed, or Variable
	StackPush int // values produced, or Variable
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack manipulation
	StopCode: {"STOP_CODE", 0, 0},
	PopTop:   {"POP_TOP", 1, 0},
	RotTwo:   {"ROT_TWO", 2, 2},
	RotThree: {"ROT_THREE", 3, 3},
	DupTop:   {"DUP_TOP", 1, 2},
	RotFour:  {"ROT_FOUR", 4, 4},
	Nop:      {"NOP", 0, 0},
	DupTopX:  {"DUP_TOPX", Variable, Variable},

	// Unary
	UnaryPositive: {"UNARY_POSITIVE", 1, 1},
	UnaryNegative: {"UNARY_NEGATIVE", 1, 1},
	UnaryNot:      {"UNARY_NOT", 1, 1},
	UnaryConvert:  {"UNARY_CONVERT", 1, 1},
	UnaryInvert:   {"UNARY_INVERT", 1, 1},

	// Binary
	BinaryPower:       {"BINARY_POWER", 2, 1},
	BinaryMultiply:    {"BINARY_MULTIPLY", 2, 1},
	BinaryDivide:      {"BINARY_DIVIDE", 2, 1},
	BinaryModulo:      {"BINARY_MODULO", 2, 1},
	BinaryAdd:         {"BINARY_ADD", 2, 1},
	BinarySubtract:    {"BINARY_SUBTRACT", 2, 1},
	BinarySubscr:      {"BINARY_SUBSCR", 2, 1},
	BinaryFloorDivide: {"BINARY_FLOOR_DIVIDE", 2, 1},
	BinaryTrueDivide:  {"BINARY_TRUE_DIVIDE", 2, 1},
	BinaryLshift:      {"BINARY_LSHIFT", 2, 1},
	BinaryRshift:      {"BINARY_RSHIFT", 2, 1},
	BinaryAnd:         {"BINARY_AND", 2, 1},
	BinaryXor:         {"BINARY_XOR", 2, 1},
	BinaryOr:          {"BINARY_OR", 2, 1},

	// In-place
	InplaceFloorDivide: {"INPLACE_FLOOR_DIVIDE", 2, 1},
	InplaceTrueDivide:  {"INPLACE_TRUE_DIVIDE", 2, 1},
	InplaceAdd:         {"INPLACE_ADD", 2, 1},
	InplaceSubtract:    {"INPLACE_SUBTRACT", 2, 1},
	InplaceMultiply:    {"INPLACE_MULTIPLY", 2, 1},
	InplaceDivide:      {"INPLACE_DIVIDE", 2, 1},
	InplaceModulo:      {"INPLACE_MODULO", 2, 1},
	InplacePower:       {"INPLACE_POWER", 2, 1},
	InplaceLshift:      {"INPLACE_LSHIFT", 2, 1},
	InplaceRshift:      {"INPLACE_RSHIFT", 2, 1},
	InplaceAnd:         {"INPLACE_AND", 2, 1},
	InplaceXor:         {"INPLACE_XOR", 2, 1},
	InplaceOr:          {"INPLACE_OR", 2, 1},

	// Slices
	Slice0:       {"SLICE_0", 1, 1},
	Slice1:       {"SLICE_1", 2, 1},
	Slice2:       {"SLICE_2", 2, 1},
	Slice3:       {"SLICE_3", 3, 1},
	StoreSlice0:  {"STORE_SLICE_0", 2, 0},
	StoreSlice1:  {"STORE_SLICE_1", 3, 0},
	StoreSlice2:  {"STORE_SLICE_2", 3, 0},
	StoreSlice3:  {"STORE_SLICE_3", 4, 0},
	DeleteSlice0: {"DELETE_SLICE_0", 1, 0},
	DeleteSlice1: {"DELETE_SLICE_1", 2, 0},
	DeleteSlice2: {"DELETE_SLICE_2", 2, 0},
	DeleteSlice3: {"DELETE_SLICE_3", 3, 0},

	// Subscripts, maps, iteration
	StoreMap:     {"STORE_MAP", 3, 1},
	StoreSubscr:  {"STORE_SUBSCR", 3, 0},
	DeleteSubscr: {"DELETE_SUBSCR", 2, 0},
	GetIter:      {"GET_ITER", 1, 1},
	ForIter:      {"FOR_ITER", 1, 2},
	ListAppend:   {"LIST_APPEND", 1, 0},
	SetAdd:       {"SET_ADD", 1, 0},
	MapAdd:       {"MAP_ADD", 2, 0},

	// Print
	PrintExpr:      {"PRINT_EXPR", 1, 0},
	PrintItem:      {"PRINT_ITEM", 1, 0},
	PrintNewline:   {"PRINT_NEWLINE", 0, 0},
	PrintItemTo:    {"PRINT_ITEM_TO", 2, 0},
	PrintNewlineTo: {"PRINT_NEWLINE_TO", 1, 0},

	// Block and frame control
	BreakLoop:    {"BREAK_LOOP", 0, 0},
	WithCleanup:  {"WITH_CLEANUP", 1, 0},
	LoadLocals:   {"LOAD_LOCALS", 0, 1},
	ReturnValue:  {"RETURN_VALUE", 1, 0},
	ImportStar:   {"IMPORT_STAR", 1, 0},
	ExecStmt:     {"EXEC_STMT", 3, 0},
	YieldValue:   {"YIELD_VALUE", 1, 1},
	PopBlock:     {"POP_BLOCK", 0, 0},
	EndFinally:   {"END_FINALLY", 1, 0},
	BuildClass:   {"BUILD_CLASS", 3, 1},
	ContinueLoop: {"CONTINUE_LOOP", 0, 0},
	SetupLoop:    {"SETUP_LOOP", 0, 0},
	SetupExcept:  {"SETUP_EXCEPT", 0, 0},
	SetupFinally: {"SETUP_FINALLY", 0, 0},
	SetupWith:    {"SETUP_WITH", 1, 2},
	ExtendedArg:  {"EXTENDED_ARG", 0, 0},

	// Names
	StoreName:    {"STORE_NAME", 1, 0},
	DeleteName:   {"DELETE_NAME", 0, 0},
	StoreAttr:    {"STORE_ATTR", 2, 0},
	DeleteAttr:   {"DELETE_ATTR", 1, 0},
	StoreGlobal:  {"STORE_GLOBAL", 1, 0},
	DeleteGlobal: {"DELETE_GLOBAL", 0, 0},
	LoadConst:    {"LOAD_CONST", 0, 1},
	LoadName:     {"LOAD_NAME", 0, 1},
	LoadAttr:     {"LOAD_ATTR", 1, 1},
	LoadGlobal:   {"LOAD_GLOBAL", 0, 1},
	LoadFast:     {"LOAD_FAST", 0, 1},
	StoreFast:    {"STORE_FAST", 1, 0},
	DeleteFast:   {"DELETE_FAST", 0, 0},
	LoadClosure:  {"LOAD_CLOSURE", 0, 1},
	LoadDeref:    {"LOAD_DEREF", 0, 1},
	StoreDeref:   {"STORE_DEREF", 1, 0},

	// Builders
	UnpackSequence: {"UNPACK_SEQUENCE", 1, Variable},
	BuildTuple:     {"BUILD_TUPLE", Variable, 1},
	BuildList:      {"BUILD_LIST", Variable, 1},
	BuildSet:       {"BUILD_SET", Variable, 1},
	BuildMap:       {"BUILD_MAP", 0, 1},
	BuildSlice:     {"BUILD_SLICE", Variable, 1},
	CompareOp:      {"COMPARE_OP", 2, 1},

	// Imports
	ImportName: {"IMPORT_NAME", 2, 1},
	ImportFrom: {"IMPORT_FROM", 1, 2},

	// Jumps
	JumpForward:      {"JUMP_FORWARD", 0, 0},
	JumpIfFalseOrPop: {"JUMP_IF_FALSE_OR_POP", 1, 0},
	JumpIfTrueOrPop:  {"JUMP_IF_TRUE_OR_POP", 1, 0},
	JumpAbsolute:     {"JUMP_ABSOLUTE", 0, 0},
	PopJumpIfFalse:   {"POP_JUMP_IF_FALSE", 1, 0},
	PopJumpIfTrue:    {"POP_JUMP_IF_TRUE", 1, 0},

	// Calls and functions
	RaiseVarargs:      {"RAISE_VARARGS", Variable, 0},
	CallFunction:      {"CALL_FUNCTION", Variable, 1},
	CallFunctionVar:   {"CALL_FUNCTION_VAR", Variable, 1},
	CallFunctionKw:    {"CALL_FUNCTION_KW", Variable, 1},
	CallFunctionVarKw: {"CALL_FUNCTION_VAR_KW", Variable, 1},
	MakeFunction:      {"MAKE_FUNCTION", Variable, 1},
	MakeClosure:       {"MAKE_CLOSURE", Variable, 1},
}

var opcodeByName map[string]Opcode

func init() {
	opcodeByName = make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		opcodeByName[info.Name] = op
	}
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", uint8(op))}
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// HasArg reports whether the opcode carries an oparg.
func (op Opcode) HasArg() bool {
	return op >= HaveArgument
}

// NormalizeName maps disassembler spellings onto table names.
// "SLICE+1" becomes "SLICE_1"; the name is upper-cased.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(name)), "+", "_")
}

// Lookup resolves a mnemonic to its opcode.
func Lookup(name string) (Opcode, bool) {
	op, ok := opcodeByName[NormalizeName(name)]
	return op, ok
}

// StackEffect returns the pop and push counts of op for the given oparg.
func StackEffect(op Opcode, oparg uint32) (pop, push int) {
	info := GetOpcodeInfo(op)
	pop, push = info.StackPop, info.StackPush
	n := int(oparg)
	switch op {
	case BuildTuple, BuildList, BuildSet:
		pop = n
	case BuildSlice:
		pop = n
	case UnpackSequence:
		push = n
	case DupTopX:
		pop, push = n, 2*n
	case RaiseVarargs:
		pop = n
	case CallFunction:
		pop = 1 + (n & 0xFF) + 2*(n>>8)
	case CallFunctionVar, CallFunctionKw:
		pop = 2 + (n & 0xFF) + 2*(n>>8)
	case CallFunctionVarKw:
		pop = 3 + (n & 0xFF) + 2*(n>>8)
	case MakeFunction:
		pop = 1 + n
	case MakeClosure:
		pop = 2 + n
	}
	return pop, push
}

// AllOpcodes returns a slice of all defined opcodes.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}

// CompareOps is the comparison table indexed by COMPARE_OP's oparg.
var CompareOps = []string{"<", "<=", "==", "!=", ">", ">=", "in", "not in", "is", "is not", "exception match", "BAD"}

// CompareIndex returns the COMPARE_OP oparg for a comparison mnemonic.
func CompareIndex(mnemonic string) (uint32, bool) {
	for i, s := range CompareOps {
		if s == mnemonic {
			return uint32(i), true
		}
	}
	return 0, false
}
