package bytecode

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Instruction is one decoded bytecode instruction as produced by a
// disassembler.
//
// Arg holds the decoded argument. Its dynamic type is one of nil (None),
// string, int64, float64, complex128 or []any (a tuple whose elements are
// again one of these). Oparg is the raw numeric argument.
type Instruction struct {
	Op     Opcode
	Name   string
	Arg    any
	Oparg  uint32
	Line   int // source line, 0 when unknown
	Offset int // position within the block
}

// New builds an instruction from a mnemonic and a decoded argument.
// The oparg is derived from the argument: integers are their own oparg and
// COMPARE_OP uses the index of its mnemonic in CompareOps.
func New(name string, arg any) (Instruction, error) {
	op, ok := Lookup(name)
	if !ok {
		return Instruction{}, fmt.Errorf("unknown opcode %q", name)
	}
	arg, err := normalizeArg(arg)
	if err != nil {
		return Instruction{}, fmt.Errorf("%s: %w", name, err)
	}
	ins := Instruction{Op: op, Name: op.String(), Arg: arg}
	switch v := arg.(type) {
	case int64:
		if v >= 0 {
			ins.Oparg = uint32(v)
		}
	case string:
		if op == CompareOp {
			idx, ok := CompareIndex(v)
			if !ok {
				return Instruction{}, fmt.Errorf("COMPARE_OP: unknown comparison %q", v)
			}
			ins.Oparg = idx
		}
	}
	return ins, nil
}

// MustNew is like New but panics on error. Intended for tests and
// table literals.
func MustNew(name string, arg any) Instruction {
	ins, err := New(name, arg)
	if err != nil {
		panic(err)
	}
	return ins
}

// At returns a copy of the instruction with its source line set.
func (ins Instruction) At(line int) Instruction {
	ins.Line = line
	return ins
}

// String renders the instruction in listing syntax.
func (ins Instruction) String() string {
	if ins.Arg == nil && !ins.Op.HasArg() {
		return ins.Name
	}
	return ins.Name + " " + FormatArg(ins.Op, ins.Arg)
}

// normalizeArg widens Go integer and float kinds to the canonical
// argument types.
func normalizeArg(arg any) (any, error) {
	switch v := arg.(type) {
	case nil, string, int64:
		return v, nil
	case float64:
		if math.IsNaN(v) {
			return nil, fmt.Errorf("NaN constant has no listing form")
		}
		return v, nil
	case complex128:
		if cmplx.IsNaN(v) {
			return nil, fmt.Errorf("NaN constant has no listing form")
		}
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case float32:
		return normalizeArg(float64(v))
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			ne, err := normalizeArg(e)
			if err != nil {
				return nil, err
			}
			out[i] = ne
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported argument type %T", arg)
}
