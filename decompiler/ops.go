package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// ---------------------------------------------------------------------------
// Operator builders
// ---------------------------------------------------------------------------

func binary(op pyast.Operator) handler {
	return func(s *state, in bytecode.Instruction) {
		right := s.popExpr()
		left := s.popExpr()
		s.push(&pyast.BinOp{Pos: pos(in), Left: left, Op: op, Right: right})
	}
}

// inplace folds an augmented assignment. The left operand becomes the
// target; the store instruction that follows passes the AugAssign through.
func inplace(op pyast.Operator) handler {
	return func(s *state, in bytecode.Instruction) {
		right := s.popExpr()
		left := s.popExpr()
		if !setContext(left, pyast.Store) {
			s.fail(InvariantViolation, "cannot assign to %s", pyast.SExpr(left))
		}
		s.push(&pyast.AugAssign{Pos: pos(in), Target: left, Op: op, Value: right})
	}
}

func unary(op pyast.UnaryOperator) handler {
	return func(s *state, in bytecode.Instruction) {
		operand := s.popExpr()
		s.push(&pyast.UnaryOp{Pos: pos(in), Op: op, Operand: operand})
	}
}

func unaryConvert(s *state, in bytecode.Instruction) {
	s.push(&pyast.Repr{Pos: pos(in), Value: s.popExpr()})
}

// compareOp builds a single-comparator Compare. Chained comparisons
// compile to jumps and are rebuilt by control-flow reconstruction.
func compareOp(s *state, in bytecode.Instruction) {
	mnemonic, ok := in.Arg.(string)
	if !ok && int(in.Oparg) < len(bytecode.CompareOps) {
		mnemonic = bytecode.CompareOps[in.Oparg]
	}
	op, ok := compareOps[mnemonic]
	if !ok {
		s.fail(InvariantViolation, "unsupported comparison %q", mnemonic)
	}
	right := s.popExpr()
	left := s.popExpr()
	s.push(&pyast.Compare{
		Pos:         pos(in),
		Left:        left,
		Ops:         []pyast.CmpOp{op},
		Comparators: []pyast.Expr{right},
	})
}

// setContext retags a name-like node. It reports false for nodes that
// carry no context.
func setContext(e pyast.Expr, ctx pyast.Context) bool {
	switch e := e.(type) {
	case *pyast.Name:
		e.Ctx = ctx
	case *pyast.Attribute:
		e.Ctx = ctx
	case *pyast.Subscript:
		e.Ctx = ctx
	case *pyast.List:
		e.Ctx = ctx
	case *pyast.Tuple:
		e.Ctx = ctx
	default:
		return false
	}
	return true
}
