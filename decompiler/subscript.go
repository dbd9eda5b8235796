package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

func loadAttr(s *state, in bytecode.Instruction) {
	// "import a.b as c" walks from a to the submodule before binding c;
	// the Import already names the submodule.
	if imp, ok := s.peek().(*pyast.Import); ok && !imp.IsFrom {
		return
	}
	owner := s.popExpr()
	s.push(&pyast.Attribute{Pos: pos(in), Value: owner, Attr: s.name(in), Ctx: pyast.Load})
}

func storeAttr(s *state, in bytecode.Instruction) {
	owner := s.popExpr()
	value := s.mergeIf(s.pop())
	if aug, ok := value.(*pyast.AugAssign); ok {
		s.push(aug)
		return
	}
	s.assign(in, value, &pyast.Attribute{Pos: pos(in), Value: owner, Attr: s.name(in), Ctx: pyast.Store})
}

func deleteAttr(s *state, in bytecode.Instruction) {
	owner := s.popExpr()
	target := &pyast.Attribute{Pos: pos(in), Value: owner, Attr: s.name(in), Ctx: pyast.Del}
	s.push(&pyast.Delete{Pos: pos(in), Targets: []pyast.Expr{target}})
}

// ---------------------------------------------------------------------------
// Subscripts
// ---------------------------------------------------------------------------

func binarySubscr(s *state, in bytecode.Instruction) {
	index := s.popExpr()
	owner := s.popExpr()
	s.push(&pyast.Subscript{Pos: pos(in), Value: owner, Slice: formatSlice(in, index), Ctx: pyast.Load})
}

func storeSubscr(s *state, in bytecode.Instruction) {
	index := s.popExpr()
	owner := s.popExpr()
	value := s.mergeIf(s.pop())
	if aug, ok := value.(*pyast.AugAssign); ok {
		s.push(aug)
		return
	}
	target := &pyast.Subscript{Pos: pos(in), Value: owner, Slice: formatSlice(in, index), Ctx: pyast.Store}
	s.assign(in, value, target)
}

func deleteSubscr(s *state, in bytecode.Instruction) {
	index := s.popExpr()
	owner := s.popExpr()
	target := &pyast.Subscript{Pos: pos(in), Value: owner, Slice: formatSlice(in, index), Ctx: pyast.Del}
	s.push(&pyast.Delete{Pos: pos(in), Targets: []pyast.Expr{target}})
}

// formatSlice normalizes a subscript index. A tuple holding at least one
// Slice becomes an ExtSlice with its other elements wrapped as Index.
func formatSlice(in bytecode.Instruction, index pyast.Expr) pyast.SliceKind {
	switch v := index.(type) {
	case *pyast.Slice:
		return v
	case *pyast.Tuple:
		dims := make([]pyast.SliceKind, len(v.Elts))
		extended := false
		for i, elt := range v.Elts {
			if sl, ok := elt.(*pyast.Slice); ok {
				dims[i] = sl
				extended = true
			} else {
				dims[i] = &pyast.Index{Pos: pos(in), Value: elt}
			}
		}
		if extended {
			return &pyast.ExtSlice{Pos: pos(in), Dims: dims}
		}
	}
	return &pyast.Index{Pos: pos(in), Value: index}
}

// ---------------------------------------------------------------------------
// Slices
// ---------------------------------------------------------------------------

// The fixed-arity slice opcodes: _0 obj[:], _1 obj[lower:], _2 obj[:upper],
// _3 obj[lower:upper].
var (
	slice0 = loadSlice(false, false)
	slice1 = loadSlice(true, false)
	slice2 = loadSlice(false, true)
	slice3 = loadSlice(true, true)

	storeSlice0 = storeSlice(false, false)
	storeSlice1 = storeSlice(true, false)
	storeSlice2 = storeSlice(false, true)
	storeSlice3 = storeSlice(true, true)

	deleteSlice0 = deleteSlice(false, false)
	deleteSlice1 = deleteSlice(true, false)
	deleteSlice2 = deleteSlice(false, true)
	deleteSlice3 = deleteSlice(true, true)
)

// popSlice pops the bounds (upper first) and then the sliced object.
func (s *state) popSlice(in bytecode.Instruction, lower, upper bool) (pyast.Expr, *pyast.Slice) {
	sl := &pyast.Slice{Pos: pos(in)}
	if upper {
		sl.Upper = s.popExpr()
	}
	if lower {
		sl.Lower = s.popExpr()
	}
	return s.popExpr(), sl
}

func loadSlice(lower, upper bool) handler {
	return func(s *state, in bytecode.Instruction) {
		owner, sl := s.popSlice(in, lower, upper)
		s.push(&pyast.Subscript{Pos: pos(in), Value: owner, Slice: sl, Ctx: pyast.Load})
	}
}

func storeSlice(lower, upper bool) handler {
	return func(s *state, in bytecode.Instruction) {
		owner, sl := s.popSlice(in, lower, upper)
		value := s.mergeIf(s.pop())
		if aug, ok := value.(*pyast.AugAssign); ok {
			s.push(aug)
			return
		}
		s.assign(in, value, &pyast.Subscript{Pos: pos(in), Value: owner, Slice: sl, Ctx: pyast.Store})
	}
}

func deleteSlice(lower, upper bool) handler {
	return func(s *state, in bytecode.Instruction) {
		owner, sl := s.popSlice(in, lower, upper)
		target := &pyast.Subscript{Pos: pos(in), Value: owner, Slice: sl, Ctx: pyast.Del}
		s.push(&pyast.Delete{Pos: pos(in), Targets: []pyast.Expr{target}})
	}
}

// buildSlice serves the generic two- and three-operand form. None bounds
// are absent; a None step is kept.
func buildSlice(s *state, in bytecode.Instruction) {
	sl := &pyast.Slice{Pos: pos(in)}
	if in.Oparg > 2 {
		sl.Step = s.popExpr()
	}
	if in.Oparg > 1 {
		sl.Upper = s.popExpr()
	}
	if in.Oparg > 0 {
		sl.Lower = s.popExpr()
	}
	if isNone(sl.Upper) {
		sl.Upper = nil
	}
	if isNone(sl.Lower) {
		sl.Lower = nil
	}
	s.push(sl)
}
