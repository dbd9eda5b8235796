package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// popN pops n expressions and returns them in push order.
func (s *state) popN(n int) []pyast.Expr {
	out := make([]pyast.Expr, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = s.popExpr()
	}
	return out
}

func buildList(s *state, in bytecode.Instruction) {
	s.push(&pyast.List{Pos: pos(in), Elts: s.popN(int(in.Oparg)), Ctx: pyast.Load})
}

func buildSet(s *state, in bytecode.Instruction) {
	s.push(&pyast.Set{Pos: pos(in), Elts: s.popN(int(in.Oparg))})
}

// buildTuple drops tuples of closure cells: they feed MAKE_CLOSURE and
// have no source form.
func buildTuple(s *state, in bytecode.Instruction) {
	n := int(in.Oparg)
	nodes := make([]pyast.Node, n)
	cells := 0
	for i := n - 1; i >= 0; i-- {
		nodes[i] = s.pop()
		if _, ok := nodes[i].(*pyast.ClosureCell); ok {
			cells++
		}
	}
	if cells > 0 {
		if cells != n {
			s.fail(InvariantViolation, "tuple mixes %d closure cells with %d values", cells, n-cells)
		}
		return
	}

	elts := make([]pyast.Expr, n)
	for i, node := range nodes {
		elts[i] = s.expr(node)
	}
	s.push(&pyast.Tuple{Pos: pos(in), Elts: elts, Ctx: pyast.Load})
}

// buildMap reads each entry from the feed up to its STORE_MAP and
// decompiles it as a nested block yielding value then key. STORE_MAPs
// belonging to nested dict displays stay inside the span.
func buildMap(s *state, in bytecode.Instruction) {
	n := int(in.Oparg)
	dict := &pyast.Dict{Pos: pos(in), Keys: make([]pyast.Expr, 0, n), Values: make([]pyast.Expr, 0, n)}

	for range n {
		var span []bytecode.Instruction
		pending := 0 // entries of nested dict displays inside this span
	scan:
		for {
			if len(s.feed) == 0 {
				s.fail(MalformedBytecode, "dict entry %d has no STORE_MAP", len(dict.Keys))
			}
			next := s.next()
			switch next.Op {
			case bytecode.StoreMap:
				if pending == 0 {
					break scan
				}
				pending--
			case bytecode.BuildMap:
				pending += int(next.Oparg)
			}
			span = append(span, next)
		}

		items := s.sub(span)
		if len(items) != 2 {
			s.fail(InvariantViolation, "dict entry %d folded to %d nodes, want 2", len(dict.Keys), len(items))
		}
		dict.Values = append(dict.Values, s.expr(items[0]))
		dict.Keys = append(dict.Keys, s.expr(items[1]))
	}
	s.push(dict)
}

// unpackSequence folds the stores that follow into one tuple target. For
// each target a placeholder stands in for the unpacked value, and feed
// instructions are dispatched until the placeholder is bound by a
// single-target Assign. Names, attributes, subscripts and nested unpacks
// all end that way.
func unpackSequence(s *state, in bytecode.Instruction) {
	n := int(in.Oparg)
	targets := make([]pyast.Expr, 0, n)

	for range n {
		base := len(s.stack)
		hole := &pyast.Placeholder{Pos: pos(in)}
		s.push(hole)
		for !s.bound(base, hole) {
			s.dispatch(s.next())
		}
		assign := s.pop().(*pyast.Assign)
		targets = append(targets, assign.Targets[0])
	}

	rhs := s.mergeIf(s.pop())
	s.assign(in, rhs, &pyast.Tuple{Pos: pos(in), Elts: targets, Ctx: pyast.Store})
}

// bound reports whether the placeholder pushed at depth base has been
// folded into an Assign on top of the stack.
func (s *state) bound(base int, hole *pyast.Placeholder) bool {
	if len(s.stack) != base+1 {
		return false
	}
	assign, ok := s.stack[base].(*pyast.Assign)
	return ok && len(assign.Targets) == 1 && assign.Value == pyast.Expr(hole)
}
