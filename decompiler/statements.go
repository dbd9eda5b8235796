package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// popTop turns the value on top of the stack into an expression statement.
// Imports vanish; a Print is already a statement and only drops the
// stream it was printing to.
func popTop(s *state, in bytecode.Instruction) {
	value := s.mergeIf(s.pop())
	switch v := value.(type) {
	case *pyast.Import:
		return
	case *pyast.Print:
		s.pop()
		s.push(v)
		return
	}
	s.push(&pyast.ExprStmt{Pos: pos(in), Value: s.expr(value)})
}

func returnValue(s *state, in bytecode.Instruction) {
	s.push(&pyast.Return{Pos: pos(in), Value: s.popExpr()})
}

func yieldValue(s *state, in bytecode.Instruction) {
	s.push(&pyast.Yield{Pos: pos(in), Value: s.popExpr()})
	s.seenYield = true
}

// ---------------------------------------------------------------------------
// Print
// ---------------------------------------------------------------------------

// openPrint returns n as a Print that can take more items: no newline yet
// and printing to stdout.
func openPrint(n pyast.Node) (*pyast.Print, bool) {
	p, ok := n.(*pyast.Print)
	if !ok || p.NL || p.Dest != nil {
		return nil, false
	}
	return p, true
}

func printItem(s *state, in bytecode.Instruction) {
	item := s.popExpr()
	if p, ok := openPrint(s.peek()); ok {
		p.Values = append(p.Values, item)
		return
	}
	s.push(&pyast.Print{Pos: pos(in), Values: []pyast.Expr{item}})
}

func printNewline(s *state, in bytecode.Instruction) {
	if p, ok := openPrint(s.peek()); ok {
		p.NL = true
		return
	}
	s.push(&pyast.Print{Pos: pos(in), NL: true})
}

// printItemTo folds "print >>stream, item". The compiler duplicates the
// stream before every item, so for the second and later items the stream
// slot holds the Print built so far.
func printItemTo(s *state, in bytecode.Instruction) {
	var p *pyast.Print
	switch stream := s.pop().(type) {
	case *pyast.Print:
		if stream.NL {
			s.fail(InvariantViolation, "print to a finished print statement")
		}
		p = stream
		item := s.pop()
		if dup := s.pop(); dup != pyast.Node(p) {
			s.fail(InvariantViolation, "print statement was not duplicated")
		}
		s.push(item)
	default:
		p = &pyast.Print{Pos: pos(in), Dest: s.expr(stream)}
	}
	p.Values = append(p.Values, s.popExpr())
	s.push(p)
}

// printNewlineTo ends "print >>stream, ..." or folds a bare "print >>stream".
// Destinations are matched by identity: the stream below the Print must be
// the very node its Dest was taken from.
func printNewlineTo(s *state, in bytecode.Instruction) {
	top := s.pop()
	p, isPrint := top.(*pyast.Print)
	if !isPrint {
		s.push(&pyast.Print{Pos: pos(in), Dest: s.expr(top), NL: true})
		return
	}
	stream := s.pop()
	s.push(p)
	if !p.NL && p.Dest != nil && pyast.Node(p.Dest) == stream {
		p.NL = true
		return
	}
	s.push(&pyast.Print{Pos: pos(in), Dest: s.expr(stream), NL: true})
}

// ---------------------------------------------------------------------------
// Raise and exec
// ---------------------------------------------------------------------------

func raiseVarargs(s *state, in bytecode.Instruction) {
	r := &pyast.Raise{Pos: pos(in)}
	if in.Oparg > 2 {
		r.Tback = s.popExpr()
	}
	if in.Oparg > 1 {
		r.Inst = s.popExpr()
	}
	if in.Oparg > 0 {
		r.Type = s.popExpr()
	}
	s.push(r)
}

// execStmt folds "exec body in globals, locals". The compiler duplicates
// globals when locals is omitted, and passes None when both are.
func execStmt(s *state, in bytecode.Instruction) {
	locals := s.popExpr()
	globals := s.popExpr()
	body := s.popExpr()
	if locals == globals {
		locals = nil
	}
	if isNone(globals) {
		globals = nil
	}
	if isNone(locals) {
		locals = nil
	}
	s.push(&pyast.Exec{Pos: pos(in), Body: body, Globals: globals, Locals: locals})
}

// ---------------------------------------------------------------------------
// Stack shuffles
// ---------------------------------------------------------------------------

// rotTwo swaps the two top entries.
func rotTwo(s *state, in bytecode.Instruction) {
	one := s.pop()
	two := s.pop()
	s.push(one)
	s.push(two)
}

// rotThree lifts the second and third entries up one and moves the top
// down to position three.
func rotThree(s *state, in bytecode.Instruction) {
	one := s.pop()
	two := s.pop()
	three := s.pop()
	s.push(one)
	s.push(three)
	s.push(two)
}

func rotFour(s *state, in bytecode.Instruction) {
	one := s.pop()
	two := s.pop()
	three := s.pop()
	four := s.pop()
	s.push(one)
	s.push(four)
	s.push(three)
	s.push(two)
}

// dupTop pushes the same node again. Handlers rely on the identity of the
// copies (chained assignment, print destinations).
func dupTop(s *state, in bytecode.Instruction) {
	n := s.pop()
	s.push(n)
	s.push(n)
}

func dupTopX(s *state, in bytecode.Instruction) {
	n := int(in.Oparg)
	if n > len(s.stack) {
		s.fail(MalformedBytecode, "stack underflow")
	}
	top := s.stack[len(s.stack)-n:]
	s.stack = append(s.stack, top...)
}

func nop(s *state, in bytecode.Instruction) {}
