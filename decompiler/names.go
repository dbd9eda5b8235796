package decompiler

import (
	"strings"

	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// ---------------------------------------------------------------------------
// Loads
// ---------------------------------------------------------------------------

// loadConst pushes a literal. None is the name None, and a folded tuple
// constant stays raw.
func loadConst(s *state, in bytecode.Instruction) {
	switch v := in.Arg.(type) {
	case nil:
		s.push(&pyast.Name{Pos: pos(in), ID: "None", Ctx: pyast.Load})
	case string, int64, float64, complex128:
		s.push(&pyast.Literal{Pos: pos(in), Value: v})
	case []any:
		s.push(&pyast.ConstTuple{Pos: pos(in), Values: v})
	default:
		s.fail(MalformedBytecode, "unsupported constant of type %T", v)
	}
}

// loadName serves LOAD_NAME, LOAD_FAST, LOAD_GLOBAL and LOAD_DEREF. Scope
// has no representation in the tree.
func loadName(s *state, in bytecode.Instruction) {
	s.push(&pyast.Name{Pos: pos(in), ID: s.name(in), Ctx: pyast.Load})
}

func loadClosure(s *state, in bytecode.Instruction) {
	s.push(&pyast.ClosureCell{Pos: pos(in), Name: s.name(in)})
}

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

// storeName serves STORE_NAME, STORE_FAST, STORE_GLOBAL and STORE_DEREF.
func storeName(s *state, in bytecode.Instruction) {
	id := s.name(in)
	value := s.mergeIf(s.pop())

	switch v := value.(type) {
	case *pyast.Import:
		if v.IsFrom {
			from, ok := s.pop().(*pyast.ImportFrom)
			if !ok {
				s.fail(InvariantViolation, "from-import binding without ImportFrom")
			}
			alias := from.Names[0]
			if alias.Name != id {
				alias.AsName = id
			}
			s.push(from)
		} else {
			alias := v.Names[0]
			// "import a.b" binds the top-level package a.
			top, _, dotted := strings.Cut(alias.Name, ".")
			if alias.Name != id && !(dotted && top == id) {
				alias.AsName = id
			}
		}
		s.push(v)
	case *pyast.FunctionDef:
		v.Name = id
		s.push(v)
	case *pyast.ClassDef:
		v.Name = id
		s.push(v)
	case *pyast.AugAssign:
		s.push(v)
	default:
		s.assign(in, value, &pyast.Name{Pos: pos(in), ID: id, Ctx: pyast.Store})
	}
}

// assign binds value to target. A value that is already an Assign is the
// first binding of a chained assignment (a = b = x): the copy left beneath
// it by DUP_TOP is dropped and target is appended. That copy must be the
// Assign itself or its value; anything else, such as the second operand of
// a ROT_TWO swap, is not a chain.
func (s *state) assign(in bytecode.Instruction, value pyast.Node, target pyast.Expr) {
	if a, ok := value.(*pyast.Assign); ok {
		dup := s.peek()
		if dup == nil {
			s.pop()
		}
		if dup != pyast.Node(a) && s.mergeIf(dup) != pyast.Node(a.Value) {
			s.fail(InvariantViolation, "chained assignment over %s, expected a copy of %s",
				pyast.SExpr(dup), pyast.SExpr(a.Value))
		}
		s.pop()
		a.Targets = append(a.Targets, target)
		s.push(a)
		return
	}
	s.push(&pyast.Assign{Pos: pos(in), Targets: []pyast.Expr{target}, Value: s.expr(value)})
}

// mergeIf turns a two-branch If consumed as a value into an IfExp. An If
// merged twice, as after DUP_TOP, yields the same IfExp.
func (s *state) mergeIf(n pyast.Node) pyast.Node {
	stmt, ok := n.(*pyast.If)
	if !ok {
		return n
	}
	if e, ok := s.ifExps[stmt]; ok {
		return e
	}
	if len(stmt.Body) != 1 || len(stmt.OrElse) != 1 {
		s.fail(InvariantViolation, "conditional expression needs one statement per branch, got %d and %d",
			len(stmt.Body), len(stmt.OrElse))
	}
	e := &pyast.IfExp{
		Pos:    stmt.Pos,
		Test:   stmt.Test,
		Body:   s.branchValue(stmt.Body[0]),
		OrElse: s.branchValue(stmt.OrElse[0]),
	}
	if s.ifExps == nil {
		s.ifExps = make(map[*pyast.If]*pyast.IfExp)
	}
	s.ifExps[stmt] = e
	return e
}

func (s *state) branchValue(n pyast.Node) pyast.Expr {
	if es, ok := n.(*pyast.ExprStmt); ok {
		return es.Value
	}
	return s.expr(s.mergeIf(n))
}

// ---------------------------------------------------------------------------
// Deletes
// ---------------------------------------------------------------------------

func deleteName(s *state, in bytecode.Instruction) {
	target := &pyast.Name{Pos: pos(in), ID: s.name(in), Ctx: pyast.Del}
	s.push(&pyast.Delete{Pos: pos(in), Targets: []pyast.Expr{target}})
}
