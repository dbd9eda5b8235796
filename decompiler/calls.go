package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// callFunction decodes the packed argument count: the high byte counts
// keyword pairs, the low byte positional arguments. A call whose only
// argument is a definition is a decorator application.
func callFunction(s *state, in bytecode.Instruction) {
	nkw := int(in.Oparg>>8) & 0xFF
	nargs := int(in.Oparg & 0xFF)

	keywords := make([]*pyast.Keyword, nkw)
	for i := nkw - 1; i >= 0; i-- {
		value := s.popExpr()
		key, ok := s.pop().(*pyast.Literal)
		if !ok {
			s.fail(InvariantViolation, "keyword name is not a string constant")
		}
		arg, ok := key.Value.(string)
		if !ok {
			s.fail(InvariantViolation, "keyword name is not a string constant")
		}
		keywords[i] = &pyast.Keyword{Arg: arg, Value: value}
	}

	args := make([]pyast.Node, nargs)
	for i := nargs - 1; i >= 0; i-- {
		args[i] = s.pop()
	}

	// Decorator syntax never passes keywords, so a keyword call over a
	// definition is left to fail as an ordinary call.
	if nargs == 1 && nkw == 0 {
		switch def := args[0].(type) {
		case *pyast.FunctionDef:
			def.Decorators = append([]pyast.Expr{s.popExpr()}, def.Decorators...)
			s.push(def)
			return
		case *pyast.ClassDef:
			def.Decorators = append([]pyast.Expr{s.popExpr()}, def.Decorators...)
			s.push(def)
			return
		}
	}

	call := &pyast.Call{
		Pos:      pos(in),
		Args:     make([]pyast.Expr, nargs),
		Keywords: keywords,
	}
	for i, a := range args {
		call.Args[i] = s.expr(a)
	}
	call.Func = s.popExpr()
	s.push(call)
}

func callFunctionVar(s *state, in bytecode.Instruction) {
	starargs := s.popExpr()
	call := s.baseCall(in)
	call.StarArgs = starargs
	s.push(call)
}

func callFunctionKw(s *state, in bytecode.Instruction) {
	kwargs := s.popExpr()
	call := s.baseCall(in)
	call.KwArgs = kwargs
	s.push(call)
}

func callFunctionVarKw(s *state, in bytecode.Instruction) {
	kwargs := s.popExpr()
	starargs := s.popExpr()
	call := s.baseCall(in)
	call.StarArgs = starargs
	call.KwArgs = kwargs
	s.push(call)
}

// baseCall folds the positional and keyword part of an extended call and
// pops the resulting Call.
func (s *state) baseCall(in bytecode.Instruction) *pyast.Call {
	callFunction(s, in)
	call, ok := s.pop().(*pyast.Call)
	if !ok {
		s.fail(InvariantViolation, "extended call folded into a definition")
	}
	return call
}
