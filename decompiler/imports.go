package decompiler

import (
	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// importName pops the from-list and the level and pushes an Import. For a
// from-import the Import is transient: IMPORT_FROM and IMPORT_STAR turn it
// into ImportFrom statements and POP_TOP discards it. The module name is
// empty for "from . import x".
func importName(s *state, in bytecode.Instruction) {
	module, ok := in.Arg.(string)
	if !ok {
		s.fail(MalformedBytecode, "expected a module name, got %v", in.Arg)
	}
	fromlist := s.pop()
	level := s.pop()

	imp := &pyast.Import{
		Pos:    pos(in),
		Names:  []*pyast.Alias{{Name: module}},
		IsFrom: !isNone(fromlist),
	}
	if lit, ok := level.(*pyast.Literal); ok {
		if n, ok := lit.Value.(int64); ok && n > 0 {
			imp.Level = int(n)
		}
	}
	s.push(imp)
}

// importFrom leaves the stack as [ImportFrom, Import] for the STORE that
// binds the imported name.
func importFrom(s *state, in bytecode.Instruction) {
	imp := s.popImport()
	s.push(&pyast.ImportFrom{
		Pos:    pos(in),
		Module: imp.Names[0].Name,
		Names:  []*pyast.Alias{{Name: s.name(in)}},
		Level:  imp.Level,
	})
	s.push(imp)
}

func importStar(s *state, in bytecode.Instruction) {
	imp := s.popImport()
	s.push(&pyast.ImportFrom{
		Pos:    pos(in),
		Module: imp.Names[0].Name,
		Names:  []*pyast.Alias{{Name: "*"}},
		Level:  imp.Level,
	})
}

func (s *state) popImport() *pyast.Import {
	imp, ok := s.pop().(*pyast.Import)
	if !ok {
		s.fail(InvariantViolation, "expected an import on the stack")
	}
	return imp
}
