// Package decompiler folds a straight-line sequence of Python 2 bytecode
// instructions back into source-level AST nodes.
//
// The engine simulates the operand stack explicitly: every opcode handler
// pops the nodes its opcode consumes and pushes the node it produces.
// Composite literals (dict displays, unpacking assignments) consume extra
// instructions from the feed and decompile them as nested spans. When the
// feed is exhausted the stack holds the statements of the block.
package decompiler

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/pyrecon/pkg/bytecode"
	"github.com/chazu/pyrecon/pkg/pyast"
)

// DefaultMaxDepth bounds nested span decompilation.
const DefaultMaxDepth = 64

// Options configures a Decompiler.
type Options struct {
	// Trace logs every dispatched instruction at debug level.
	Trace bool

	// MaxDepth limits nested span decompilation (BUILD_MAP entries,
	// unpacking targets). Zero means DefaultMaxDepth.
	MaxDepth int

	// Logger receives trace output. Nil means the "pyrecon.decompile"
	// logger.
	Logger commonlog.Logger
}

// Result is the outcome of decompiling one block.
type Result struct {
	// Body is the block's statements in source order. Expressions left on
	// the stack by an unterminated block are returned as they are.
	Body []pyast.Node

	// SeenYield reports that a YIELD_VALUE was folded, so the enclosing
	// function is a generator.
	SeenYield bool
}

// Decompiler holds configuration only and is safe for concurrent use.
type Decompiler struct {
	opts Options
	log  commonlog.Logger
}

// New creates a Decompiler.
func New(opts Options) *Decompiler {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	log := opts.Logger
	if log == nil {
		log = commonlog.GetLogger("pyrecon.decompile")
	}
	return &Decompiler{opts: opts, log: log}
}

// Decompile folds instrs with default options.
func Decompile(instrs []bytecode.Instruction) (*Result, error) {
	return New(Options{}).Decompile(instrs)
}

// Decompile folds instrs into a block body. The input slice is not
// modified.
func (d *Decompiler) Decompile(instrs []bytecode.Instruction) (*Result, error) {
	return d.DecompileWith(nil, instrs)
}

// DecompileWith folds instrs on top of a stack seeded with nodes that an
// upstream pass has already built, such as a FunctionDef about to be bound
// and decorated, or an If produced by control-flow reconstruction. Seed
// nodes may be mutated in place.
func (d *Decompiler) DecompileWith(seed []pyast.Node, instrs []bytecode.Instruction) (res *Result, err error) {
	s := &state{d: d, feed: instrs}
	s.stack = append(s.stack, seed...)

	defer func() {
		if r := recover(); r != nil {
			derr, ok := r.(*Error)
			if !ok {
				// Re-panic for other errors
				panic(r)
			}
			res, err = nil, derr
		}
	}()

	s.run()
	return &Result{Body: s.stack, SeenYield: s.seenYield}, nil
}

// ---------------------------------------------------------------------------
// state: AST stack and instruction feed for one block
// ---------------------------------------------------------------------------

type state struct {
	d         *Decompiler
	stack     []pyast.Node
	feed      []bytecode.Instruction
	cur       bytecode.Instruction
	seenYield bool
	depth     int
	ifExps    map[*pyast.If]*pyast.IfExp
}

func (s *state) run() {
	for len(s.feed) > 0 {
		s.dispatch(s.next())
	}
}

// next removes the front instruction of the feed.
func (s *state) next() bytecode.Instruction {
	if len(s.feed) == 0 {
		s.fail(MalformedBytecode, "instruction feed exhausted")
	}
	in := s.feed[0]
	s.feed = s.feed[1:]
	return in
}

func (s *state) dispatch(in bytecode.Instruction) {
	prev := s.cur
	s.cur = in

	h := handlers[in.Op]
	if h == nil {
		s.fail(UnsupportedOpcode, "no handler registered")
	}
	if s.d.opts.Trace {
		s.d.log.Debugf("%*s%4d  %-20s depth=%d", s.depth*2, "", in.Line, in, len(s.stack))
	}
	h(s, in)
	s.cur = prev
}

// sub decompiles instrs as a nested block and returns its stack.
func (s *state) sub(instrs []bytecode.Instruction) []pyast.Node {
	if s.depth+1 > s.d.opts.MaxDepth {
		s.fail(MalformedBytecode, "nesting deeper than %d", s.d.opts.MaxDepth)
	}
	child := &state{d: s.d, feed: instrs, cur: s.cur, depth: s.depth + 1}
	child.run()
	if child.seenYield {
		s.seenYield = true
	}
	return child.stack
}

func (s *state) push(n pyast.Node) {
	s.stack = append(s.stack, n)
}

func (s *state) pop() pyast.Node {
	if len(s.stack) == 0 {
		s.fail(MalformedBytecode, "stack underflow")
	}
	n := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return n
}

// peek returns the top of the stack, or nil when it is empty.
func (s *state) peek() pyast.Node {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

// popExpr pops a node that must be an expression.
func (s *state) popExpr() pyast.Expr {
	return s.expr(s.pop())
}

func (s *state) expr(n pyast.Node) pyast.Expr {
	e, ok := n.(pyast.Expr)
	if !ok {
		s.fail(InvariantViolation, "expected an expression, got %s", pyast.SExpr(n))
	}
	return e
}

// fail aborts the decompilation of the whole block.
func (s *state) fail(kind Kind, format string, args ...any) {
	snapshot := make([]string, len(s.stack))
	for i, n := range s.stack {
		snapshot[i] = pyast.SExpr(n)
	}
	op := s.cur.Name
	if op == "" {
		op = s.cur.Op.String()
	}
	panic(&Error{
		Kind:   kind,
		Op:     op,
		Line:   s.cur.Line,
		Offset: s.cur.Offset,
		Detail: fmt.Sprintf(format, args...),
		Stack:  snapshot,
	})
}

// name returns the instruction's argument as an identifier.
func (s *state) name(in bytecode.Instruction) string {
	id, ok := in.Arg.(string)
	if !ok || id == "" {
		s.fail(MalformedBytecode, "expected a name argument, got %v", in.Arg)
	}
	return id
}

func pos(in bytecode.Instruction) pyast.Pos {
	return pyast.Pos(in.Line)
}

// isNone reports whether n is absent or the None name.
func isNone(n pyast.Node) bool {
	if n == nil {
		return true
	}
	name, ok := n.(*pyast.Name)
	return ok && name.ID == "None" && name.Ctx == pyast.Load
}
